package brotli

import (
	"bytes"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
)

func TestEncode(t *testing.T) {
	data := []byte(strings.Repeat("Of the Refractions of the Rays of Light. ", 1500))
	for _, level := range []int{0, 5, 11} {
		compressed, err := Codec{Level: level}.Compress(nil, data)
		if err != nil {
			t.Fatal(err)
		}
		sr := brotli.NewReader(bytes.NewReader(compressed))
		decompressed, err := ioutil.ReadAll(sr)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(decompressed, data) {
			t.Fatalf("level %d: decompressed output doesn't match", level)
		}
	}
}

func TestEncodeHelloHello(t *testing.T) {
	hello := []byte("HelloHelloHelloHelloHelloHelloHelloHelloHelloHello, world")
	var c Codec
	compressed, err := c.Compress(nil, hello)
	if err != nil {
		t.Fatal(err)
	}
	decompressed, err := c.Decompress(nil, compressed, len(hello))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decompressed, hello) {
		t.Fatalf("decompressed output doesn't match: got %q, want %q", decompressed, hello)
	}
}

func TestDecompressWrongLength(t *testing.T) {
	data := []byte(strings.Repeat("light ", 500))
	var c Codec
	compressed, _ := c.Compress(nil, data)
	if _, err := c.Decompress(nil, compressed, len(data)+10); err == nil {
		t.Error("expected an error for a long originalLen")
	}
	if _, err := c.Decompress(nil, compressed, len(data)-10); err == nil {
		t.Error("expected an error for a short originalLen")
	}
}
