package snappy

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/golang/snappy"
)

type codec interface {
	Compress(dst, src []byte) ([]byte, error)
	Decompress(dst, src []byte, originalLen int) ([]byte, error)
}

func test(t *testing.T, c codec, data []byte) {
	compressed, err := c.Compress(nil, data)
	if err != nil {
		t.Fatal(err)
	}
	decompressed, err := c.Decompress(nil, compressed, len(data))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decompressed, data) {
		t.Fatal("decompressed output doesn't match")
	}
}

func TestRoundTrip(t *testing.T) {
	text := []byte(strings.Repeat("It is not my design in this book to explain the properties of light by hypotheses. ", 800))
	random := make([]byte, 50000)
	rand.New(rand.NewSource(7)).Read(random)

	for name, c := range map[string]codec{
		"snappy":    Codec{},
		"s2":        S2Codec{},
		"s2-better": S2Codec{Better: true},
	} {
		t.Run(name+"/text", func(t *testing.T) { test(t, c, text) })
		t.Run(name+"/random", func(t *testing.T) { test(t, c, random) })
	}
}

func TestCompressIsStandardSnappy(t *testing.T) {
	text := []byte(strings.Repeat("HelloHelloHello, world. ", 100))
	compressed, err := Codec{}.Compress(nil, text)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := snappy.Decode(nil, compressed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, text) {
		t.Fatal("golang/snappy decoded different bytes")
	}
}

func TestDecompressWrongLength(t *testing.T) {
	text := []byte(strings.Repeat("abcd", 1000))
	for name, c := range map[string]codec{"snappy": Codec{}, "s2": S2Codec{}} {
		compressed, err := c.Compress(nil, text)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := c.Decompress(nil, compressed, len(text)+1); err == nil {
			t.Errorf("%s: expected a length mismatch error", name)
		}
	}
}
