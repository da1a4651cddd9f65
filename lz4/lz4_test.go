package lz4

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/pierrec/lz4/v4"
)

// sampleText returns len bytes of compressible, text-like data.
func sampleText(n int) []byte {
	var b bytes.Buffer
	for i := 0; b.Len() < n; i++ {
		fmt.Fprintf(&b, "Ray %d is refracted at angle %d; the colours of the prism are %s.\n",
			i, i%90, []string{"red", "orange", "yellow", "green", "blue", "violet"}[i%6])
	}
	return b.Bytes()[:n]
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(1)).Read(b)
	return b
}

func TestBlockEncode(t *testing.T) {
	for _, searchLen := range []int{0, 1, 8} {
		t.Run(fmt.Sprintf("search%d", searchLen), func(t *testing.T) {
			data := sampleText(1 << 16)

			m := matcher{searchLen: searchLen}
			matches := m.findMatches(nil, data)
			compressed := appendBlock(nil, data, matches)
			if len(compressed) >= len(data) {
				t.Fatalf("compressed to %d bytes, want fewer than %d", len(compressed), len(data))
			}

			decompressed := make([]byte, len(data))
			n, err := lz4.UncompressBlock(compressed, decompressed)
			if err != nil {
				t.Fatal(err)
			}
			if n != len(data) {
				t.Fatalf("Got %d bytes, wanted %d", n, len(data))
			}
			if !bytes.Equal(decompressed, data) {
				t.Fatal("Decompressed output does not match")
			}
		})
	}
}

func TestMatcherIsPerBlock(t *testing.T) {
	data := sampleText(1 << 12)
	var m matcher
	first := m.findMatches(nil, data)
	second := m.findMatches(nil, data)
	if len(first) != len(second) {
		t.Fatalf("second call found %d matches, first found %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("match %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestCodecs(t *testing.T) {
	codecs := map[string]interface {
		Compress(dst, src []byte) ([]byte, error)
		Decompress(dst, src []byte, originalLen int) ([]byte, error)
	}{
		"fast":     Codec{},
		"hc":       Codec{Level: 9},
		"native":   NewNativeCodec(0),
		"native16": NewNativeCodec(16),
	}
	inputs := map[string][]byte{
		"text":   sampleText(100000),
		"zeros":  make([]byte, 65536),
		"short":  []byte("abc"),
		"random": randomBytes(70000),
	}

	for cname, c := range codecs {
		for iname, in := range inputs {
			t.Run(cname+"/"+iname, func(t *testing.T) {
				compressed, err := c.Compress(nil, in)
				if err != nil {
					t.Fatal(err)
				}
				if len(compressed) >= len(in) {
					// Incompressible: the container would store it raw.
					return
				}
				out, err := c.Decompress(nil, compressed, len(in))
				if err != nil {
					t.Fatal(err)
				}
				if !bytes.Equal(out, in) {
					t.Fatal("round trip mismatch")
				}
			})
		}
	}
}

func TestCodecCompressesZeros(t *testing.T) {
	in := make([]byte, 65536)
	for _, c := range []interface {
		Compress(dst, src []byte) ([]byte, error)
	}{Codec{}, NewNativeCodec(0)} {
		out, err := c.Compress(nil, in)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) >= len(in)/10 {
			t.Errorf("%T: %d zero bytes compressed to %d", c, len(in), len(out))
		}
	}
}

func TestDecompressLengthMismatch(t *testing.T) {
	in := sampleText(4096)
	compressed, err := Codec{}.Compress(nil, in)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := (Codec{}).Decompress(nil, compressed, len(in)-1); err == nil {
		t.Fatal("expected an error for a short destination")
	}
}

func BenchmarkNativeCompress(b *testing.B) {
	data := sampleText(1 << 20)
	c := NewNativeCodec(0)
	var dst []byte
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		dst, _ = c.Compress(dst, data)
	}
	b.ReportMetric(float64(len(data))/float64(len(dst)), "ratio")
}
