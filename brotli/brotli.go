// Package brotli provides a block codec that stores each block as a
// complete Brotli stream, using github.com/andybalholm/brotli.
package brotli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// A Codec compresses blocks at the given Brotli quality (0 to 11).
type Codec struct {
	Level int
}

func (c Codec) Compress(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst[:0])
	w := brotli.NewWriterLevel(buf, c.Level)
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("brotli compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("brotli compress: %w", err)
	}
	return buf.Bytes(), nil
}

func (Codec) Decompress(dst, src []byte, originalLen int) ([]byte, error) {
	if cap(dst) < originalLen {
		dst = make([]byte, originalLen)
	}
	dst = dst[:originalLen]
	r := brotli.NewReader(bytes.NewReader(src))
	if _, err := io.ReadFull(r, dst); err != nil {
		return nil, fmt.Errorf("brotli decompress: %w", err)
	}
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n != 0 {
		return nil, fmt.Errorf("brotli decompress: block decodes to more than %d bytes", originalLen)
	}
	return dst, nil
}
