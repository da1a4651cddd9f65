// Package flate provides a block codec that stores each block as a raw
// DEFLATE stream, using github.com/klauspost/compress/flate.
package flate

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// A Codec compresses blocks at the given DEFLATE level (1 to 9; 0 means
// the library default).
type Codec struct {
	Level int
}

func (c Codec) Compress(dst, src []byte) ([]byte, error) {
	level := c.Level
	if level == 0 {
		level = flate.DefaultCompression
	}
	buf := bytes.NewBuffer(dst[:0])
	w, err := flate.NewWriter(buf, level)
	if err != nil {
		return nil, fmt.Errorf("flate compress: %w", err)
	}
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("flate compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flate compress: %w", err)
	}
	return buf.Bytes(), nil
}

func (Codec) Decompress(dst, src []byte, originalLen int) ([]byte, error) {
	if cap(dst) < originalLen {
		dst = make([]byte, originalLen)
	}
	dst = dst[:originalLen]
	r := flate.NewReader(bytes.NewReader(src))
	defer r.Close()
	if _, err := io.ReadFull(r, dst); err != nil {
		return nil, fmt.Errorf("flate decompress: %w", err)
	}
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n != 0 {
		return nil, fmt.Errorf("flate decompress: block decodes to more than %d bytes", originalLen)
	}
	return dst, nil
}
