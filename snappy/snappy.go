// Package snappy provides block codecs for the Snappy block format and its
// S2 extension.
package snappy

import (
	"fmt"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
)

// Codec compresses blocks with github.com/golang/snappy.
type Codec struct{}

func (Codec) Compress(dst, src []byte) ([]byte, error) {
	return snappy.Encode(dst[:cap(dst)], src), nil
}

func (Codec) Decompress(dst, src []byte, originalLen int) ([]byte, error) {
	n, err := snappy.DecodedLen(src)
	if err != nil {
		return nil, fmt.Errorf("snappy decompress: %w", err)
	}
	if n != originalLen {
		return nil, fmt.Errorf("snappy decompress: block decodes to %d bytes, expected %d", n, originalLen)
	}
	out, err := snappy.Decode(dst[:cap(dst)], src)
	if err != nil {
		return nil, fmt.Errorf("snappy decompress: %w", err)
	}
	return out, nil
}

// S2Codec compresses blocks with the S2 encoder from
// github.com/klauspost/compress. Better selects the slower encoder with a
// better ratio.
type S2Codec struct {
	Better bool
}

func (c S2Codec) Compress(dst, src []byte) ([]byte, error) {
	if c.Better {
		return s2.EncodeBetter(dst[:cap(dst)], src), nil
	}
	return s2.Encode(dst[:cap(dst)], src), nil
}

func (S2Codec) Decompress(dst, src []byte, originalLen int) ([]byte, error) {
	n, err := s2.DecodedLen(src)
	if err != nil {
		return nil, fmt.Errorf("s2 decompress: %w", err)
	}
	if n != originalLen {
		return nil, fmt.Errorf("s2 decompress: block decodes to %d bytes, expected %d", n, originalLen)
	}
	out, err := s2.Decode(dst[:cap(dst)], src)
	if err != nil {
		return nil, fmt.Errorf("s2 decompress: %w", err)
	}
	return out, nil
}
