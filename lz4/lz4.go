// Package lz4 provides block codecs that produce LZ4 block-format data.
//
// Codec uses github.com/pierrec/lz4 for both directions. NativeCodec uses
// this package's own match finder and block encoder to compress, and
// pierrec/lz4 to decompress. Both produce independent blocks, so a
// container built with either can be read by any LZ4 frame decoder.
package lz4

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// A Codec compresses blocks with pierrec/lz4. Level 0 selects the fast
// compressor; levels 1 through 9 select the high-compression one.
// A Codec is safe for concurrent use.
type Codec struct {
	Level int
}

func (c Codec) Compress(dst, src []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(src))
	if cap(dst) < bound {
		dst = make([]byte, bound)
	}
	dst = dst[:bound]

	var n int
	var err error
	if c.Level > 0 {
		n, err = lz4.CompressBlockHC(src, dst, hcLevel(c.Level), nil, nil)
	} else {
		n, err = lz4.CompressBlock(src, dst, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 {
		// pierrec/lz4 reports incompressible input as a zero length.
		return append(dst[:0], src...), nil
	}
	return dst[:n], nil
}

func (Codec) Decompress(dst, src []byte, originalLen int) ([]byte, error) {
	return decompress(dst, src, originalLen)
}

func hcLevel(level int) lz4.CompressionLevel {
	switch {
	case level <= 1:
		return lz4.Level1
	case level == 2:
		return lz4.Level2
	case level == 3:
		return lz4.Level3
	case level == 4:
		return lz4.Level4
	case level == 5:
		return lz4.Level5
	case level == 6:
		return lz4.Level6
	case level == 7:
		return lz4.Level7
	case level == 8:
		return lz4.Level8
	}
	return lz4.Level9
}

// A NativeCodec compresses blocks with this package's hash-chain match
// finder. SearchLen is how many older chain entries are tried for each
// match; 0 gives the fastest, greedy search.
// A NativeCodec is safe for concurrent use.
type NativeCodec struct {
	SearchLen int

	matchers sync.Pool
}

// NewNativeCodec returns a NativeCodec with the given chain search length.
func NewNativeCodec(searchLen int) *NativeCodec {
	return &NativeCodec{SearchLen: searchLen}
}

func (c *NativeCodec) Compress(dst, src []byte) ([]byte, error) {
	m, _ := c.matchers.Get().(*matcherState)
	if m == nil {
		m = new(matcherState)
	}
	m.searchLen = c.SearchLen
	m.matches = m.findMatches(m.matches[:0], src)
	dst = appendBlock(dst[:0], src, m.matches)
	c.matchers.Put(m)
	return dst, nil
}

func (c *NativeCodec) Decompress(dst, src []byte, originalLen int) ([]byte, error) {
	return decompress(dst, src, originalLen)
}

// matcherState is what NativeCodec pools between calls.
type matcherState struct {
	matcher
	matches []match
}

func decompress(dst, src []byte, originalLen int) ([]byte, error) {
	if cap(dst) < originalLen {
		dst = make([]byte, originalLen)
	}
	dst = dst[:originalLen]
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if n != originalLen {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", n, originalLen)
	}
	return dst, nil
}
