// Package zstd provides a block codec that stores each block as a single
// Zstandard frame, using github.com/klauspost/compress/zstd.
package zstd

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// A Codec holds a zstd encoder and decoder. It is safe for concurrent use.
// Call Close to release the decoder's resources.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// New returns a Codec compressing at the given zstd level (1 to 22; values
// are mapped onto the encoder's speed presets).
func New(level int) (*Codec, error) {
	if level <= 0 {
		level = 3
	}
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &Codec{encoder: encoder, decoder: decoder}, nil
}

func (c *Codec) Compress(dst, src []byte) ([]byte, error) {
	return c.encoder.EncodeAll(src, dst[:0]), nil
}

func (c *Codec) Decompress(dst, src []byte, originalLen int) ([]byte, error) {
	if cap(dst) < originalLen {
		dst = make([]byte, 0, originalLen)
	}
	out, err := c.decoder.DecodeAll(src, dst[:0])
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(out) != originalLen {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(out), originalLen)
	}
	return out, nil
}

// Close releases the encoder and decoder.
func (c *Codec) Close() error {
	c.decoder.Close()
	return c.encoder.Close()
}
