package main

import (
	"fmt"
	"io"

	"github.com/andybalholm/blockpack"
	"github.com/andybalholm/blockpack/brotli"
	"github.com/andybalholm/blockpack/flate"
	"github.com/andybalholm/blockpack/lz4"
	"github.com/andybalholm/blockpack/snappy"
	"github.com/andybalholm/blockpack/zstd"
)

// newCodec builds the named block codec. The returned closer releases any
// resources the codec holds; it is never nil.
func newCodec(name string, level int) (blockpack.Codec, io.Closer, error) {
	switch name {
	case "lz4":
		return lz4.Codec{Level: level}, nopCloser{}, nil
	case "lz4-native":
		return lz4.NewNativeCodec(level), nopCloser{}, nil
	case "snappy":
		return snappy.Codec{}, nopCloser{}, nil
	case "s2":
		return snappy.S2Codec{Better: level > 1}, nopCloser{}, nil
	case "zstd":
		c, err := zstd.New(level)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	case "brotli":
		if level == 0 {
			level = 5
		}
		return brotli.Codec{Level: level}, nopCloser{}, nil
	case "flate":
		return flate.Codec{Level: level}, nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("unknown codec %q", name)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
