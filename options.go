package blockpack

import (
	"io"
	"log/slog"

	"github.com/andybalholm/blockpack/lz4"
)

// Options configures Writers, Readers and the stream functions.
type Options struct {
	// BlockSize is the block size class of new containers. Readers take
	// it from the header instead. Default: Block64KB.
	BlockSize BlockSizeClass

	// Codec transforms individual blocks. Default: lz4.Codec{}.
	Codec Codec

	// ContentChecksum makes Writers append an xxHash32 of the content after
	// the terminator, and set the matching header flag.
	ContentChecksum bool

	// VerifyHeaderChecksum makes Readers reject a header whose checksum
	// byte does not match. Off by default: the checksum is written but
	// historically never checked, and some producers get it wrong.
	VerifyHeaderChecksum bool

	// Observer, if set, receives one event per block.
	Observer BlockObserver

	// Logger receives debug records for each block. Default: discard.
	Logger *slog.Logger
}

// DefaultOptions returns options for 64KB blocks compressed with LZ4.
func DefaultOptions() *Options {
	return &Options{
		BlockSize: Block64KB,
		Codec:     lz4.Codec{},
	}
}

// withDefaults returns a copy of o with unset fields filled in. o may be nil.
func (o *Options) withDefaults() Options {
	var opts Options
	if o != nil {
		opts = *o
	}
	if opts.BlockSize == 0 {
		opts.BlockSize = Block64KB
	}
	if opts.Codec == nil {
		opts.Codec = lz4.Codec{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return opts
}

func (o *Options) observe(e BlockEvent) {
	if o.Observer != nil {
		o.Observer.ObserveBlock(e)
	}
}
