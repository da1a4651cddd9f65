package blockpack

import (
	"errors"
	"fmt"
)

// Format errors. They are always returned wrapped in a *FormatError, so
// match them with errors.Is.
var (
	ErrBadMagic         = errors.New("bad magic number")
	ErrUnknownBlockSize = errors.New("unknown block size class")
	ErrUnsupportedFlags = errors.New("unsupported frame flags")
	ErrHeaderChecksum   = errors.New("header checksum mismatch")
	ErrTruncated        = errors.New("truncated container")
	ErrEarlyTerminator  = errors.New("terminator before last block")
	ErrRawBlockLength   = errors.New("raw block length does not match block size")
	ErrCorruptBlock     = errors.New("corrupt compressed block")
	ErrTrailingData     = errors.New("trailing data after last block")
	ErrContentChecksum  = errors.New("content checksum mismatch")
)

// Usage errors.
var (
	ErrInvalidBlockSize = errors.New("invalid block size")
	ErrSizeMismatch     = errors.New("stream length does not match declared content size")
	ErrClosed           = errors.New("blockpack: use of closed writer")
	ErrNilCodec         = errors.New("blockpack: codec is nil")
)

// A FormatError reports a malformed container. Offset is the position in
// the container where the problem was detected.
type FormatError struct {
	Offset int64
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("blockpack: %v at offset %d", e.Err, e.Offset)
}

func (e *FormatError) Unwrap() error { return e.Err }

// An IOError wraps a failure to open, read, write or close a file or
// stream. Op names the operation; Path is empty for non-file streams.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("blockpack: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("blockpack: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// A ContractViolation is the panic value raised when a container declares
// a compressed block that is not smaller than the block it decodes to.
// Such a record can only come from corruption or a hostile producer, so it
// is not reported as an ordinary error.
type ContractViolation struct {
	Block         int
	CompressedLen int
	OriginalLen   int
}

func (v ContractViolation) Error() string {
	return fmt.Sprintf("blockpack: block %d declares %d compressed bytes for %d original bytes",
		v.Block, v.CompressedLen, v.OriginalLen)
}
