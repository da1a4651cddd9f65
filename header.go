package blockpack

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/xxHash/xxHash32"
)

// Magic is the first four bytes of every container.
var Magic = [4]byte{0x04, 0x22, 0x4D, 0x18}

// Frame descriptor flag bits.
const (
	flagVersionMask     = 0xc0
	flagVersion         = 0x40
	flagBlockIndep      = 0x20
	flagBlockChecksum   = 0x10
	flagContentSize     = 0x08
	flagContentChecksum = 0x04
	flagReserved        = 0x02
	flagDictID          = 0x01

	// DefaultFlags is what WriteHeader emits: version 1, independent
	// blocks, content size present, no checksums.
	DefaultFlags = flagVersion | flagBlockIndep | flagContentSize
)

// MaxHeaderLen is the length of a header that carries a content size.
const MaxHeaderLen = 15

// A Header is the parsed frame header of a container.
type Header struct {
	Flags       byte
	BlockSize   BlockSizeClass
	ContentSize uint64
	Checksum    byte
}

// HasContentSize reports whether the content size field is present.
func (h Header) HasContentSize() bool { return h.Flags&flagContentSize != 0 }

// HasContentChecksum reports whether the container ends with an xxHash32 of
// the uncompressed content.
func (h Header) HasContentChecksum() bool { return h.Flags&flagContentChecksum != 0 }

// descriptor returns the bytes the header checksum covers.
func (h Header) descriptor() []byte {
	d := make([]byte, 2, 10)
	d[0] = h.Flags
	d[1] = byte(h.BlockSize)
	if h.HasContentSize() {
		d = binary.LittleEndian.AppendUint64(d, h.ContentSize)
	}
	return d
}

// ComputeChecksum returns the checksum byte for h's descriptor: the second
// byte of its xxHash32 with seed 0.
func (h Header) ComputeChecksum() byte {
	return byte(xxHash32.Checksum(h.descriptor(), 0) >> 8)
}

// ChecksumValid reports whether the stored checksum matches the descriptor.
func (h Header) ChecksumValid() bool {
	return h.Checksum == h.ComputeChecksum()
}

// AppendHeader appends the encoded form of h to dst, and returns dst.
// h.Checksum is ignored; the checksum byte is computed from the other
// fields.
func AppendHeader(dst []byte, h Header) []byte {
	dst = append(dst, Magic[:]...)
	dst = append(dst, h.descriptor()...)
	return append(dst, h.ComputeChecksum())
}

// WriteHeader writes the header of a container holding contentSize bytes
// in blocks of class.
func WriteHeader(w io.Writer, class BlockSizeClass, contentSize uint64) (int, error) {
	return writeHeader(w, Header{Flags: DefaultFlags, BlockSize: class, ContentSize: contentSize})
}

func writeHeader(w io.Writer, h Header) (int, error) {
	if !h.BlockSize.Valid() {
		return 0, ErrInvalidBlockSize
	}
	var buf [MaxHeaderLen]byte
	n, err := w.Write(AppendHeader(buf[:0], h))
	if err != nil {
		return n, &IOError{Op: "write", Err: err}
	}
	return n, nil
}

// ReadHeader reads and validates a container header from r. The content
// size is read only if its flag is set. The header checksum is read but
// not verified; use Header.ChecksumValid for that.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	var buf [8]byte

	if err := readFull(r, buf[:4], 0); err != nil {
		return h, err
	}
	if [4]byte(buf[:4]) != Magic {
		return h, &FormatError{Offset: 0, Err: ErrBadMagic}
	}

	if err := readFull(r, buf[:2], 4); err != nil {
		return h, err
	}
	h.Flags = buf[0]
	h.BlockSize = BlockSizeClass(buf[1])
	if h.Flags&flagVersionMask != flagVersion ||
		h.Flags&(flagBlockChecksum|flagReserved|flagDictID) != 0 {
		return h, &FormatError{Offset: 4, Err: ErrUnsupportedFlags}
	}
	if !h.BlockSize.Valid() {
		return h, &FormatError{Offset: 5, Err: ErrUnknownBlockSize}
	}

	off := int64(6)
	if h.HasContentSize() {
		if err := readFull(r, buf[:8], off); err != nil {
			return h, err
		}
		h.ContentSize = binary.LittleEndian.Uint64(buf[:8])
		off += 8
	}

	if err := readFull(r, buf[:1], off); err != nil {
		return h, err
	}
	h.Checksum = buf[0]
	return h, nil
}

// requireContentSize rejects headers that do not declare a content size.
// Block lengths are derived from it, so decoding needs it.
func requireContentSize(h Header) error {
	if !h.HasContentSize() {
		return &FormatError{Offset: 4, Err: fmt.Errorf("%w: content size required", ErrUnsupportedFlags)}
	}
	return nil
}

// Len returns the encoded length of h, including the magic number.
func (h Header) Len() int {
	if h.HasContentSize() {
		return MaxHeaderLen
	}
	return MaxHeaderLen - 8
}

// readFull fills p from r. A short read is reported as ErrTruncated at
// offset off; other failures as an *IOError.
func readFull(r io.Reader, p []byte, off int64) error {
	_, err := io.ReadFull(r, p)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &FormatError{Offset: off, Err: ErrTruncated}
	}
	return &IOError{Op: "read", Err: err}
}
