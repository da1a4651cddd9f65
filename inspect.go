package blockpack

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// A Summary describes a container without its content.
type Summary struct {
	Header Header
	// Records counts block records by kind.
	Records map[BlockKind]int
	// StoredBytes is the total payload length of all records.
	StoredBytes int64
	// Terminated is true if the container ends with a terminator.
	Terminated bool
	// Len is the number of container bytes examined.
	Len int64
}

// Inspect walks the container read from r, checking its structure without
// running the codec. Blocks whose stored length does not fit their
// position are reported as format errors.
func Inspect(r io.Reader) (Summary, error) {
	s := Summary{Records: make(map[BlockKind]int)}
	h, err := ReadHeader(r)
	if err != nil {
		return s, err
	}
	s.Header = h
	s.Len = int64(h.Len())
	if err := requireContentSize(h); err != nil {
		return s, err
	}

	blockSize := h.BlockSize.Size()
	count := BlockCount(int64(h.ContentSize), blockSize)
	var f [recordFieldLen]byte
	for i := int64(0); i < count; i++ {
		off := s.Len
		if err := readFull(r, f[:], off); err != nil {
			return s, err
		}
		v := binary.LittleEndian.Uint32(f[:])
		if v == 0 {
			return s, &FormatError{Offset: off, Err: ErrEarlyTerminator}
		}
		want := blockLen(int64(h.ContentSize), blockSize, i)
		kind, n := parseField(v, blockSize)
		switch {
		case kind != Compressed && n != want:
			return s, &FormatError{Offset: off, Err: fmt.Errorf("%w: block %d stores %d bytes, want %d", ErrRawBlockLength, i, n, want)}
		case kind == Compressed && n >= want:
			return s, &FormatError{Offset: off, Err: fmt.Errorf("%w: block %d declares %d compressed bytes for %d", ErrCorruptBlock, i, n, want)}
		}
		s.Len += recordFieldLen
		copied, err := io.CopyN(io.Discard, r, int64(n))
		s.Len += copied
		if err != nil {
			if errors.Is(err, io.EOF) {
				return s, &FormatError{Offset: s.Len, Err: ErrTruncated}
			}
			return s, &IOError{Op: "read", Err: err}
		}
		s.Records[kind]++
		s.StoredBytes += int64(n)
	}

	n, err := io.ReadFull(r, f[:])
	switch {
	case n == 0 && errors.Is(err, io.EOF):
		return s, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return s, &FormatError{Offset: s.Len, Err: ErrTruncated}
	case err != nil:
		return s, &IOError{Op: "read", Err: err}
	case binary.LittleEndian.Uint32(f[:]) != 0:
		return s, &FormatError{Offset: s.Len, Err: ErrTrailingData}
	}
	s.Terminated = true
	s.Len += recordFieldLen
	if h.HasContentChecksum() {
		if err := readFull(r, f[:], s.Len); err != nil {
			return s, err
		}
		s.Len += 4
	}
	return s, nil
}
