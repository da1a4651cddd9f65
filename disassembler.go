package blockpack

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"math"

	"github.com/pierrec/xxHash/xxHash32"
)

// A Reader decompresses a container. The number of blocks is computed from
// the header's content size; the terminator after the last block is
// checked if present but not required.
type Reader struct {
	src  io.Reader
	opts Options

	header     Header
	headerRead bool
	blockSize  int
	blocks     int64

	index  int64
	off    int64
	block  []byte
	pos    int
	comp   []byte
	hasher hash.Hash32

	done bool
	err  error
}

// NewReader returns a Reader that decompresses the container read from r.
// opts may be nil; its BlockSize and ContentChecksum fields are ignored.
func NewReader(r io.Reader, opts *Options) *Reader {
	return &Reader{src: r, opts: opts.withDefaults()}
}

// Header reads the container header, if that has not happened yet, and
// returns it.
func (r *Reader) Header() (Header, error) {
	if r.headerRead || r.err != nil {
		return r.header, r.err
	}
	r.headerRead = true

	h, err := ReadHeader(r.src)
	if err != nil {
		r.err = err
		return h, err
	}
	if err := requireContentSize(h); err != nil {
		r.err = err
		return h, err
	}
	if r.opts.VerifyHeaderChecksum && !h.ChecksumValid() {
		r.err = &FormatError{Offset: int64(h.Len() - 1), Err: ErrHeaderChecksum}
		return h, r.err
	}
	r.header = h
	r.off = int64(h.Len())
	r.blockSize = h.BlockSize.Size()
	if h.ContentSize > math.MaxInt64 {
		r.err = &FormatError{Offset: 6, Err: fmt.Errorf("content size %d out of range", h.ContentSize)}
		return h, r.err
	}
	r.blocks = BlockCount(int64(h.ContentSize), r.blockSize)
	if h.HasContentChecksum() {
		r.hasher = xxHash32.New(0)
	}
	return h, nil
}

// Read reads decompressed bytes into p.
func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if r.pos == len(r.block) {
			if err := r.next(); err != nil {
				return n, err
			}
			continue
		}
		c := copy(p[n:], r.block[r.pos:])
		r.pos += c
		n += c
	}
	return n, nil
}

// WriteTo writes the decompressed stream to w.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	return r.decode(context.Background(), w)
}

// decode writes whole blocks to w, checking ctx before each one.
func (r *Reader) decode(ctx context.Context, w io.Writer) (int64, error) {
	var total int64
	for {
		if r.pos < len(r.block) {
			n, err := w.Write(r.block[r.pos:])
			total += int64(n)
			r.pos += n
			if err != nil {
				return total, &IOError{Op: "write", Err: err}
			}
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if err := r.next(); err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, err
		}
	}
}

// next decodes the next block into r.block. It returns io.EOF once every
// block has been read and the trailer checked.
func (r *Reader) next() error {
	if r.err != nil {
		return r.err
	}
	if r.done {
		return io.EOF
	}
	if !r.headerRead {
		if _, err := r.Header(); err != nil {
			return err
		}
	}
	if r.index == r.blocks {
		if err := r.finish(); err != nil {
			r.err = err
			return err
		}
		r.done = true
		return io.EOF
	}
	if err := r.readBlock(); err != nil {
		r.err = err
		return err
	}
	return nil
}

func (r *Reader) readBlock() error {
	var f [recordFieldLen]byte
	fieldOff := r.off
	if err := readFull(r.src, f[:], fieldOff); err != nil {
		return err
	}
	r.off += recordFieldLen

	v := binary.LittleEndian.Uint32(f[:])
	want := blockLen(int64(r.header.ContentSize), r.blockSize, r.index)
	if v == 0 {
		return &FormatError{Offset: fieldOff, Err: ErrEarlyTerminator}
	}

	if cap(r.block) < r.blockSize {
		r.block = make([]byte, 0, r.blockSize)
	}

	kind, n := parseField(v, r.blockSize)
	switch kind {
	case RawFull, RawPartial:
		if n != want {
			return &FormatError{Offset: fieldOff, Err: fmt.Errorf("%w: block %d stores %d bytes, want %d", ErrRawBlockLength, r.index, n, want)}
		}
		r.block = r.block[:n]
		if err := readFull(r.src, r.block, r.off); err != nil {
			return err
		}

	case Compressed:
		if n >= want {
			panic(ContractViolation{Block: int(r.index), CompressedLen: n, OriginalLen: want})
		}
		if cap(r.comp) < n {
			r.comp = make([]byte, n, r.blockSize)
		}
		r.comp = r.comp[:n]
		if err := readFull(r.src, r.comp, r.off); err != nil {
			return err
		}
		out, err := r.opts.Codec.Decompress(r.block[:0], r.comp, want)
		if err != nil {
			return &FormatError{Offset: r.off, Err: fmt.Errorf("%w: block %d: %v", ErrCorruptBlock, r.index, err)}
		}
		if len(out) != want {
			return &FormatError{Offset: r.off, Err: fmt.Errorf("%w: block %d decoded to %d bytes, want %d", ErrCorruptBlock, r.index, len(out), want)}
		}
		r.block = out
	}
	r.off += int64(n)
	r.pos = 0

	if r.hasher != nil {
		r.hasher.Write(r.block)
	}
	r.opts.observe(BlockEvent{
		Decode:      true,
		Index:       r.index,
		Kind:        kind,
		OriginalLen: want,
		StoredLen:   n,
	})
	r.opts.Logger.Debug("decoded block",
		slog.Int64("index", r.index),
		slog.String("kind", kind.String()),
		slog.Int("original", want),
		slog.Int("stored", n))
	r.index++
	return nil
}

// finish checks what follows the last block. A missing terminator is
// accepted; anything other than a terminator is not.
func (r *Reader) finish() error {
	var f [recordFieldLen]byte
	n, err := io.ReadFull(r.src, f[:])
	switch {
	case n == 0 && errors.Is(err, io.EOF):
		if r.hasher != nil {
			return &FormatError{Offset: r.off, Err: ErrTruncated}
		}
		return nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &FormatError{Offset: r.off, Err: ErrTruncated}
	case err != nil:
		return &IOError{Op: "read", Err: err}
	}
	if binary.LittleEndian.Uint32(f[:]) != 0 {
		return &FormatError{Offset: r.off, Err: ErrTrailingData}
	}
	r.off += recordFieldLen

	if r.hasher != nil {
		if err := readFull(r.src, f[:], r.off); err != nil {
			return err
		}
		if binary.LittleEndian.Uint32(f[:]) != r.hasher.Sum32() {
			return &FormatError{Offset: r.off, Err: ErrContentChecksum}
		}
		r.off += 4
	}
	return nil
}
