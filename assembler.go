package blockpack

import (
	"encoding/binary"
	"fmt"
	"hash"
	"io"
	"log/slog"

	"github.com/pierrec/xxHash/xxHash32"
)

// A Writer compresses a stream of known length into a container. It holds
// at most one block in memory.
//
// The header is written with the first call to Write or Close. Close must
// be called to flush the final block and write the terminator.
type Writer struct {
	dst         io.Writer
	opts        Options
	header      Header
	blockSize   int
	contentSize uint64

	block   []byte
	scratch []byte
	hasher  hash.Hash32

	index         int64
	consumed      uint64
	written       int64
	headerWritten bool
	closed        bool
	err           error
}

// NewWriter returns a Writer that writes a container holding exactly
// contentSize bytes to w. opts may be nil.
func NewWriter(w io.Writer, contentSize uint64, opts *Options) (*Writer, error) {
	o := opts.withDefaults()
	if !o.BlockSize.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBlockSize, o.BlockSize)
	}
	zw := &Writer{
		dst:         w,
		opts:        o,
		blockSize:   o.BlockSize.Size(),
		contentSize: contentSize,
		header: Header{
			Flags:       DefaultFlags,
			BlockSize:   o.BlockSize,
			ContentSize: contentSize,
		},
	}
	if o.ContentChecksum {
		zw.header.Flags |= flagContentChecksum
		zw.hasher = xxHash32.New(0)
	}
	return zw, nil
}

// Header returns the header the Writer writes.
func (w *Writer) Header() Header {
	h := w.header
	h.Checksum = h.ComputeChecksum()
	return h
}

// Written returns the number of container bytes written so far.
func (w *Writer) Written() int64 { return w.written }

// Write buffers p and stores every block it completes.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if w.err != nil {
		return 0, w.err
	}
	if uint64(len(p)) > w.contentSize-w.consumed {
		w.err = fmt.Errorf("%w: more than %d bytes written", ErrSizeMismatch, w.contentSize)
		return 0, w.err
	}
	if err := w.writeHeader(); err != nil {
		return 0, err
	}

	n := 0
	for len(p) > 0 {
		if w.block == nil {
			w.block = make([]byte, 0, w.blockSize)
		}
		free := w.blockSize - len(w.block)
		if free > len(p) {
			free = len(p)
		}
		w.block = append(w.block, p[:free]...)
		p = p[free:]
		n += free
		w.consumed += uint64(free)

		if len(w.block) == w.blockSize {
			if err := w.flushBlock(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// Close stores the final block and writes the terminator. It does not
// close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if w.err != nil {
		return w.err
	}
	if w.consumed != w.contentSize {
		w.err = fmt.Errorf("%w: got %d bytes, header declares %d", ErrSizeMismatch, w.consumed, w.contentSize)
		return w.err
	}
	if err := w.writeHeader(); err != nil {
		return err
	}
	if len(w.block) > 0 {
		if err := w.flushBlock(); err != nil {
			return err
		}
	}

	var trailer [2 * recordFieldLen]byte
	n := recordFieldLen
	if w.hasher != nil {
		binary.LittleEndian.PutUint32(trailer[recordFieldLen:], w.hasher.Sum32())
		n += 4
	}
	return w.write(trailer[:n])
}

func (w *Writer) writeHeader() error {
	if w.headerWritten {
		return nil
	}
	w.headerWritten = true
	n, err := writeHeader(w.dst, w.header)
	w.written += int64(n)
	if err != nil {
		w.err = err
	}
	return err
}

// flushBlock compresses the buffered block and writes its record, falling
// back to the raw bytes when the codec does not shrink it.
func (w *Writer) flushBlock() error {
	src := w.block
	buf, err := w.opts.Codec.Compress(w.scratch[:0], src)
	if err != nil {
		w.err = fmt.Errorf("blockpack: compressing block %d: %w", w.index, err)
		return w.err
	}
	w.scratch = buf

	kind, payload := Compressed, buf
	// An empty record would read as the terminator.
	if len(buf) == 0 || len(buf) >= len(src) {
		kind, payload = rawKind(len(src), w.blockSize), src
	}

	var f [recordFieldLen]byte
	binary.LittleEndian.PutUint32(f[:], field(kind, len(payload)))
	if err := w.write(f[:]); err != nil {
		return err
	}
	if err := w.write(payload); err != nil {
		return err
	}

	if w.hasher != nil {
		w.hasher.Write(src)
	}
	w.opts.observe(BlockEvent{
		Index:       w.index,
		Kind:        kind,
		OriginalLen: len(src),
		StoredLen:   len(payload),
	})
	w.opts.Logger.Debug("stored block",
		slog.Int64("index", w.index),
		slog.String("kind", kind.String()),
		slog.Int("original", len(src)),
		slog.Int("stored", len(payload)))

	w.index++
	w.block = w.block[:0]
	return nil
}

func (w *Writer) write(p []byte) error {
	n, err := w.dst.Write(p)
	w.written += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		w.err = &IOError{Op: "write", Err: err}
	}
	return w.err
}
