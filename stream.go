package blockpack

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Compress reads exactly size bytes from src and writes them to dst as a
// container. It returns the number of bytes written to dst.
//
// If ctx is cancelled the container written so far is incomplete and
// cannot be decoded; callers must discard it.
func Compress(ctx context.Context, dst io.Writer, src io.Reader, size int64, opts *Options) (int64, error) {
	if size < 0 {
		return 0, fmt.Errorf("%w: negative size %d", ErrSizeMismatch, size)
	}
	zw, err := NewWriter(dst, uint64(size), opts)
	if err != nil {
		return 0, err
	}

	src = io.LimitReader(src, size)
	buf := make([]byte, zw.blockSize)
	for {
		if err := ctx.Err(); err != nil {
			return zw.Written(), err
		}
		n, err := io.ReadFull(src, buf)
		if n > 0 {
			if _, werr := zw.Write(buf[:n]); werr != nil {
				return zw.Written(), werr
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return zw.Written(), &IOError{Op: "read", Err: err}
		}
	}

	err = zw.Close()
	return zw.Written(), err
}

// Decompress decodes the container read from src and writes the content
// to dst. It returns the number of bytes written to dst.
func Decompress(ctx context.Context, dst io.Writer, src io.Reader, opts *Options) (int64, error) {
	return NewReader(src, opts).decode(ctx, dst)
}

// CompressFile compresses the first inputSize bytes of inputPath into a
// new container at outputPath. If inputSize is negative, the whole file is
// compressed. On failure the output file is removed.
func CompressFile(ctx context.Context, inputPath, outputPath string, inputSize int64, opts *Options) (int64, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return 0, &IOError{Op: "open", Path: inputPath, Err: err}
	}
	defer in.Close()

	if inputSize < 0 {
		fi, err := in.Stat()
		if err != nil {
			return 0, &IOError{Op: "stat", Path: inputPath, Err: err}
		}
		inputSize = fi.Size()
	}

	return writeFile(outputPath, func(w io.Writer) (int64, error) {
		return Compress(ctx, w, bufio.NewReader(in), inputSize, opts)
	})
}

// DecompressFile decodes the container at inputPath into a new file at
// outputPath. If compressedSize is not negative, no more than that many
// bytes of the input are read. On failure the output file is removed.
func DecompressFile(ctx context.Context, inputPath, outputPath string, compressedSize int64, opts *Options) (int64, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return 0, &IOError{Op: "open", Path: inputPath, Err: err}
	}
	defer in.Close()

	var src io.Reader = in
	if compressedSize >= 0 {
		src = io.LimitReader(in, compressedSize)
	}

	return writeFile(outputPath, func(w io.Writer) (int64, error) {
		n, err := Decompress(ctx, w, bufio.NewReader(src), opts)
		var ioErr *IOError
		if errors.As(err, &ioErr) && ioErr.Path == "" && ioErr.Op == "read" {
			ioErr.Path = inputPath
		}
		return n, err
	})
}

// writeFile creates path, runs fill with a buffered writer on it, and
// removes the file again unless fill and the final flush and close all
// succeed. The file is also removed if fill panics; the panic is then
// re-raised.
func writeFile(path string, fill func(io.Writer) (int64, error)) (n int64, err error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, &IOError{Op: "create", Path: path, Err: err}
	}
	done := false
	defer func() {
		if !done {
			out.Close()
			os.Remove(path)
		}
	}()

	bw := bufio.NewWriterSize(out, 1<<16)
	n, err = fill(bw)
	if err != nil {
		return n, err
	}
	if err = bw.Flush(); err != nil {
		return n, &IOError{Op: "write", Path: path, Err: err}
	}
	if err = out.Close(); err != nil {
		return n, &IOError{Op: "close", Path: path, Err: err}
	}
	done = true
	return n, nil
}
