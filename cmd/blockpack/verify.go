package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/xxHash/xxHash32"

	"github.com/andybalholm/blockpack"
)

var errVerifyMismatch = errors.New("decoded content differs from the input")

// verifyResult is what verifyFile reports for one input.
type verifyResult struct {
	Original   int64
	Compressed int64
}

// verifyFile compresses path into a temporary container, decodes it again
// and compares the result with the input by length and xxHash32.
func verifyFile(ctx context.Context, path string, opts *blockpack.Options) (verifyResult, error) {
	var res verifyResult

	want := xxHash32.New(0)
	f, err := os.Open(path)
	if err != nil {
		return res, &blockpack.IOError{Op: "open", Path: path, Err: err}
	}
	res.Original, err = io.Copy(want, bufio.NewReader(f))
	f.Close()
	if err != nil {
		return res, &blockpack.IOError{Op: "read", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp("", "blockpack-verify-*.lz4")
	if err != nil {
		return res, &blockpack.IOError{Op: "create", Err: err}
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	res.Compressed, err = blockpack.CompressFile(ctx, path, tmpPath, res.Original, opts)
	if err != nil {
		return res, err
	}

	container, err := os.Open(tmpPath)
	if err != nil {
		return res, &blockpack.IOError{Op: "open", Path: tmpPath, Err: err}
	}
	defer container.Close()

	got := xxHash32.New(0)
	n, err := blockpack.Decompress(ctx, got, bufio.NewReader(container), opts)
	if err != nil {
		return res, err
	}
	if n != res.Original || got.Sum32() != want.Sum32() {
		return res, fmt.Errorf("%w: %s: decoded %d bytes (xxh32 %08x), input has %d (xxh32 %08x)",
			errVerifyMismatch, path, n, got.Sum32(), res.Original, want.Sum32())
	}
	return res, nil
}

// readFileList returns the paths listed in the file at path, one per line.
// Blank lines and lines starting with '#' are skipped.
func readFileList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &blockpack.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var paths []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, &blockpack.IOError{Op: "read", Path: path, Err: err}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("file list %s names no files", path)
	}
	return paths, nil
}
