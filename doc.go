// Package blockpack reads and writes block containers: a stream split into
// fixed-size blocks, each compressed independently, framed so that any
// LZ4 frame decoder can read the result.
//
// A container is a 15-byte header (magic number, flags, block size class,
// content size and a header checksum byte), then one record per block,
// then a 4-byte zero terminator. Each record is a little-endian length
// field followed by its payload. When the high bit of the field is set the
// payload is the block's bytes verbatim; otherwise it is the block's
// compressed form and the field is its length. A block whose compressed
// form is not shorter than the block itself is always stored verbatim.
//
// The number of blocks follows from the content size in the header, so
// readers stop after the last block whether or not a terminator follows.
//
// The per-block transform is a Codec. The lz4 subpackage provides the
// default; the snappy, zstd, brotli and flate subpackages provide others,
// though only LZ4 output can be read by other LZ4 tools.
package blockpack
