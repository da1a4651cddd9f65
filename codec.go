package blockpack

// A Codec is the per-block transform a container wraps. The container
// treats it as opaque: it only decides, from the output length, whether
// the compressed form of a block is kept.
type Codec interface {
	// Compress appends the compressed form of src to dst[:0] and returns
	// it. The result may be as long as src or longer; the caller checks.
	Compress(dst, src []byte) ([]byte, error)

	// Decompress appends the decompressed form of src to dst[:0] and
	// returns it. The result must be exactly originalLen bytes long.
	// Callers never pass a src that is not shorter than originalLen.
	Decompress(dst, src []byte, originalLen int) ([]byte, error)
}

// A BlockObserver is told about every block a Writer stores or a Reader
// decodes, in stream order.
type BlockObserver interface {
	ObserveBlock(e BlockEvent)
}

// A BlockEvent describes how one block was stored.
type BlockEvent struct {
	// Decode is true for blocks read from a container.
	Decode bool
	Index  int64
	Kind   BlockKind
	// OriginalLen is the uncompressed length of the block; StoredLen is
	// the payload length in the container.
	OriginalLen int
	StoredLen   int
}
