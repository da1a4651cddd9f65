package blockpack

// A Range is the position of one block within the uncompressed stream.
type Range struct {
	Offset int64
	Length int
}

// BlockCount returns the number of blocks a stream of total bytes is split
// into.
func BlockCount(total int64, blockSize int) int64 {
	if total <= 0 || blockSize <= 0 {
		return 0
	}
	return (total-1)/int64(blockSize) + 1
}

// BlockRanges splits a stream of total bytes into blocks of blockSize.
// Every range is blockSize long except possibly the last.
func BlockRanges(total int64, blockSize int) []Range {
	n := BlockCount(total, blockSize)
	ranges := make([]Range, 0, n)
	for i := int64(0); i < n; i++ {
		ranges = append(ranges, Range{
			Offset: i * int64(blockSize),
			Length: blockLen(total, blockSize, i),
		})
	}
	return ranges
}

// blockLen returns the length of block i.
func blockLen(total int64, blockSize int, i int64) int {
	rest := total - i*int64(blockSize)
	if rest < int64(blockSize) {
		return int(rest)
	}
	return blockSize
}
