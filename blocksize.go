package blockpack

import "fmt"

// A BlockSizeClass is one of the four block sizes a container may declare.
// The class is chosen once per container and applies to every block in it.
type BlockSizeClass byte

// The values are the block-descriptor codes stored in byte 5 of the header.
const (
	Block64KB  BlockSizeClass = 0x40
	Block256KB BlockSizeClass = 0x50
	Block1MB   BlockSizeClass = 0x60
	Block4MB   BlockSizeClass = 0x70
)

// blockSizes is the one table mapping classes to byte sizes. Both the
// header codec and the record codec read it.
var blockSizes = [...]struct {
	class BlockSizeClass
	size  int
	name  string
}{
	{Block64KB, 64 << 10, "64KB"},
	{Block256KB, 256 << 10, "256KB"},
	{Block1MB, 1 << 20, "1MB"},
	{Block4MB, 4 << 20, "4MB"},
}

// Size returns the block size in bytes, or 0 for an unknown class.
func (c BlockSizeClass) Size() int {
	for _, b := range blockSizes {
		if b.class == c {
			return b.size
		}
	}
	return 0
}

// Valid reports whether c is one of the four known classes.
func (c BlockSizeClass) Valid() bool {
	return c.Size() != 0
}

func (c BlockSizeClass) String() string {
	for _, b := range blockSizes {
		if b.class == c {
			return b.name
		}
	}
	return fmt.Sprintf("BlockSizeClass(%#02x)", byte(c))
}

// ClassForSize returns the class whose block size is exactly n bytes.
func ClassForSize(n int) (BlockSizeClass, error) {
	for _, b := range blockSizes {
		if b.size == n {
			return b.class, nil
		}
	}
	return 0, fmt.Errorf("%w: %d bytes", ErrInvalidBlockSize, n)
}

// ParseBlockSizeClass parses the names accepted on the command line:
// "64KB", "256KB", "1MB", "4MB" (the "B" is optional), the kilobyte counts
// 64, 256, 1024 and 4096, or an exact byte count such as 65536.
func ParseBlockSizeClass(s string) (BlockSizeClass, error) {
	switch s {
	case "64KB", "64kb", "64K", "64k", "64":
		return Block64KB, nil
	case "256KB", "256kb", "256K", "256k", "256":
		return Block256KB, nil
	case "1MB", "1mb", "1M", "1m", "1024KB", "1024":
		return Block1MB, nil
	case "4MB", "4mb", "4M", "4m", "4096KB", "4096":
		return Block4MB, nil
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil && fmt.Sprint(n) == s {
		return ClassForSize(n)
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidBlockSize, s)
}
