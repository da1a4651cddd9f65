package blockpack

import (
	"encoding/binary"
	"fmt"
)

// A BlockKind says how a block record's payload is stored.
type BlockKind uint8

const (
	// Compressed records hold codec output shorter than the block.
	Compressed BlockKind = iota
	// RawFull records hold a whole block verbatim.
	RawFull
	// RawPartial records hold a short final block verbatim.
	RawPartial
)

func (k BlockKind) String() string {
	switch k {
	case Compressed:
		return "compressed"
	case RawFull:
		return "raw-full"
	case RawPartial:
		return "raw-partial"
	}
	return fmt.Sprintf("BlockKind(%d)", uint8(k))
}

// Record length field layout. Bit 31 marks a raw block and the low 31 bits
// carry the payload length. For 64KB blocks a full raw block is the bytes
// 00 00 01 80 and a partial one is lo hi 00 80.
const (
	rawFlag    = 1 << 31
	lengthMask = rawFlag - 1

	// recordFieldLen is the size of the length field and of the terminator.
	recordFieldLen = 4
)

// A BlockRecord is one block as stored in a container.
type BlockRecord struct {
	Kind   BlockKind
	Length uint32
	Bytes  []byte
}

// field returns the length field for a record of kind with a payload of n
// bytes.
func field(kind BlockKind, n int) uint32 {
	if kind == Compressed {
		return uint32(n)
	}
	return rawFlag | uint32(n)
}

// parseField decodes a length field read from a container whose blocks are
// blockSize bytes long.
func parseField(v uint32, blockSize int) (BlockKind, int) {
	if v&rawFlag == 0 {
		return Compressed, int(v)
	}
	n := int(v & lengthMask)
	if n == blockSize {
		return RawFull, n
	}
	return RawPartial, n
}

// rawKind returns the raw record kind for a block of n bytes.
func rawKind(n, blockSize int) BlockKind {
	if n == blockSize {
		return RawFull
	}
	return RawPartial
}

// AppendRecord appends rec's length field and payload to dst.
func AppendRecord(dst []byte, rec BlockRecord) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, field(rec.Kind, int(rec.Length)))
	return append(dst, rec.Bytes[:rec.Length]...)
}
