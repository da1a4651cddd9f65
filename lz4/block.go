package lz4

import "encoding/binary"

// A match is the basic unit of LZ77 compression.
type match struct {
	Unmatched int // the number of unmatched bytes since the previous match
	Length    int // the number of bytes in the matched string; it may be 0 at the end of the input
	Distance  int // how far back in the block to copy from
}

// appendBlock appends src to dst in the LZ4 block format, using matches to
// describe it, and returns dst.
func appendBlock(dst []byte, src []byte, matches []match) []byte {
	// Ensure that the block ends with at least 5 literal bytes,
	// and the last match is at least 12 bytes before the end of the block.
	trailingLiterals := 0
	for len(matches) > 0 && (trailingLiterals < 5 || trailingLiterals+matches[len(matches)-1].Length < 12) {
		last := matches[len(matches)-1]
		matches = matches[:len(matches)-1]
		trailingLiterals += last.Unmatched + last.Length
	}

	pos := 0
	for _, m := range matches {
		dst = append(dst, token(m.Unmatched, m.Length-4))
		if m.Unmatched >= 15 {
			dst = appendInt(dst, m.Unmatched-15)
		}
		dst = append(dst, src[pos:pos+m.Unmatched]...)

		dst = binary.LittleEndian.AppendUint16(dst, uint16(m.Distance))
		if m.Length-4 >= 15 {
			dst = appendInt(dst, m.Length-19)
		}

		pos += m.Unmatched + m.Length
	}

	// The final sequence is literals only.
	dst = append(dst, token(trailingLiterals, 0))
	if trailingLiterals >= 15 {
		dst = appendInt(dst, trailingLiterals-15)
	}
	return append(dst, src[pos:]...)
}

// token builds a sequence token from a literal count and a match length
// code, saturating each nibble at 15.
func token(literals, matchCode int) byte {
	if literals > 15 {
		literals = 15
	}
	if matchCode > 15 {
		matchCode = 15
	}
	return byte(literals<<4 | matchCode)
}

// appendInt appends n to dst in LZ4's variable-length integer format.
func appendInt(dst []byte, n int) []byte {
	for n >= 255 {
		dst = append(dst, 255)
		n -= 255
	}
	return append(dst, byte(n))
}
