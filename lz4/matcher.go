package lz4

import (
	"encoding/binary"
	"math/bits"
	"runtime"
)

// This file is based on code from github.com/golang/snappy.

//Copyright (c) 2011 The Snappy-Go Authors. All rights reserved.
//
//Redistribution and use in source and binary forms, with or without
//modification, are permitted provided that the following conditions are
//met:
//
//   * Redistributions of source code must retain the above copyright
//notice, this list of conditions and the following disclaimer.
//   * Redistributions in binary form must reproduce the above
//copyright notice, this list of conditions and the following disclaimer
//in the documentation and/or other materials provided with the
//distribution.
//   * Neither the name of Google Inc. nor the names of its
//contributors may be used to endorse or promote products derived from
//this software without specific prior written permission.
//
//THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
//"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
//LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
//A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
//OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
//SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
//LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
//DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
//THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
//(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
//OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

const (
	maxTableSize = 1 << 14
	shift        = 32 - 14
	// tableMask is redundant, but helps the compiler eliminate bounds
	// checks.
	tableMask = maxTableSize - 1

	maxDistance = 65535
)

// A matcher finds matches within a single block. Blocks are independent,
// so nothing carries over from one call to the next.
type matcher struct {
	// searchLen is how many older entries on the hash chain to try after
	// the first candidate. Zero disables the chain.
	searchLen int

	table [maxTableSize]uint32
	chain []uint16
}

// findMatches looks for matches in src, appends them to dst, and returns dst.
func (q *matcher) findMatches(dst []match, src []byte) []match {
	q.table = [maxTableSize]uint32{}
	if q.searchLen > 0 {
		if cap(q.chain) >= len(src) {
			q.chain = q.chain[:len(src)]
			for i := range q.chain {
				q.chain[i] = 0
			}
		} else {
			q.chain = make([]uint16, len(src))
		}
	}

	// sLimit is when to stop looking for offset/length copies.
	sLimit := len(src) - 12

	// nextEmit is where in src the next literal run starts.
	nextEmit := 0

	// The block must start with a literal, as there are no previous bytes
	// to copy, so we start looking for hash matches at s == 1.
	s := 1

	if s > sLimit {
		goto emitRemainder
	}

	for {
		nextHash := hash4(binary.LittleEndian.Uint32(src[s:]))

		// Heuristic match skipping: if 32 bytes are scanned with no matches
		// found, start looking only at every other byte, and so on. The
		// "skip" variable counts bytes since the last match; dividing it by
		// 32 gives the number of bytes to move ahead for each iteration.
		skip := 32

		nextS := s
		candidate := 0
		for {
			s = nextS
			bytesBetweenHashLookups := skip >> 5
			nextS = s + bytesBetweenHashLookups
			skip += bytesBetweenHashLookups
			if nextS > sLimit {
				goto emitRemainder
			}
			candidate = int(q.table[nextHash&tableMask])
			q.table[nextHash&tableMask] = uint32(s)
			nextHash = hash4(binary.LittleEndian.Uint32(src[nextS:]))
			if candidate == 0 {
				continue
			}
			q.link(s, candidate)
			if s-candidate <= maxDistance && binary.LittleEndian.Uint32(src[s:]) == binary.LittleEndian.Uint32(src[candidate:]) {
				break
			}
		}

		// A 4-byte match has been found. Prior to the match,
		// src[nextEmit:s] are unmatched.
		base := s
		s = extendMatch(src, candidate+4, s+4)
		best := candidate

		// Follow the chain to see if an older candidate matches further.
		for i := 0; i < q.searchLen; i++ {
			older := candidate - int(q.chain[candidate])
			if older == candidate || older <= 0 || base-older > maxDistance {
				break
			}
			if end := extendMatch(src, older, base); end > s {
				s, best = end, older
			}
			candidate = older
		}

		dst = append(dst, match{
			Unmatched: base - nextEmit,
			Length:    s - base,
			Distance:  base - best,
		})
		nextEmit = s
		if s >= sLimit {
			goto emitRemainder
		}

		if q.searchLen == 0 {
			// Update the hash table at s-1 before continuing at s.
			q.table[hash4(binary.LittleEndian.Uint32(src[s-1:]))&tableMask] = uint32(s - 1)
			continue
		}
		for i := base + 1; i < s; i++ {
			h := hash4(binary.LittleEndian.Uint32(src[i:])) & tableMask
			if prev := int(q.table[h]); prev != 0 {
				q.link(i, prev)
			}
			q.table[h] = uint32(i)
		}
	}

emitRemainder:
	if nextEmit < len(src) {
		dst = append(dst, match{
			Unmatched: len(src) - nextEmit,
		})
	}
	return dst
}

// link records prev as the previous position with the same hash as pos.
func (q *matcher) link(pos, prev int) {
	if q.searchLen > 0 && pos-prev < 65536 {
		q.chain[pos] = uint16(pos - prev)
	}
}

const hashMul32 = 0x1e35a7bd

func hash4(u uint32) uint32 {
	return (u * hashMul32) >> shift
}

// extendMatch returns the largest k such that k <= len(src) and that
// src[i:i+k-j] and src[j:k] have the same contents.
//
// It assumes that:
//
//	0 <= i && i < j && j <= len(src)
func extendMatch(src []byte, i, j int) int {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		// As long as we are 8 or more bytes before the end of src, we can load and
		// compare 8 bytes at a time. If those 8 bytes are equal, repeat.
		for j+8 < len(src) {
			iBytes := binary.LittleEndian.Uint64(src[i:])
			jBytes := binary.LittleEndian.Uint64(src[j:])
			if iBytes != jBytes {
				// The index of the first byte that differs is the number of
				// trailing zero bits in the XOR, divided by 8.
				return j + bits.TrailingZeros64(iBytes^jBytes)>>3
			}
			i, j = i+8, j+8
		}
	case "386":
		// On a 32-bit CPU, we do it 4 bytes at a time.
		for j+4 < len(src) {
			iBytes := binary.LittleEndian.Uint32(src[i:])
			jBytes := binary.LittleEndian.Uint32(src[j:])
			if iBytes != jBytes {
				return j + bits.TrailingZeros32(iBytes^jBytes)>>3
			}
			i, j = i+4, j+4
		}
	}
	for ; j < len(src) && src[i] == src[j]; i, j = i+1, j+1 {
	}
	return j
}
