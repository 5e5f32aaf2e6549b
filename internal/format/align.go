package format

import "github.com/joshuapare/segheap/internal/buf"

// DWordMask is the bitmask used for aligning to 16-byte boundaries (DWordSize - 1).
const DWordMask = DWordSize - 1

// Align16 returns n aligned up to the next 16-byte boundary.
//
// Example:
//
//	Align16(1)  = 16
//	Align16(16) = 16
//	Align16(17) = 32
func Align16(n int) int {
	return (n + DWordMask) &^ DWordMask
}

// BlockSizeFor returns the total block size needed to serve a request of n
// payload bytes. Requests up to SmallRequest get MinBlockSize; larger ones add
// header and footer overhead and round up to DWordSize.
//
//	BlockSizeFor(1)   = 64
//	BlockSizeFor(40)  = 64
//	BlockSizeFor(100) = 128
//
// ok is false when n is not positive or the rounded size overflows.
func BlockSizeFor(n int) (uint64, bool) {
	if n <= 0 {
		return 0, false
	}
	if n <= SmallRequest {
		return MinBlockSize, true
	}
	withOverhead, ok := buf.AddOverflowSafe(n, DWordSize+DWordMask)
	if !ok {
		return 0, false
	}
	return uint64(withOverhead/DWordSize) * DWordSize, true
}

// EvenWords rounds a word count up to an even number so growth keeps DWordSize
// granularity.
func EvenWords(words uint64) uint64 {
	if words%2 != 0 {
		return words + 1
	}
	return words
}
