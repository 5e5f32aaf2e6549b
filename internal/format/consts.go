// Package format describes the on-heap layout of allocator blocks: word sizes,
// alignment rules, the packed header word and the fixed heap prologue. Every bit
// mask used by the allocator lives here so higher-level packages only deal in
// typed accessors.
package format

const (
	// WordSize is the size of a header, footer or free-list link word.
	WordSize = 8

	// DWordSize is the block granularity. Every block size is a multiple of it.
	DWordSize = 16

	// MinBlockSize is the smallest block the allocator hands out: header,
	// two link words while free, footer while free, rounded to DWordSize.
	MinBlockSize = 64

	// SmallRequest is the largest request that is served by a MinBlockSize block
	// without further rounding.
	SmallRequest = 32

	// SplitThreshold is the leftover size a placement must exceed before the
	// remainder is carved into its own free block.
	SplitThreshold = 64

	// DefaultChunkSize is the number of bytes the heap grows by when no free
	// block fits and the request is smaller.
	DefaultChunkSize = 1 << 8

	// NumLists is the number of segregated free-list buckets.
	NumLists = 16
)

// Header word bits (little-endian 64-bit word).
//
//	bit 0      allocated
//	bit 1      previous block allocated
//	bit 2      unused
//	bits 3-63  block size (always a multiple of DWordSize)
const (
	AllocBit     = 0x1
	PrevAllocBit = 0x2
	flagMask     = 0x7
)

// Fixed heap prologue (offsets relative to the region start).
//
//	Offset  Size  Description
//	0x00    0x80  Free-list roots, one word per bucket.
//	0x80    0x08  Alignment pad so every payload lands on a 16-byte boundary.
//	0x88    0x08  Prologue header (size 16, allocated).
//	0x90    0x08  Prologue footer.
//	0x98    0x08  Epilogue header (size 0, allocated).
const (
	RootsOffset       = 0x00
	RootsSize         = NumLists * WordSize
	PadOffset         = RootsOffset + RootsSize
	PrologueHeaderOff = PadOffset + WordSize
	PrologueSize      = DWordSize
	ProloguePayload   = PrologueHeaderOff + WordSize
	EpilogueHeaderOff = PrologueHeaderOff + PrologueSize
	InitialFootprint  = EpilogueHeaderOff + WordSize
)
