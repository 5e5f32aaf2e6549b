package alloc

import (
	"math/bits"

	"github.com/joshuapare/segheap/internal/format"
)

// classify returns the free-list bucket for a block of the given size:
// floor(log2(size)) + 1, capped at the last bucket. Bucket k therefore holds
// sizes in [2^(k-1), 2^k), and the last bucket holds everything larger.
//
//	Class  7:    64 -   127 bytes
//	Class  8:   128 -   255 bytes
//	Class  9:   256 -   511 bytes
//	...
//	Class 15: 16384+        bytes
func classify(size uint64) int {
	return min(bits.Len64(size), format.NumLists-1)
}
