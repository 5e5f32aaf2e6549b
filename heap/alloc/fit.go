package alloc

import "github.com/joshuapare/segheap/internal/format"

// findFit returns the first block, in address order, of the lowest non-empty
// bucket at or above size's class that is at least size bytes. This is first
// fit within the starting class, not a global best fit.
func (a *SegAllocator) findFit(size uint64) Addr {
	for k := classify(size); k < format.NumLists; k++ {
		for p := a.root(k); p != Nil; p = a.nextFree(p) {
			if a.blockSize(p) >= size {
				return p
			}
		}
	}
	return Nil
}

// place allocates size bytes at the free block p, splitting off the remainder
// when it exceeds SplitThreshold.
func (a *SegAllocator) place(p Addr, size uint64) {
	total := a.blockSize(p)
	a.remove(p)

	rest := total - size
	if rest > format.SplitThreshold {
		a.setHeader(p, format.Pack(size, a.prevAlloc(p), true))
		tail := p + size
		a.setFreeTags(tail, rest)
		a.insert(tail)
		a.setPrevAlloc(a.next(tail), false)
		return
	}

	a.setAlloc(p, true)
	a.setPrevAlloc(a.next(p), true)
}
