package alloc

// coalesce merges the newly free block p with any free heap neighbours, files
// the result in the registry and returns its address. The lowest address of
// the merged span always survives.
func (a *SegAllocator) coalesce(p Addr) Addr {
	size := a.blockSize(p)
	prevFree := !a.prevAlloc(p)
	succ := a.next(p)
	succFree := !a.isAlloc(succ)

	switch {
	case !prevFree && !succFree:
		a.insert(p)
		return p

	case !prevFree && succFree:
		size += a.blockSize(succ)
		a.remove(succ)
		a.setFreeTags(p, size)
		a.insert(p)
		return p

	case prevFree && !succFree:
		pred := a.prev(p)
		return a.absorb(pred, a.blockSize(pred)+size)

	default:
		pred := a.prev(p)
		size += a.blockSize(succ)
		a.remove(succ)
		return a.absorb(pred, a.blockSize(pred)+size)
	}
}

// absorb grows the free block pred to size. pred keeps its registry slot when
// its bucket still covers the new size; otherwise it is relinked.
func (a *SegAllocator) absorb(pred Addr, size uint64) Addr {
	if classify(size) == classify(a.blockSize(pred)) {
		a.setFreeTags(pred, size)
		return pred
	}
	a.remove(pred)
	a.setFreeTags(pred, size)
	a.insert(pred)
	return pred
}
