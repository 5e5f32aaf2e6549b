package alloc

import "github.com/joshuapare/segheap/internal/format"

// root returns the first (lowest-addressed) block of bucket k.
func (a *SegAllocator) root(k int) Addr {
	return a.word(a.base + format.RootsOffset + Addr(k*format.WordSize))
}

func (a *SegAllocator) setRoot(k int, p Addr) {
	a.setWord(a.base+format.RootsOffset+Addr(k*format.WordSize), p)
}

// insert links the free block p into its bucket, keeping the list in
// ascending address order.
func (a *SegAllocator) insert(p Addr) {
	k := classify(a.blockSize(p))
	a.setLinks(p, freeLinks{})

	head := a.root(k)
	if head == Nil {
		a.setRoot(k, p)
		return
	}
	if p < head {
		a.setRoot(k, p)
		a.setNextFree(p, head)
		a.setPrevFree(head, p)
		return
	}

	// Walk to the last node below p; p goes right after it.
	cur := head
	for n := a.nextFree(cur); n != Nil && n < p; n = a.nextFree(cur) {
		cur = n
	}
	n := a.nextFree(cur)
	a.setLinks(p, freeLinks{next: n, prev: cur})
	a.setNextFree(cur, p)
	if n != Nil {
		a.setPrevFree(n, p)
	}
}

// remove unlinks the free block p. The header must still carry the size p was
// inserted with; remove does not reclassify.
func (a *SegAllocator) remove(p Addr) {
	k := classify(a.blockSize(p))
	l := a.links(p)

	switch {
	case l.prev == Nil && l.next == Nil:
		a.setRoot(k, Nil)
	case l.next == Nil:
		a.setNextFree(l.prev, Nil)
	case l.prev == Nil:
		a.setRoot(k, l.next)
		a.setPrevFree(l.next, Nil)
	default:
		a.setPrevFree(l.next, l.prev)
		a.setNextFree(l.prev, l.next)
	}
	a.setLinks(p, freeLinks{})
}
