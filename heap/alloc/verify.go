package alloc

import (
	"fmt"

	"github.com/joshuapare/segheap/internal/format"
)

// BlockInfo describes one block in the heap's linear layout.
type BlockInfo struct {
	Addr      Addr   // payload address
	Size      uint64 // total block size, header included
	Alloc     bool
	PrevAlloc bool
}

// HeapStats summarizes a heap walk.
type HeapStats struct {
	HeapSize    int    // bytes from the roots to the end of the epilogue
	Blocks      int    // blocks between the sentinels
	FreeBlocks  int    // blocks currently free
	FreeBytes   uint64 // sum of free block sizes
	AllocBytes  uint64 // sum of allocated block sizes
	LargestFree uint64 // size of the largest free block
}

// firstBlock is the payload address of the block right after the prologue.
func (a *SegAllocator) firstBlock() Addr {
	return a.base + format.ProloguePayload + format.PrologueSize
}

// Blocks returns every block between the prologue and the epilogue in address order.
func (a *SegAllocator) Blocks() []BlockInfo {
	var out []BlockInfo
	for p := a.firstBlock(); a.blockSize(p) != 0; p = a.next(p) {
		h := a.header(p)
		out = append(out, BlockInfo{Addr: p, Size: h.Size(), Alloc: h.Alloc(), PrevAlloc: h.PrevAlloc()})
	}
	return out
}

// Stats walks the heap and returns aggregate occupancy.
func (a *SegAllocator) Stats() HeapStats {
	st := HeapStats{HeapSize: a.HeapSize()}
	for _, b := range a.Blocks() {
		st.Blocks++
		if b.Alloc {
			st.AllocBytes += b.Size
			continue
		}
		st.FreeBlocks++
		st.FreeBytes += b.Size
		st.LargestFree = max(st.LargestFree, b.Size)
	}
	return st
}

// Check walks the heap and the free-list registry and returns the first
// inconsistency found, wrapped in ErrCorrupt. It is not called by Alloc, Free
// or Realloc.
//
// Checked:
//   - sentinels are allocated and the epilogue ends the walk
//   - block sizes are 16-byte multiples no smaller than 64, payloads 16-byte aligned
//   - each header's previous-allocated bit matches the real predecessor
//   - free blocks have matching footers and never touch another free block
//   - each free block sits in exactly one list, in the bucket of its size
//   - lists are address-ordered with consistent back links
func (a *SegAllocator) Check() error {
	pro := a.header(a.base + format.ProloguePayload)
	if pro != format.Pack(format.PrologueSize, true, true) {
		return fmt.Errorf("%w: prologue header 0x%x", ErrCorrupt, uint64(pro))
	}

	free := make(map[Addr]bool)
	end := a.epilogue + format.WordSize
	prevAlloc := true
	p := a.firstBlock()
	for {
		if p > end {
			return fmt.Errorf("%w: block 0x%x runs past epilogue 0x%x", ErrCorrupt, p, a.epilogue)
		}
		h := a.header(p)
		if h.Size() == 0 {
			break
		}
		switch {
		case h.Size()%format.DWordSize != 0 || h.Size() < format.MinBlockSize:
			return fmt.Errorf("%w: block 0x%x has size %d", ErrCorrupt, p, h.Size())
		case p%format.DWordSize != 0:
			return fmt.Errorf("%w: block 0x%x is misaligned", ErrCorrupt, p)
		case h.PrevAlloc() != prevAlloc:
			return fmt.Errorf("%w: block 0x%x prev-alloc bit %v, predecessor allocated %v",
				ErrCorrupt, p, h.PrevAlloc(), prevAlloc)
		}
		if !h.Alloc() {
			if !prevAlloc {
				return fmt.Errorf("%w: free block 0x%x follows a free block", ErrCorrupt, p)
			}
			if f := a.footer(p); f != h {
				return fmt.Errorf("%w: free block 0x%x header 0x%x footer 0x%x",
					ErrCorrupt, p, uint64(h), uint64(f))
			}
			free[p] = false
		}
		prevAlloc = h.Alloc()
		p += h.Size()
	}

	if p-format.WordSize != a.epilogue {
		return fmt.Errorf("%w: zero-size block at 0x%x before epilogue 0x%x", ErrCorrupt, p, a.epilogue)
	}
	epi := format.Header(a.word(a.epilogue))
	if !epi.Alloc() || epi.PrevAlloc() != prevAlloc {
		return fmt.Errorf("%w: epilogue header 0x%x", ErrCorrupt, uint64(epi))
	}

	listed := 0
	for k := range format.NumLists {
		prev := Nil
		for q := a.root(k); q != Nil; q = a.nextFree(q) {
			seen, ok := free[q]
			switch {
			case !ok:
				return fmt.Errorf("%w: list %d holds 0x%x, not a free block", ErrCorrupt, k, q)
			case seen:
				return fmt.Errorf("%w: free block 0x%x listed twice", ErrCorrupt, q)
			case classify(a.blockSize(q)) != k:
				return fmt.Errorf("%w: block 0x%x of size %d in list %d", ErrCorrupt, q, a.blockSize(q), k)
			case q <= prev:
				return fmt.Errorf("%w: list %d out of address order at 0x%x", ErrCorrupt, k, q)
			case a.prevFree(q) != prev:
				return fmt.Errorf("%w: block 0x%x back link 0x%x, want 0x%x", ErrCorrupt, q, a.prevFree(q), prev)
			}
			free[q] = true
			listed++
			prev = q
		}
	}
	if listed != len(free) {
		return fmt.Errorf("%w: %d free blocks, %d listed", ErrCorrupt, len(free), listed)
	}
	return nil
}
