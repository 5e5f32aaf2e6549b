package alloc

import (
	"fmt"
	"math"

	"github.com/joshuapare/segheap/internal/format"
)

// grow asks the Backing for n more bytes and refreshes the local view.
func (a *SegAllocator) grow(n uint64) (Addr, error) {
	if n > math.MaxInt {
		return Nil, fmt.Errorf("%w: grow by %d bytes", ErrNoMemory, n)
	}
	if a.onGrow != nil {
		a.onGrow(int(n))
	}
	base, err := a.mem.Grow(int(n))
	if err != nil {
		a.log.Debug("heap grow failed", "bytes", n, "heap", len(a.data), "err", err)
		return Nil, fmt.Errorf("%w: %w", ErrNoMemory, err)
	}
	a.data = a.mem.Bytes()
	if base < 0 || uint64(len(a.data)) < uint64(base)+n {
		return Nil, fmt.Errorf("%w: grow returned base %d with %d bytes mapped", ErrBadBacking, base, len(a.data))
	}
	a.log.Debug("heap grow", "bytes", n, "base", base, "heap", len(a.data))
	return Addr(base), nil
}

// extend grows the heap by words (rounded up to even) and returns the free
// block that now ends the heap, coalesced with a free predecessor if any.
func (a *SegAllocator) extend(words uint64) (Addr, error) {
	size := format.EvenWords(words) * format.WordSize
	endPrevAlloc := format.Header(a.word(a.epilogue)).PrevAlloc()

	p, err := a.grow(size)
	if err != nil {
		return Nil, err
	}
	if p != a.epilogue+format.WordSize {
		return Nil, fmt.Errorf("%w: grow returned 0x%x, heap ends at 0x%x",
			ErrBadBacking, p, a.epilogue+format.WordSize)
	}

	// The new block's header overwrites the old epilogue.
	h := format.Pack(size, endPrevAlloc, false)
	a.setHeader(p, h)
	a.setFooter(p, h)
	a.epilogue = p + size - format.WordSize
	a.setWord(a.epilogue, uint64(format.Pack(0, false, true)))

	if endPrevAlloc {
		a.insert(p)
		return p, nil
	}
	return a.coalesce(p), nil
}

// initHeap lays down the roots, pad, prologue and epilogue, then seeds the
// heap with one chunk of free space.
func (a *SegAllocator) initHeap() error {
	base, err := a.grow(format.InitialFootprint)
	if err != nil {
		return err
	}
	if base%format.DWordSize != 0 {
		return fmt.Errorf("%w: base 0x%x is not %d-byte aligned", ErrBadBacking, base, format.DWordSize)
	}
	a.base = base

	for k := range format.NumLists {
		a.setRoot(k, Nil)
	}
	a.setWord(base+format.PadOffset, 0)

	prologue := format.Pack(format.PrologueSize, true, true)
	a.setHeader(base+format.ProloguePayload, prologue)
	a.setFooter(base+format.ProloguePayload, prologue)

	a.epilogue = base + format.EpilogueHeaderOff
	a.setWord(a.epilogue, uint64(format.Pack(0, true, true)))

	if _, err := a.extend(a.chunk / format.WordSize); err != nil {
		return err
	}
	return nil
}
