package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/segheap/internal/buf"
	"github.com/joshuapare/segheap/internal/format"
)

// SegAllocator is a segregated free-list allocator with boundary-tag coalescing.
// It owns the heap laid out in its Backing: the registry roots, the prologue
// and epilogue sentinels and every block between them.
type SegAllocator struct {
	mem  Backing
	data []byte // mem.Bytes() as of the last grow

	base     Addr   // region offset of the roots
	epilogue Addr   // offset of the epilogue header word
	chunk    uint64 // minimum growth in bytes

	log *slog.Logger

	// Test hook: called before every grow with the byte count (nil in production).
	onGrow func(int)
}

// NewSeg initializes a heap in b and returns its allocator.
//
// Parameters:
//   - b: backing region; must be empty or end on a 16-byte boundary
//   - cfg: tuning (use nil for DefaultConfig)
//
// Fails with ErrNoMemory when b cannot supply the initial footprint plus one chunk.
func NewSeg(b Backing, cfg *Config) (*SegAllocator, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	a := &SegAllocator{
		mem:   b,
		chunk: uint64(cfg.ChunkSize),
		log:   cfg.logger(),
	}
	if err := a.initHeap(); err != nil {
		return nil, err
	}
	a.log.Debug("heap initialized", "base", a.base, "chunk", a.chunk, "heap", len(a.data))
	return a, nil
}

// Alloc returns the payload address of a block with at least n usable bytes.
// Alloc(0) returns (Nil, nil). When no free block fits, the heap grows by the
// larger of the block size and the chunk size.
func (a *SegAllocator) Alloc(n int) (Addr, error) {
	if n == 0 {
		return Nil, nil
	}
	if n < 0 {
		return Nil, fmt.Errorf("%w: %d", ErrBadSize, n)
	}
	size, ok := format.BlockSizeFor(n)
	if !ok {
		return Nil, fmt.Errorf("%w: request of %d bytes", ErrNoMemory, n)
	}

	if p := a.findFit(size); p != Nil {
		a.place(p, size)
		return p, nil
	}

	p, err := a.extend(max(size, a.chunk) / format.WordSize)
	if err != nil {
		return Nil, err
	}
	a.place(p, size)
	return p, nil
}

// Free returns the block at p to the heap and merges it with free neighbours.
// Free(Nil) is a no-op. Freeing anything else not returned by Alloc or Realloc,
// or freeing twice, corrupts the heap.
func (a *SegAllocator) Free(p Addr) {
	if p == Nil {
		return
	}
	h := a.header(p).WithAlloc(false)
	a.setHeader(p, h)
	a.setFooter(p, h)

	succ := a.next(p)
	sh := a.header(succ).WithPrevAlloc(false)
	a.setHeader(succ, sh)
	if !sh.Alloc() {
		a.setFooter(succ, sh)
	}

	a.coalesce(p)
}

// Realloc resizes the block at p to at least n usable bytes.
//
//   - Realloc(Nil, n) is Alloc(n).
//   - Realloc(p, 0) frees p and returns (Nil, nil).
//   - A request that rounds to p's current block size returns p.
//   - Growth absorbs a free successor in place when the two together are
//     strictly larger than the new block; otherwise the contents move to a new
//     block and p is freed. On ErrNoMemory p is left untouched.
//   - Shrinking returns p unchanged; the block is not split.
func (a *SegAllocator) Realloc(p Addr, n int) (Addr, error) {
	if p == Nil {
		return a.Alloc(n)
	}
	if n == 0 {
		a.Free(p)
		return Nil, nil
	}
	if n < 0 {
		return Nil, fmt.Errorf("%w: %d", ErrBadSize, n)
	}
	size, ok := format.BlockSizeFor(n)
	if !ok {
		return Nil, fmt.Errorf("%w: request of %d bytes", ErrNoMemory, n)
	}

	old := a.blockSize(p)
	if size <= old {
		// Shrink keeps the whole block. Splitting the tail off here would change
		// which addresses later requests get; TestRealloc_ShrinkKeepsBlock pins it.
		return p, nil
	}

	succ := a.next(p)
	if !a.isAlloc(succ) && a.blockSize(succ)+old > size {
		total := old + a.blockSize(succ)
		a.remove(succ)
		a.setSize(p, total)
		a.setPrevAlloc(a.next(p), true)
		return p, nil
	}

	q, err := a.Alloc(n)
	if err != nil {
		return Nil, err
	}
	copy(a.Payload(q), a.Payload(p))
	a.Free(p)
	return q, nil
}

// Payload returns the usable bytes of the allocated block at p. The slice
// aliases the heap and is invalidated by Free or a moving Realloc.
func (a *SegAllocator) Payload(p Addr) []byte {
	if p == Nil {
		return nil
	}
	b, _ := buf.Slice(a.data, int(p), a.UsableSize(p))
	return b
}

// UsableSize returns how many bytes the caller may use at p: the block size
// minus its header. Allocated blocks keep no footer.
func (a *SegAllocator) UsableSize(p Addr) int {
	if p == Nil {
		return 0
	}
	return int(a.blockSize(p) - format.WordSize)
}

// HeapSize returns the number of bytes the heap occupies in its Backing.
func (a *SegAllocator) HeapSize() int {
	return int(a.epilogue + format.WordSize - a.base)
}
