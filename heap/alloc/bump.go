package alloc

import (
	"fmt"

	"github.com/joshuapare/segheap/internal/buf"
	"github.com/joshuapare/segheap/internal/format"
)

// BumpAllocator is an append-only allocator: every Alloc grows the Backing by
// the block size and nothing is ever reused. It is the baseline SegAllocator's
// utilization is measured against.
//
// Key characteristics:
//   - O(1) allocation: one Grow call per request
//   - Free is a no-op
//   - Realloc keeps p when it still fits, else copies to a fresh block
//
// Blocks carry a header word (same encoding as SegAllocator) so Payload can
// recover the usable size.
type BumpAllocator struct {
	mem  Backing
	data []byte
	base Addr
}

// NewBump returns a BumpAllocator over b. It grows one pad word so payloads
// land on 16-byte boundaries; b must be empty or end on a 16-byte boundary.
func NewBump(b Backing) (*BumpAllocator, error) {
	off, err := b.Grow(format.WordSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoMemory, err)
	}
	if off%format.DWordSize != 0 {
		return nil, fmt.Errorf("%w: base 0x%x not %d-byte aligned", ErrBadBacking, off, format.DWordSize)
	}
	return &BumpAllocator{mem: b, data: b.Bytes(), base: Addr(off)}, nil
}

// Alloc grows the Backing by a block large enough for n bytes plus a header.
func (ba *BumpAllocator) Alloc(n int) (Addr, error) {
	if n == 0 {
		return Nil, nil
	}
	if n < 0 {
		return Nil, fmt.Errorf("%w: %d", ErrBadSize, n)
	}
	withHeader, ok := buf.AddOverflowSafe(n, format.WordSize+format.DWordMask)
	if !ok {
		return Nil, fmt.Errorf("%w: request of %d bytes", ErrNoMemory, n)
	}
	size := withHeader &^ format.DWordMask

	off, err := ba.mem.Grow(size)
	if err != nil {
		return Nil, fmt.Errorf("%w: %w", ErrNoMemory, err)
	}
	ba.data = ba.mem.Bytes()

	p := Addr(off) + format.WordSize
	buf.PutU64LE(ba.data[off:], uint64(format.Pack(uint64(size), true, true)))
	return p, nil
}

// Free is a no-op: bump blocks are never reused.
func (ba *BumpAllocator) Free(Addr) {}

// Realloc returns p if its block already holds n bytes, else copies p into a
// new block. The old block is abandoned.
func (ba *BumpAllocator) Realloc(p Addr, n int) (Addr, error) {
	if p == Nil {
		return ba.Alloc(n)
	}
	if n == 0 {
		return Nil, nil
	}
	if n > 0 && n <= ba.UsableSize(p) {
		return p, nil
	}
	q, err := ba.Alloc(n)
	if err != nil {
		return Nil, err
	}
	copy(ba.Payload(q), ba.Payload(p))
	return q, nil
}

// Payload returns the usable bytes of the block at p.
func (ba *BumpAllocator) Payload(p Addr) []byte {
	if p == Nil {
		return nil
	}
	b, _ := buf.Slice(ba.data, int(p), ba.UsableSize(p))
	return b
}

// UsableSize returns the block size at p minus its header.
func (ba *BumpAllocator) UsableSize(p Addr) int {
	if p == Nil {
		return 0
	}
	h := format.Header(buf.U64LE(ba.data[p-format.WordSize:]))
	return int(h.Size() - format.WordSize)
}

// HeapSize returns the bytes consumed from the Backing, pad word included.
func (ba *BumpAllocator) HeapSize() int {
	return len(ba.data) - int(ba.base)
}
