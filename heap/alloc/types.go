package alloc

// Addr is a payload address: a byte offset into the backing region.
type Addr = uint64

// Nil is the null address. Offset 0 holds the free-list roots and is never a payload.
const Nil Addr = 0

// Backing supplies the memory an allocator manages.
//
// Implementations:
//   - heap.Region: mmap (or slice) reservation handed out sbrk style
type Backing interface {
	// Grow extends the managed region by n bytes and returns the offset of the
	// first new byte. Growth is monotonic and never moves existing bytes.
	Grow(n int) (int, error)

	// Bytes returns every byte granted so far.
	Bytes() []byte
}

// Allocator defines the interface shared by the heap allocators.
//
// Implementations:
//   - SegAllocator: segregated free lists with coalescing
//   - BumpAllocator: append-only baseline
type Allocator interface {
	// Alloc returns a block with at least n usable bytes.
	// Alloc(0) returns (Nil, nil).
	Alloc(n int) (Addr, error)

	// Free returns p to the heap. Free(Nil) is a no-op.
	Free(p Addr)

	// Realloc resizes p to at least n usable bytes, preserving its contents.
	// Realloc(Nil, n) is Alloc(n); Realloc(p, 0) frees p and returns (Nil, nil).
	Realloc(p Addr, n int) (Addr, error)

	// Payload returns the usable bytes of the allocated block at p.
	Payload(p Addr) []byte
}

var (
	_ Allocator = (*SegAllocator)(nil)
	_ Allocator = (*BumpAllocator)(nil)
)
