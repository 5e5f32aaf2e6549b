package heap

import (
	"fmt"

	"github.com/joshuapare/segheap/internal/buf"
)

// DefaultMaxSize is the reservation used when NewRegion is given a
// non-positive size (20 MiB).
const DefaultMaxSize = 20 << 20

// Region is a fixed reservation of bytes granted out monotonically.
type Region struct {
	mem    []byte // full reservation, len == reserved size
	brk    int    // bytes granted so far
	closed bool
}

// NewRegion reserves size bytes (rounded up to the OS page size). Nothing is
// granted until the first Grow.
func NewRegion(size int) (*Region, error) {
	if size <= 0 {
		size = DefaultMaxSize
	}
	mem, err := reserve(size)
	if err != nil {
		return nil, fmt.Errorf("heap: reserve %d bytes: %w", size, err)
	}
	return &Region{mem: mem}, nil
}

// Grow extends the granted span by n bytes and returns the offset of the first
// new byte. A zero n returns the current end without changing anything.
func (r *Region) Grow(n int) (int, error) {
	if r == nil || r.closed {
		return 0, ErrClosed
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: grow by %d", ErrBadSize, n)
	}
	end, ok := buf.AddOverflowSafe(r.brk, n)
	if !ok {
		return 0, fmt.Errorf("%w: grow by %d", ErrBadSize, n)
	}
	if end > len(r.mem) {
		return 0, fmt.Errorf("%w: need %d bytes, %d of %d in use", ErrExhausted, n, r.brk, len(r.mem))
	}
	base := r.brk
	r.brk = end
	return base, nil
}

// Bytes returns the granted span. The slice shares memory with the Region and
// stays valid until Close.
func (r *Region) Bytes() []byte {
	if r == nil || r.closed {
		return nil
	}
	return r.mem[:r.brk:r.brk]
}

// Len returns the number of bytes granted so far.
func (r *Region) Len() int { return r.brk }

// Cap returns the size of the reservation.
func (r *Region) Cap() int { return len(r.mem) }

// Reset returns every granted byte to the reservation, zeroing it. Existing
// slices from Bytes must not be used afterwards.
func (r *Region) Reset() {
	if r == nil || r.closed {
		return
	}
	clear(r.mem[:r.brk])
	r.brk = 0
}

// Close releases the reservation. Calling Close more than once is a no-op.
func (r *Region) Close() error {
	if r == nil || r.closed {
		return nil
	}
	r.closed = true
	mem := r.mem
	r.mem = nil
	r.brk = 0
	return release(mem)
}
