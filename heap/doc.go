// Package heap provides the backing region an allocator grows into.
//
// # Overview
//
// A Region reserves a fixed span of address space up front and hands it out
// monotonically, sbrk style: Grow(n) returns the offset where the n new bytes
// start and never moves bytes that were granted earlier. Offsets, not
// pointers, are the currency, so a Region can be inspected and tested like any
// other byte slice.
//
//	r, err := heap.NewRegion(20 << 20)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	base, err := r.Grow(4096)
//	if errors.Is(err, heap.ErrExhausted) {
//	    // reservation used up
//	}
//	page := r.Bytes()[base : base+4096]
//
// # Platforms
//
// On Linux and macOS the reservation is an anonymous private mapping made
// through golang.org/x/sys/unix and released by Close. Elsewhere it is a Go
// slice with the reserved capacity.
//
// # Thread Safety
//
// Region instances are not thread-safe. Callers must synchronize access
// externally.
//
// # Related Packages
//
//   - github.com/joshuapare/segheap/heap/alloc: allocators built on a Region
package heap
