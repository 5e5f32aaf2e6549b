// Package alloc provides dynamic memory allocation over a growable heap.Region.
//
// # Overview
//
// SegAllocator is a segregated free-list allocator with boundary tags. It
// serves Alloc, Free and Realloc over one contiguous region that only grows,
// requesting more bytes from its Backing when no free block fits.
//
// # Allocator Interface
//
// The core abstraction is the Allocator interface:
//
//   - Alloc(n): allocate a block with at least n usable bytes
//   - Free(p): return a block to the heap
//   - Realloc(p, n): resize, in place when the next block is free and big enough
//   - Payload(p): the usable bytes of an allocated block
//
// # Implementations
//
// SegAllocator: production allocator
//
//   - 16 size classes, class k holding blocks of size [2^(k-1), 2^k)
//   - address-ordered lists, first fit starting at the request's class
//   - immediate coalescing of adjacent free blocks
//   - footers only on free blocks; a previous-allocated bit in every header
//
// BumpAllocator: baseline that never reuses memory
//
//   - Free is a no-op
//   - Realloc copies unless the block already fits
//
// # Usage Example
//
//	r, err := heap.NewRegion(20 << 20)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	a, err := alloc.NewSeg(r, nil)
//	if err != nil {
//	    return err
//	}
//
//	p, err := a.Alloc(100)
//	if err != nil {
//	    return err // alloc.ErrNoMemory
//	}
//	copy(a.Payload(p), "hello")
//
//	p, err = a.Realloc(p, 400)
//	...
//	a.Free(p)
//
// # Heap Layout
//
//	offset 0x00  16 free-list roots (one word each)
//	offset 0x80  alignment pad
//	offset 0x88  prologue block (16 bytes, allocated)
//	offset 0x98  first block header ... epilogue header (size 0, allocated)
//
// A block is a header word, the payload and, while free, a footer word that
// mirrors the header. Addresses handed to callers are payload offsets into the
// region and are always 16-byte aligned. Offset 0 is never a payload, so Nil
// (0) is the null address.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally.
//
// # Misuse
//
// Freeing an address twice, freeing an address the allocator did not return,
// or writing past Payload(p) corrupts the heap silently. Check walks the heap
// and reports the first inconsistency; it is meant for tests and tooling.
package alloc
