package alloc

import (
	"github.com/joshuapare/segheap/internal/buf"
	"github.com/joshuapare/segheap/internal/format"
)

// Block accessors. Every block is addressed by its payload offset p:
//
//	p-8            header word
//	p              payload (allocated) or next-free link (free)
//	p+8            prev-free link (free only)
//	p+size-16      footer word (free only)
//	p+size         next block's payload
//
// The header's allocated bit says which view of the payload is live: user bytes
// while allocated, freeLinks while free.

func (a *SegAllocator) word(off Addr) uint64 { return buf.U64LE(a.data[off:]) }

func (a *SegAllocator) setWord(off Addr, v uint64) { buf.PutU64LE(a.data[off:], v) }

func (a *SegAllocator) header(p Addr) format.Header {
	return format.Header(a.word(p - format.WordSize))
}

func (a *SegAllocator) setHeader(p Addr, h format.Header) {
	a.setWord(p-format.WordSize, uint64(h))
}

// setFooter writes h at the footer position implied by h's own size.
func (a *SegAllocator) setFooter(p Addr, h format.Header) {
	a.setWord(p+h.Size()-format.DWordSize, uint64(h))
}

// footer reads the footer of a free block.
func (a *SegAllocator) footer(p Addr) format.Header {
	return format.Header(a.word(p + a.blockSize(p) - format.DWordSize))
}

// setFreeTags writes matching header and footer for a free block of size.
// A free block's predecessor is always allocated.
func (a *SegAllocator) setFreeTags(p Addr, size uint64) {
	h := format.Pack(size, true, false)
	a.setHeader(p, h)
	a.setFooter(p, h)
}

func (a *SegAllocator) blockSize(p Addr) uint64 { return a.header(p).Size() }

func (a *SegAllocator) isAlloc(p Addr) bool { return a.header(p).Alloc() }

func (a *SegAllocator) prevAlloc(p Addr) bool { return a.header(p).PrevAlloc() }

func (a *SegAllocator) setAlloc(p Addr, alloc bool) {
	a.setHeader(p, a.header(p).WithAlloc(alloc))
}

func (a *SegAllocator) setPrevAlloc(p Addr, prevAlloc bool) {
	a.setHeader(p, a.header(p).WithPrevAlloc(prevAlloc))
}

func (a *SegAllocator) setSize(p Addr, size uint64) {
	a.setHeader(p, a.header(p).WithSize(size))
}

// next returns the payload address of the heap-adjacent successor.
func (a *SegAllocator) next(p Addr) Addr { return p + a.blockSize(p) }

// prev returns the payload address of the heap-adjacent predecessor. Only
// valid when !prevAlloc(p): allocated blocks carry no footer.
func (a *SegAllocator) prev(p Addr) Addr {
	return p - format.Header(a.word(p-format.DWordSize)).Size()
}

// freeLinks is the payload of a free block: its neighbours in the size-class list.
type freeLinks struct {
	next Addr
	prev Addr
}

func (a *SegAllocator) links(p Addr) freeLinks {
	return freeLinks{next: a.word(p), prev: a.word(p + format.WordSize)}
}

func (a *SegAllocator) setLinks(p Addr, l freeLinks) {
	a.setWord(p, l.next)
	a.setWord(p+format.WordSize, l.prev)
}

func (a *SegAllocator) nextFree(p Addr) Addr { return a.word(p) }

func (a *SegAllocator) prevFree(p Addr) Addr { return a.word(p + format.WordSize) }

func (a *SegAllocator) setNextFree(p, q Addr) { a.setWord(p, q) }

func (a *SegAllocator) setPrevFree(p, q Addr) { a.setWord(p+format.WordSize, q) }
