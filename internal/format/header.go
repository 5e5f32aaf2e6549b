package format

// Header is a packed block header (or footer) word.
type Header uint64

// Pack builds a header word from its three fields.
func Pack(size uint64, prevAlloc, alloc bool) Header {
	h := Header(size &^ flagMask)
	if prevAlloc {
		h |= PrevAllocBit
	}
	if alloc {
		h |= AllocBit
	}
	return h
}

// Size returns the total block size in bytes, header included.
func (h Header) Size() uint64 { return uint64(h) &^ flagMask }

// Alloc reports whether the block is allocated.
func (h Header) Alloc() bool { return h&AllocBit != 0 }

// PrevAlloc reports whether the heap-adjacent predecessor is allocated.
func (h Header) PrevAlloc() bool { return h&PrevAllocBit != 0 }

// WithSize returns h with its size replaced.
func (h Header) WithSize(size uint64) Header { return Pack(size, h.PrevAlloc(), h.Alloc()) }

// WithAlloc returns h with its allocated flag replaced.
func (h Header) WithAlloc(alloc bool) Header { return Pack(h.Size(), h.PrevAlloc(), alloc) }

// WithPrevAlloc returns h with its previous-allocated flag replaced.
func (h Header) WithPrevAlloc(prevAlloc bool) Header { return Pack(h.Size(), prevAlloc, h.Alloc()) }
