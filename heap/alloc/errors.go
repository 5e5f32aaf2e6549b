package alloc

import "errors"

var (
	// ErrNoMemory indicates the backing region refused to grow.
	ErrNoMemory = errors.New("alloc: out of memory")

	// ErrBadSize indicates a negative request size.
	ErrBadSize = errors.New("alloc: bad size")

	// ErrBadConfig indicates an unusable Config.
	ErrBadConfig = errors.New("alloc: bad config")

	// ErrBadBacking indicates the Backing returned misaligned or non-contiguous memory.
	ErrBadBacking = errors.New("alloc: bad backing region")

	// ErrCorrupt indicates Check found an inconsistent heap.
	ErrCorrupt = errors.New("alloc: heap corrupt")
)
