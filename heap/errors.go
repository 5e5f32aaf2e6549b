package heap

import "errors"

var (
	// ErrExhausted indicates the reservation cannot satisfy a Grow request.
	ErrExhausted = errors.New("heap: region exhausted")

	// ErrBadSize indicates a negative or overflowing size.
	ErrBadSize = errors.New("heap: bad size")

	// ErrClosed indicates use of a Region after Close.
	ErrClosed = errors.New("heap: region closed")
)
