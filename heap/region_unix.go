//go:build linux || darwin

package heap

import (
	"errors"

	"golang.org/x/sys/unix"
)

// reserve maps size bytes of anonymous, private, zero-filled memory.
func reserve(size int) ([]byte, error) {
	page := unix.Getpagesize()
	size = (size + page - 1) &^ (page - 1)
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func release(mem []byte) error {
	if mem == nil {
		return nil
	}
	err := unix.Munmap(mem)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
