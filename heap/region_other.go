//go:build !linux && !darwin

package heap

import "os"

// reserve allocates the reservation as an ordinary Go slice when mmap isn't used.
func reserve(size int) ([]byte, error) {
	page := os.Getpagesize()
	size = (size + page - 1) &^ (page - 1)
	return make([]byte, size), nil
}

func release([]byte) error { return nil }
