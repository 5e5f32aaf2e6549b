//go:build linux || darwin

package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestRegion_ReservationIsPageRounded(t *testing.T) {
	page := unix.Getpagesize()
	r := newTestRegion(t, page+1)
	assert.Equal(t, 2*page, r.Cap())
}

func TestRelease(t *testing.T) {
	mem, err := reserve(4096)
	if err != nil {
		t.Fatal(err)
	}
	assert.NoError(t, release(mem))
	assert.NoError(t, release(nil))
}
