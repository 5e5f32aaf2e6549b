package alloc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segheap/heap"
	"github.com/joshuapare/segheap/internal/format"
)

// ============================================================================
// Backing Utilities
// ============================================================================

// limitBacking is a slice-backed Backing that refuses to grow past limit bytes.
// Unlike heap.Region its limit is exact, which makes exhaustion easy to hit.
type limitBacking struct {
	mem   []byte
	limit int
	calls int
}

func newLimitBacking(limit int) *limitBacking {
	return &limitBacking{mem: make([]byte, 0, limit), limit: limit}
}

func (b *limitBacking) Grow(n int) (int, error) {
	b.calls++
	if len(b.mem)+n > b.limit {
		return 0, fmt.Errorf("%w: %d + %d > %d", heap.ErrExhausted, len(b.mem), n, b.limit)
	}
	base := len(b.mem)
	b.mem = b.mem[:base+n]
	return base, nil
}

func (b *limitBacking) Bytes() []byte { return b.mem }

// newTestRegion reserves a heap.Region released at test cleanup.
func newTestRegion(t testing.TB, size int) *heap.Region {
	t.Helper()
	r, err := heap.NewRegion(size)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// ============================================================================
// Allocator Utilities
// ============================================================================

// newTestSeg returns a SegAllocator over a 1 MiB region with the default config.
func newTestSeg(t testing.TB) *SegAllocator {
	t.Helper()
	return newTestSegConfig(t, nil)
}

func newTestSegConfig(t testing.TB, cfg *Config) *SegAllocator {
	t.Helper()
	a, err := NewSeg(newTestRegion(t, 1<<20), cfg)
	require.NoError(t, err)
	assertInvariants(t, a)
	return a
}

// newLimitedSeg returns a SegAllocator whose backing refuses to grow beyond limit bytes.
func newLimitedSeg(t testing.TB, limit int) (*SegAllocator, *limitBacking) {
	t.Helper()
	b := newLimitBacking(limit)
	a, err := NewSeg(b, nil)
	require.NoError(t, err)
	return a, b
}

// setupGrowCounter installs a grow hook and returns a pointer to the number of grows seen.
func setupGrowCounter(a *SegAllocator) *int {
	count := 0
	a.onGrow = func(int) { count++ }
	return &count
}

// ============================================================================
// Invariant Assertions
// ============================================================================

// assertInvariants fails the test if Check reports any inconsistency.
func assertInvariants(t testing.TB, a *SegAllocator) {
	t.Helper()
	require.NoError(t, a.Check())
}

// listAddrs returns the blocks of bucket k in list order.
func listAddrs(a *SegAllocator, k int) []Addr {
	var out []Addr
	for p := a.root(k); p != Nil; p = a.nextFree(p) {
		out = append(out, p)
	}
	return out
}

// freeBlocks returns every free block in address order as addr -> size.
func freeBlocks(a *SegAllocator) map[Addr]uint64 {
	out := make(map[Addr]uint64)
	for _, b := range a.Blocks() {
		if !b.Alloc {
			out[b.Addr] = b.Size
		}
	}
	return out
}

// fill writes a byte pattern derived from seed into p's payload.
func fill(payload []byte, seed byte) {
	for i := range payload {
		payload[i] = seed + byte(i)
	}
}

// requirePattern checks that the first n bytes of payload match fill(seed).
func requirePattern(t testing.TB, payload []byte, n int, seed byte) {
	t.Helper()
	require.GreaterOrEqual(t, len(payload), n)
	for i := range n {
		if payload[i] != seed+byte(i) {
			require.Failf(t, "pattern mismatch", "byte %d = 0x%02x, want 0x%02x", i, payload[i], seed+byte(i))
		}
	}
}

// Offsets of a fresh default heap.
const (
	firstPayload Addr = format.InitialFootprint // payload of the first block
	firstEnd     Addr = firstPayload + format.DefaultChunkSize
)
