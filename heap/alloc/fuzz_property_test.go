package alloc

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segheap/internal/format"
)

type liveBlock struct {
	n    int
	seed byte
}

// assertNoOverlap checks that the usable spans of all live blocks are disjoint
// and 16-byte aligned, and that each still holds its pattern.
func assertNoOverlap(t *testing.T, a Allocator, usable func(Addr) int, live map[Addr]liveBlock) {
	t.Helper()
	addrs := make([]Addr, 0, len(live))
	for p := range live {
		addrs = append(addrs, p)
	}
	slices.Sort(addrs)

	for i, p := range addrs {
		require.Zero(t, p%format.DWordSize, "0x%x misaligned", p)
		requirePattern(t, a.Payload(p), live[p].n, live[p].seed)
		if i > 0 {
			prev := addrs[i-1]
			require.LessOrEqual(t, prev+Addr(usable(prev)), p, "0x%x overlaps 0x%x", prev, p)
		}
	}
}

// Test_Fuzz_RandomAllocFreeRealloc runs a seeded mix of operations and checks
// the heap after every step.
func Test_Fuzz_RandomAllocFreeRealloc(t *testing.T) {
	for _, seed := range []int64{1, 42, 1337} {
		a, err := NewSeg(newTestRegion(t, 16<<20), nil)
		require.NoError(t, err)
		rng := rand.New(rand.NewSource(seed))
		live := make(map[Addr]liveBlock)
		var order []Addr

		for step := range 2000 {
			switch op := rng.Intn(10); {
			case op < 5 || len(order) == 0:
				n := 1 + rng.Intn(700)
				if rng.Intn(20) == 0 {
					n = 2000 + rng.Intn(8000)
				}
				p, err := a.Alloc(n)
				require.NoError(t, err, "step %d", step)
				s := byte(rng.Intn(256))
				fill(a.Payload(p)[:n], s)
				live[p] = liveBlock{n: n, seed: s}
				order = append(order, p)

			case op < 8:
				i := rng.Intn(len(order))
				p := order[i]
				requirePattern(t, a.Payload(p), live[p].n, live[p].seed)
				a.Free(p)
				delete(live, p)
				order = slices.Delete(order, i, i+1)

			default:
				i := rng.Intn(len(order))
				p := order[i]
				old := live[p]
				n := 1 + rng.Intn(1500)
				q, err := a.Realloc(p, n)
				require.NoError(t, err, "step %d", step)
				requirePattern(t, a.Payload(q), min(old.n, n), old.seed)

				s := byte(rng.Intn(256))
				fill(a.Payload(q)[:n], s)
				delete(live, p)
				live[q] = liveBlock{n: n, seed: s}
				order[i] = q
			}

			require.NoError(t, a.Check(), "seed %d step %d", seed, step)
			if step%50 == 0 {
				assertNoOverlap(t, a, a.UsableSize, live)
			}
		}
		assertNoOverlap(t, a, a.UsableSize, live)

		for _, p := range order {
			a.Free(p)
		}
		assertInvariants(t, a)
		st := a.Stats()
		require.Equal(t, 1, st.FreeBlocks, "everything freed merges into one block")
		require.Zero(t, st.AllocBytes)
	}
}

// Test_Fuzz_BumpNoOverlap runs the same mix against BumpAllocator.
func Test_Fuzz_BumpNoOverlap(t *testing.T) {
	ba, err := NewBump(newTestRegion(t, 8<<20))
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(7))
	live := make(map[Addr]liveBlock)

	for range 500 {
		n := 1 + rng.Intn(1000)
		p, err := ba.Alloc(n)
		require.NoError(t, err)
		s := byte(rng.Intn(256))
		fill(ba.Payload(p)[:n], s)
		live[p] = liveBlock{n: n, seed: s}
	}
	assertNoOverlap(t, ba, ba.UsableSize, live)
}
