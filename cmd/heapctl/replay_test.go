package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segheap/heap/alloc"
	"github.com/joshuapare/segheap/internal/trace"
)

const sampleTrace = `1600
2
5
1
a 0 512
a 1 128
r 0 640
f 1
f 0
`

func parseTrace(t *testing.T, body string) *trace.Trace {
	t.Helper()
	tr, err := trace.Parse(strings.NewReader(body))
	require.NoError(t, err)
	return tr
}

func TestReplay_Seg(t *testing.T) {
	res, err := replay(parseTrace(t, sampleTrace), replayOptions{
		Allocator: "seg",
		Check:     true,
		Chunk:     256,
		MaxHeap:   1 << 20,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Ops)
	assert.Equal(t, 2, res.Allocs)
	assert.Equal(t, 1, res.Reallocs)
	assert.Equal(t, 2, res.Frees)
	assert.Equal(t, 768, res.PeakLive)
	assert.Equal(t, 1600, res.HeapSize)
	assert.InDelta(t, 0.48, res.Utilization, 1e-9)

	require.NotNil(t, res.Stats)
	assert.Equal(t, 1, res.Stats.FreeBlocks, "all ids freed: one free block")
	assert.Equal(t, []alloc.BlockInfo{{Addr: 160, Size: 1440, PrevAlloc: true}}, res.Blocks)
}

func TestReplay_Bump(t *testing.T) {
	res, err := replay(parseTrace(t, sampleTrace), replayOptions{Allocator: "bump", MaxHeap: 1 << 20})
	require.NoError(t, err)

	assert.Equal(t, 768, res.PeakLive)
	assert.Equal(t, 8+528+144+656, res.HeapSize)
	assert.Nil(t, res.Stats)
	assert.Empty(t, res.Blocks)
}

func TestReplay_ZeroSizes(t *testing.T) {
	res, err := replay(parseTrace(t, "a 0 0\nr 0 24\nr 0 0\nf 0\n"), replayOptions{
		Allocator: "seg", Check: true, Chunk: 256, MaxHeap: 1 << 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 24, res.PeakLive)
}

func TestReplay_HugeIDs(t *testing.T) {
	const id = "1152921504606846975"
	opts := replayOptions{Allocator: "seg", Check: true, Chunk: 256, MaxHeap: 1 << 20}

	res, err := replay(parseTrace(t, "a "+id+" 8\nr "+id+" 40\nf "+id+"\n"), opts)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Ops)
	assert.Equal(t, 40, res.PeakLive)

	_, err = replay(parseTrace(t, "a "+id+" 8\nf "+id+"\nf "+id+"\n"), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3: id "+id+" is not allocated")
}

func TestReplay_Errors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		opts  replayOptions
		match string
	}{
		{"double alloc", "a 0 8\na 0 8\n", replayOptions{Allocator: "seg", Chunk: 256}, "line 2: id 0 is already allocated"},
		{"free unallocated", "f 3\n", replayOptions{Allocator: "seg", Chunk: 256}, "id 3 is not allocated"},
		{"unknown allocator", "a 0 8\n", replayOptions{Allocator: "best"}, "unknown allocator"},
		{"check needs seg", "a 0 8\n", replayOptions{Allocator: "bump", Check: true}, "--check"},
		{"bad chunk", "a 0 8\n", replayOptions{Allocator: "seg", Chunk: 100}, "bad config"},
		{"out of memory", "a 0 100000\n", replayOptions{Allocator: "seg", Chunk: 256, MaxHeap: 4096}, "out of memory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.opts.MaxHeap == 0 {
				tt.opts.MaxHeap = 1 << 20
			}
			_, err := replay(parseTrace(t, tt.body), tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.match)
		})
	}
}

func TestVerifyPattern(t *testing.T) {
	b := make([]byte, 32)
	fillPattern(b, 5, 32)
	require.NoError(t, verifyPattern(b, 5, 32))

	b[17]++
	err := verifyPattern(b, 5, 32)
	require.ErrorIs(t, err, errPayloadCorrupt)
	assert.Contains(t, err.Error(), "byte 17")

	require.ErrorIs(t, verifyPattern(b[:4], 5, 8), errPayloadCorrupt)
}

func TestReplayCommand_Text(t *testing.T) {
	withReplayFlags(t, "seg", true, true, false)
	path := writeTrace(t, sampleTrace)

	out, err := captureOutput(t, func() error { return runReplay([]string{path}) })
	require.NoError(t, err)

	for _, want := range []string{"Replay Summary", "Allocator: seg", "Peak live payload: 768 bytes", "Utilization: 48.0%", "Heap consistent", "Heap map"} {
		assert.Contains(t, out, want)
	}
}

func TestReplayCommand_JSON(t *testing.T) {
	withReplayFlags(t, "bump", false, false, true)
	path := writeTrace(t, sampleTrace)

	out, err := captureOutput(t, func() error { return runReplay([]string{path}) })
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "bump", got["allocator"])
	assert.Equal(t, path, got["trace"])
	assert.EqualValues(t, 768, got["peak_live_bytes"])
	assert.NotContains(t, got, "stats")
}

func TestReplayCommand_MapNeedsSeg(t *testing.T) {
	withReplayFlags(t, "bump", false, true, false)
	err := runReplay([]string{writeTrace(t, sampleTrace)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--map")
}

func TestReplayCommand_BadTrace(t *testing.T) {
	withReplayFlags(t, "seg", false, false, false)
	err := runReplay([]string{writeTrace(t, "z 1 2\n")})
	require.ErrorIs(t, err, trace.ErrSyntax)
}
