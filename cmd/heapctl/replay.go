package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/segheap/heap"
	"github.com/joshuapare/segheap/heap/alloc"
	"github.com/joshuapare/segheap/internal/format"
	"github.com/joshuapare/segheap/internal/logger"
	"github.com/joshuapare/segheap/internal/trace"
)

var (
	replayAllocator string
	replayCheck     bool
	replayMap       bool
	replayChunk     int
	replayMaxHeap   int
	replayMapWidth  int
)

var errPayloadCorrupt = errors.New("payload corrupted")

func init() {
	rootCmd.AddCommand(newReplayCmd())
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>",
		Short: "Run a workload trace against an allocator",
		Long: `The replay command runs every operation of a trace file against a fresh heap,
fills each block with a pattern derived from its id and verifies the pattern
before each resize and free.

Trace lines are "a <id> <size>", "r <id> <size>" and "f <id>", optionally
preceded by a four-line numeric header.

Example:
  heapctl replay short1.rep
  heapctl replay short1.rep --check --map
  heapctl replay short1.rep --allocator bump --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args)
		},
	}

	cmd.Flags().StringVar(&replayAllocator, "allocator", "seg", "Allocator to use: seg or bump")
	cmd.Flags().BoolVar(&replayCheck, "check", false, "Validate the heap after every operation (seg only)")
	cmd.Flags().BoolVar(&replayMap, "map", false, "Draw the final block layout (seg only)")
	cmd.Flags().IntVar(&replayChunk, "chunk", format.DefaultChunkSize, "Minimum heap growth in bytes")
	cmd.Flags().IntVar(&replayMaxHeap, "max-heap", heap.DefaultMaxSize, "Heap reservation in bytes")
	cmd.Flags().IntVar(&replayMapWidth, "map-width", 64, "Cells per line in the block map")
	return cmd
}

// replayOptions selects the allocator and what to verify during a replay.
type replayOptions struct {
	Allocator string
	Check     bool
	Chunk     int
	MaxHeap   int
}

// replayResult summarizes one replay.
type replayResult struct {
	Trace       string  `json:"trace"`
	Allocator   string  `json:"allocator"`
	Ops         int     `json:"ops"`
	Allocs      int     `json:"allocs"`
	Reallocs    int     `json:"reallocs"`
	Frees       int     `json:"frees"`
	PeakLive    int     `json:"peak_live_bytes"`
	HeapSize    int     `json:"heap_bytes"`
	Utilization float64 `json:"utilization"`

	// Final layout, seg only.
	Blocks []alloc.BlockInfo `json:"-"`
	Stats  *alloc.HeapStats  `json:"stats,omitempty"`
}

// sizedAllocator is an Allocator that can report its footprint.
type sizedAllocator interface {
	alloc.Allocator
	HeapSize() int
}

// liveBlock is the replay's record of one trace id.
type liveBlock struct {
	addr alloc.Addr
	size int
	used bool
}

func runReplay(args []string) error {
	path := args[0]
	printVerbose("Reading trace: %s\n", path)

	tr, err := trace.ParseFile(path)
	if err != nil {
		return err
	}

	opts := replayOptions{
		Allocator: replayAllocator,
		Check:     replayCheck,
		Chunk:     replayChunk,
		MaxHeap:   replayMaxHeap,
	}
	if replayMap && opts.Allocator != "seg" {
		return fmt.Errorf("--map requires --allocator seg")
	}

	res, err := replay(tr, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	res.Trace = path

	if jsonOut {
		return printJSON(res)
	}

	printInfo("\nReplay Summary:\n")
	printInfo("  Trace: %s\n", res.Trace)
	printInfo("  Allocator: %s\n", res.Allocator)
	printInfo("  Operations: %d (%d alloc, %d realloc, %d free)\n", res.Ops, res.Allocs, res.Reallocs, res.Frees)
	printInfo("  Peak live payload: %s\n", formatBytes(res.PeakLive))
	printInfo("  Heap size: %s\n", formatBytes(res.HeapSize))
	printInfo("  Utilization: %.1f%%\n", res.Utilization*100)
	if res.Stats != nil {
		printInfo("  Free blocks: %d (%s, largest %s)\n",
			res.Stats.FreeBlocks, formatBytes(int(res.Stats.FreeBytes)), formatBytes(int(res.Stats.LargestFree)))
	}
	if opts.Check {
		printInfo("  ✓ Heap consistent after every operation\n")
	}

	if replayMap && !quiet {
		printInfo("\n%s\n", renderHeapMap(res.Blocks, replayMapWidth, noColor))
	}
	return nil
}

// replay runs tr against a fresh heap built from opts.
func replay(tr *trace.Trace, opts replayOptions) (*replayResult, error) {
	region, err := heap.NewRegion(opts.MaxHeap)
	if err != nil {
		return nil, err
	}
	defer region.Close()

	var (
		a   sizedAllocator
		seg *alloc.SegAllocator
	)
	switch opts.Allocator {
	case "seg":
		seg, err = alloc.NewSeg(region, &alloc.Config{ChunkSize: opts.Chunk, Logger: logger.L})
		a = seg
	case "bump":
		a, err = alloc.NewBump(region)
	default:
		return nil, fmt.Errorf("unknown allocator %q (want seg or bump)", opts.Allocator)
	}
	if err != nil {
		return nil, err
	}
	if opts.Check && seg == nil {
		return nil, fmt.Errorf("--check requires --allocator seg")
	}

	res := &replayResult{Allocator: opts.Allocator, Ops: len(tr.Ops)}
	// Keyed by id: ids are unbounded when the trace has no header.
	blocks := make(map[int]*liveBlock)
	live := 0

	for _, op := range tr.Ops {
		b, ok := blocks[op.ID]
		if !ok {
			b = &liveBlock{}
			blocks[op.ID] = b
		}
		switch op.Kind {
		case trace.Alloc:
			res.Allocs++
			if b.used {
				return nil, fmt.Errorf("line %d: id %d is already allocated", op.Line, op.ID)
			}
			p, err := a.Alloc(op.Size)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", op.Line, op, err)
			}
			*b = liveBlock{addr: p, size: op.Size, used: true}
			fillPattern(a.Payload(p), op.ID, op.Size)
			live += op.Size

		case trace.Realloc:
			res.Reallocs++
			if b.used {
				if err := verifyPattern(a.Payload(b.addr), op.ID, b.size); err != nil {
					return nil, fmt.Errorf("line %d: %s: %w", op.Line, op, err)
				}
			}
			p, err := a.Realloc(b.addr, op.Size)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", op.Line, op, err)
			}
			if err := verifyPattern(a.Payload(p), op.ID, min(b.size, op.Size)); err != nil {
				return nil, fmt.Errorf("line %d: %s: contents lost: %w", op.Line, op, err)
			}
			live += op.Size - b.size
			*b = liveBlock{addr: p, size: op.Size, used: true}
			fillPattern(a.Payload(p), op.ID, op.Size)

		case trace.Free:
			res.Frees++
			if !b.used {
				return nil, fmt.Errorf("line %d: id %d is not allocated", op.Line, op.ID)
			}
			if err := verifyPattern(a.Payload(b.addr), op.ID, b.size); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", op.Line, op, err)
			}
			a.Free(b.addr)
			live -= b.size
			delete(blocks, op.ID)
		}

		res.PeakLive = max(res.PeakLive, live)
		if opts.Check {
			if err := seg.Check(); err != nil {
				return nil, fmt.Errorf("line %d: after %s: %w", op.Line, op, err)
			}
		}
		logger.Debug("replay op", "line", op.Line, "op", op.String(), "live", live, "heap", a.HeapSize())
	}

	res.HeapSize = a.HeapSize()
	if res.HeapSize > 0 {
		res.Utilization = float64(res.PeakLive) / float64(res.HeapSize)
	}
	if seg != nil {
		res.Blocks = seg.Blocks()
		st := seg.Stats()
		res.Stats = &st
	}
	return res, nil
}

func patternByte(id, i int) byte {
	return byte(id*131 + i)
}

// fillPattern writes id's pattern into the first n bytes of payload.
func fillPattern(payload []byte, id, n int) {
	for i := range min(n, len(payload)) {
		payload[i] = patternByte(id, i)
	}
}

// verifyPattern checks the first n bytes of payload against id's pattern.
func verifyPattern(payload []byte, id, n int) error {
	if len(payload) < n {
		return fmt.Errorf("%w: block holds %d bytes, want %d", errPayloadCorrupt, len(payload), n)
	}
	for i := range n {
		if payload[i] != patternByte(id, i) {
			return fmt.Errorf("%w: id %d byte %d", errPayloadCorrupt, id, i)
		}
	}
	return nil
}
