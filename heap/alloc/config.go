package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/segheap/internal/format"
	"github.com/joshuapare/segheap/internal/logger"
)

// Config tunes a SegAllocator.
type Config struct {
	// ChunkSize is the minimum number of bytes requested from the Backing when
	// the heap grows. Must be a multiple of 16 and at least 64.
	ChunkSize int

	// Logger receives Debug records for heap growth. nil uses logger.L, which
	// discards unless HEAP_LOG_ALLOC is set.
	Logger *slog.Logger
}

// DefaultConfig is used when NewSeg is given a nil config.
var DefaultConfig = Config{
	ChunkSize: format.DefaultChunkSize,
}

func (c Config) validate() error {
	if c.ChunkSize < format.MinBlockSize || c.ChunkSize%format.DWordSize != 0 {
		return fmt.Errorf("%w: chunk size %d must be a multiple of %d and >= %d",
			ErrBadConfig, c.ChunkSize, format.DWordSize, format.MinBlockSize)
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logger.L
}
