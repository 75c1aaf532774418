// Package parallel shards index ranges across worker goroutines.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 8,
	}
}

// Workers returns a config that shards across exactly n workers with no
// minimum chunk size. n <= 1 disables parallelism.
func Workers(n int) Config {
	return Config{Enabled: n > 1, NumWorkers: n, MinChunkSize: 1}
}

// Range is the half-open index interval [Start, End).
type Range struct {
	Start, End int
}

// Len returns the number of indices in r.
func (r Range) Len() int { return r.End - r.Start }

// Split cuts [0, n) into contiguous ranges, in order, one per worker.
//
// At most cfg.NumWorkers ranges are returned and every range but the last
// holds at least cfg.MinChunkSize items. A disabled config yields a single
// range covering everything; n <= 0 yields none.
func Split(n int, cfg Config) []Range {
	if n <= 0 {
		return nil
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2*max(cfg.MinChunkSize, 1) {
		return []Range{{Start: 0, End: n}}
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)
	ranges := make([]Range, 0, (n+chunkSize-1)/chunkSize)
	for start := 0; start < n; start += chunkSize {
		ranges = append(ranges, Range{Start: start, End: min(start+chunkSize, n)})
	}
	return ranges
}

// Run calls f once per range, each on its own goroutine, and waits for all of
// them. worker is the position of r in ranges, so callers can keep
// per-worker state in a slice of the same length.
//
// The first non-nil error is returned. A single range runs on the calling
// goroutine.
func Run(ranges []Range, f func(worker int, r Range) error) error {
	if len(ranges) == 1 {
		return f(0, ranges[0])
	}

	var g errgroup.Group
	for i, r := range ranges {
		g.Go(func() error {
			return f(i, r)
		})
	}
	return g.Wait()
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	ranges := Split(n, cfg)
	_ = Run(ranges, func(_ int, r Range) error {
		for i := r.Start; i < r.End; i++ {
			f(i)
		}
		return nil
	})
}
