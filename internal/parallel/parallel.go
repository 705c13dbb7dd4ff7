// Package parallel provides data-parallel loop helpers for the CPU backend.
//
// The library's execution model is sequential; individual tensor operations
// may still fan work out across rows internally, which is the only use of
// goroutines below the module layer.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinItems     int  // Minimum items before spawning goroutines at all.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
		MinItems:   64,
	}
}

// For executes f(i) for i in [0, n), splitting the range across workers.
// Falls back to sequential execution if parallelism is disabled or n is
// below the configured threshold. f must be safe to call concurrently for
// distinct i.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinItems {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinItems)

	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
