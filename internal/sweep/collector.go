package sweep

import (
	"context"
	"sync"
	"time"
)

// collector accumulates the outcome of a single Scan. It is owned by that call;
// the mutex only guards reads from the progress reporter goroutine.
type collector struct {
	mu      sync.Mutex
	count   CountMode
	dryRun  bool
	removed int64
	size    int64
	found   int64
	failed  int64
	skipped int64
	matches []Match
}

// newCollector creates a collector with the requested configuration.
func newCollector(count CountMode, dryRun bool) *collector {
	return &collector{
		count:   count,
		dryRun:  dryRun,
		matches: make([]Match, 0),
	}
}

// add records a match after its deletion attempt.
func (c *collector) add(m Match) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.found++
	c.size += m.Size

	if m.Err != nil {
		c.failed++
	}

	if c.count == CountFound || m.Deleted || m.DryRun {
		c.removed++
	}

	c.matches = append(c.matches, m)
}

// skip records an unreadable directory that was passed over.
func (c *collector) skip() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.skipped++
}

// progress returns the running match count and byte total.
func (c *collector) progress() (int64, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.found, c.size
}

// finalize produces the Result from the collected data.
func (c *collector) finalize() Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	matches := make([]Match, len(c.matches))
	copy(matches, c.matches)

	return Result{
		TotalRemoved: c.removed,
		TotalSize:    c.size,
		Failed:       c.failed,
		Skipped:      c.skipped,
		Matches:      matches,
		DryRun:       c.dryRun,
	}
}

// startProgressReporter invokes hook(found, bytes) on each tick until ctx is done.
// The returned channel is closed once the reporter has stopped and no further
// hook call can happen.
//
//nolint:varnamelen // c is idiomatic for collector
func startProgressReporter(ctx context.Context, c *collector, hook func(int64, int64), interval time.Duration) <-chan struct{} {
	done := make(chan struct{})

	if hook == nil {
		close(done)

		return done
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.progress())
			case <-ctx.Done():
				return
			}
		}
	}()

	return done
}
