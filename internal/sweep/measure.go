package sweep

import (
	"io/fs"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// sizeCollector aggregates file sizes from concurrent fastwalk callbacks.
type sizeCollector struct {
	mu        sync.Mutex
	size      int64
	fileCount int64
}

func (s *sizeCollector) add(size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.size += size
	s.fileCount++
}

// Measure returns the total size and number of regular files below path.
//
// The estimate is best-effort: any listing or stat error makes the affected
// entry or subtree contribute zero, and a path that does not exist measures
// as zero. Symbolic links are neither followed nor counted.
// Measure never deletes anything and never matches targets.
//
//nolint:varnamelen // d is standard for DirEntry
func Measure(path string) SizeResult {
	collector := &sizeCollector{}

	conf := &fastwalk.Config{
		Follow: false,
	}

	// Errors only ever shrink the estimate.
	_ = fastwalk.Walk(conf, path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Unreadable entries contribute zero
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // File vanished or became unreadable
		}

		collector.add(info.Size())

		return nil
	})

	collector.mu.Lock()
	defer collector.mu.Unlock()

	return SizeResult{Size: collector.size, FileCount: collector.fileCount}
}
