package sweep

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/idelchi/nmsweep/internal/fsops"
)

// unreadableWalker returns a walker that fails to list any directory named "locked".
func unreadableWalker(opts Options) *walker {
	w := newWalker(opts.withDefaults())
	w.readDir = func(path string) ([]fs.DirEntry, error) {
		if filepath.Base(path) == "locked" {
			return nil, &fs.PathError{Op: "open", Path: path, Err: syscall.EACCES}
		}

		return os.ReadDir(path)
	}

	return w
}

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()

	for _, dir := range dirs {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSubtreePolicy(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mkdirs(t, root,
		filepath.Join("a", "locked", "node_modules"),
		filepath.Join("b", "node_modules"),
	)

	t.Run("skip", func(t *testing.T) {
		t.Parallel()

		w := unreadableWalker(Options{Silent: true, DryRun: true, Subtrees: SkipUnreadable})

		result, err := w.run(context.Background(), root)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if result.Skipped != 1 || result.TotalRemoved != 1 {
			t.Errorf("Skipped = %d, TotalRemoved = %d; want 1 and 1", result.Skipped, result.TotalRemoved)
		}
	})

	t.Run("fail", func(t *testing.T) {
		t.Parallel()

		w := unreadableWalker(Options{Silent: true, DryRun: true, Subtrees: FailFast})

		result, err := w.run(context.Background(), root)
		if !errors.Is(err, ErrSubtreeUnreadable) {
			t.Fatalf("expected ErrSubtreeUnreadable, got %v", err)
		}

		if !errors.Is(err, fs.ErrPermission) {
			t.Errorf("expected the cause to be preserved, got %v", err)
		}

		// "a" sorts before "b", so nothing was reached.
		if result.TotalRemoved != 0 {
			t.Errorf("TotalRemoved = %d, want 0", result.TotalRemoved)
		}
	})
}

func TestRootPolicyIgnoresSkip(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "locked")
	mkdirs(t, root, "node_modules")

	w := unreadableWalker(Options{Silent: true, Subtrees: SkipUnreadable})

	if _, err := w.run(context.Background(), root); !errors.Is(err, ErrRootUnreadable) {
		t.Fatalf("expected ErrRootUnreadable, got %v", err)
	}
}

func TestWalkOrderIsDepthFirst(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mkdirs(t, root,
		filepath.Join("a", "x", "node_modules"),
		filepath.Join("a", "node_modules"),
		filepath.Join("b", "node_modules"),
		"node_modules",
	)

	fake := &fsops.FakeDeleter{}

	result, err := newWalker(Options{Silent: true, Deleter: fake}.withDefaults()).run(context.Background(), root)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []string{
		filepath.Join(root, "a", "node_modules"),
		filepath.Join(root, "a", "x", "node_modules"),
		filepath.Join(root, "b", "node_modules"),
		filepath.Join(root, "node_modules"),
	}

	if len(result.Matches) != len(want) {
		t.Fatalf("matches = %+v, want %v", result.Matches, want)
	}

	for i := range want {
		if result.Matches[i].Path != want[i] {
			t.Errorf("match %d = %s, want %s", i, result.Matches[i].Path, want[i])
		}

		if fake.Calls[i] != "rmall:"+want[i] {
			t.Errorf("call %d = %s, want rmall:%s", i, fake.Calls[i], want[i])
		}
	}
}

func TestProgressReporter(t *testing.T) {
	t.Parallel()

	c := newCollector(CountFound, true)
	c.add(Match{Path: "a", Size: 10, DryRun: true})
	c.add(Match{Path: "b", Size: 5, DryRun: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type tick struct{ found, bytes int64 }

	ticks := make(chan tick, 1)

	startProgressReporter(ctx, c, func(found, bytes int64) {
		select {
		case ticks <- tick{found, bytes}:
		default:
		}
	}, time.Millisecond)

	select {
	case got := <-ticks:
		if got.found != 2 || got.bytes != 15 {
			t.Errorf("progress = %+v, want {2 15}", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("progress hook never called")
	}
}

func TestProgressReporterStopsBeforeDone(t *testing.T) {
	t.Parallel()

	c := newCollector(CountFound, false)

	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int64

	done := startProgressReporter(ctx, c, func(int64, int64) {
		calls.Add(1)
	}, time.Millisecond)

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reporter did not stop")
	}

	stopped := calls.Load()

	time.Sleep(10 * time.Millisecond)

	if got := calls.Load(); got != stopped {
		t.Errorf("hook called %d times after the reporter stopped", got-stopped)
	}
}

func TestProgressReporterWithoutHook(t *testing.T) {
	t.Parallel()

	done := startProgressReporter(context.Background(), newCollector(CountFound, false), nil, 0)

	select {
	case <-done:
	default:
		t.Error("reporter without a hook should be done immediately")
	}
}

func TestScanWaitsForProgressReporter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "p", "node_modules"), 0o755); err != nil {
		t.Fatal(err)
	}

	var (
		returned atomic.Bool
		late     atomic.Int64
	)

	opts := Options{
		Silent: true,
		DryRun: true,
		ProgressHook: func(int64, int64) {
			if returned.Load() {
				late.Add(1)
			}
		},
		ProgressInterval: time.Nanosecond,
	}.withDefaults()

	if _, err := newWalker(opts).run(context.Background(), root); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	returned.Store(true)
	time.Sleep(10 * time.Millisecond)

	if n := late.Load(); n != 0 {
		t.Errorf("progress hook ran %d times after Scan returned", n)
	}
}

func TestCollectorCounting(t *testing.T) {
	t.Parallel()

	failure := errors.New("denied")

	tests := []struct {
		name    string
		count   CountMode
		matches []Match
		removed int64
		failed  int64
	}{
		{
			name:    "found counts failures",
			count:   CountFound,
			matches: []Match{{Deleted: true}, {Err: failure}},
			removed: 2,
			failed:  1,
		},
		{
			name:    "deleted skips failures",
			count:   CountDeleted,
			matches: []Match{{Deleted: true}, {Err: failure}},
			removed: 1,
			failed:  1,
		},
		{
			name:    "dry run always counts",
			count:   CountDeleted,
			matches: []Match{{DryRun: true}, {DryRun: true}},
			removed: 2,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newCollector(tt.count, false)
			for _, m := range tt.matches {
				c.add(m)
			}

			result := c.finalize()
			if result.TotalRemoved != tt.removed || result.Failed != tt.failed {
				t.Errorf("removed/failed = %d/%d, want %d/%d", result.TotalRemoved, result.Failed, tt.removed, tt.failed)
			}
		})
	}
}
