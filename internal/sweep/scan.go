package sweep

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/idelchi/nmsweep/internal/fsops"
	"github.com/idelchi/nmsweep/internal/units"
)

// frame is one directory on the walk's work-list, with the position of the next entry to visit.
type frame struct {
	path    string
	entries []fs.DirEntry
	next    int
}

// walker carries the state of one Scan.
type walker struct {
	opts      Options
	collector *collector
	readDir   func(string) ([]fs.DirEntry, error)
}

func newWalker(opts Options) *walker {
	return &walker{
		opts:      opts,
		collector: newCollector(opts.Count, opts.DryRun),
		readDir:   os.ReadDir,
	}
}

// Scan walks the tree below root and reclaims every directory named opts.Target.
//
// Directories whose name starts with HiddenPrefix are never entered, and matched
// directories are never searched for nested matches. Every match is measured
// with Measure before its deletion is attempted, so Result.TotalSize reflects the
// state before deletion even when the deletion fails.
//
// Scan returns an error wrapping ErrRootUnreadable if root cannot be listed.
// Unreadable directories below the root are skipped or, under FailFast, abort the
// scan with ErrSubtreeUnreadable. A deletion failing for lack of permission is
// logged and the walk continues; any other deletion failure aborts the scan with
// ErrDeleteFailed. When the scan aborts or ctx is cancelled, the partial Result is
// returned alongside the error. Deletions already performed are not undone.
func Scan(ctx context.Context, root string, opts Options) (Result, error) {
	return newWalker(opts.withDefaults()).run(ctx, root)
}

// run performs the walk and finalizes the result.
func (w *walker) run(ctx context.Context, root string) (Result, error) {
	start := time.Now()

	reporterCtx, stopReporter := context.WithCancel(ctx)
	done := startProgressReporter(reporterCtx, w.collector, w.opts.ProgressHook, w.opts.ProgressInterval)

	err := w.walk(ctx, filepath.Clean(root))

	// The caller may clear the progress line as soon as Scan returns.
	stopReporter()
	<-done

	result := w.collector.finalize()
	result.Elapsed = time.Since(start)

	return result, err
}

// walk visits the tree depth-first, in directory listing order, without recursion.
//
//nolint:varnamelen // w is idiomatic for walker
func (w *walker) walk(ctx context.Context, root string) error {
	w.info("searching", "target", w.opts.Target, "root", root)

	entries, err := w.readDir(root)
	if err != nil {
		return fmt.Errorf("%w: listing %q: %w", ErrRootUnreadable, root, err)
	}

	w.debug("walk options", "dry-run", w.opts.DryRun, "count", w.opts.Count, "subtrees", w.opts.Subtrees)

	stack := []*frame{{path: root, entries: entries}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		top := stack[len(stack)-1]
		if top.next >= len(top.entries) {
			stack = stack[:len(stack)-1]

			continue
		}

		entry := top.entries[top.next]
		top.next++

		// Files, symlinks and devices never match, whatever their name.
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()
		path := filepath.Join(top.path, name)

		switch {
		case strings.HasPrefix(name, HiddenPrefix):
			w.debug("skipping hidden directory", "path", path)
		case name == w.opts.Target:
			if err := w.reclaim(path); err != nil {
				return err
			}
		default:
			children, err := w.readDir(path)
			if err != nil {
				if err := w.unreadable(path, err); err != nil {
					return err
				}

				continue
			}

			stack = append(stack, &frame{path: path, entries: children})
		}
	}

	return nil
}

// reclaim measures a matched directory and deletes it unless running dry.
func (w *walker) reclaim(path string) error {
	size := Measure(path)

	match := Match{
		Path:      path,
		Size:      size.Size,
		FileCount: size.FileCount,
		DryRun:    w.opts.DryRun,
	}

	if !w.opts.DryRun {
		if err := w.opts.Deleter.RemoveAll(path); err != nil {
			match.Err = err
			match.Error = err.Error()
		} else {
			match.Deleted = true
		}
	}

	w.collector.add(match)

	if w.opts.OnMatch != nil {
		w.opts.OnMatch(match)
	}

	switch {
	case match.Err == nil && w.opts.DryRun:
		w.info("found", "path", path, "size", units.FormatBytes(float64(size.Size)), "files", size.FileCount)
	case match.Err == nil:
		w.info("removed", "path", path, "size", units.FormatBytes(float64(size.Size)), "files", size.FileCount)
	case fsops.IsPermission(match.Err):
		w.warn("removing failed", "path", path, "error", match.Err)
	default:
		return fmt.Errorf("%w: removing %q: %w", ErrDeleteFailed, path, match.Err)
	}

	return nil
}

// unreadable applies the subtree error policy to a directory that could not be listed.
func (w *walker) unreadable(path string, err error) error {
	if w.opts.Subtrees == FailFast {
		return fmt.Errorf("%w: listing %q: %w", ErrSubtreeUnreadable, path, err)
	}

	w.collector.skip()
	w.warn("skipping unreadable directory", "path", path, "error", err)

	return nil
}

func (w *walker) info(msg string, keyvals ...any) {
	if w.opts.Logger != nil {
		w.opts.Logger.Info(msg, keyvals...)
	}
}

func (w *walker) warn(msg string, keyvals ...any) {
	if w.opts.Logger != nil {
		w.opts.Logger.Warn(msg, keyvals...)
	}
}

func (w *walker) debug(msg string, keyvals ...any) {
	if w.opts.Logger != nil {
		w.opts.Logger.Debug(msg, keyvals...)
	}
}
