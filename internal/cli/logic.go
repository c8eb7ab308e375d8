package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/nmsweep/internal/config"
	"github.com/idelchi/nmsweep/internal/history"
	"github.com/idelchi/nmsweep/internal/metrics"
	"github.com/idelchi/nmsweep/internal/sweep"
)

// clearLineWriter erases a pending progress line before each write.
type clearLineWriter struct {
	w io.Writer
}

func (c clearLineWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(c.w, "\r\033[2K"); err != nil {
		return 0, err
	}

	return c.w.Write(p)
}

//nolint:funlen // Wires every optional component of a sweep.
func logic(ctx context.Context, path string, cfg *config.Config, debug bool, stdout, stderr io.Writer) error {
	enableProgress := cfg.Output != "json" &&
		!cfg.Silent &&
		!debug &&
		isStderrTerminal(stderr)

	logWriter := stderr
	if enableProgress {
		logWriter = clearLineWriter{w: stderr}
	}

	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(logWriter, log.Options{Level: level})

	logger.Debug("configuration",
		"target", cfg.Target,
		"dry-run", cfg.DryRun,
		"count", cfg.Count,
		"subtree-errors", cfg.SubtreeErrors,
		"history", cfg.HistoryPath,
		"metrics", cfg.MetricsFile,
	)

	opts := sweep.Options{
		Silent:   cfg.Silent,
		DryRun:   cfg.DryRun,
		Target:   cfg.Target,
		Count:    cfg.CountMode(),
		Subtrees: cfg.ErrorPolicy(),
		Logger:   logger,
	}

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		opts.ProgressHook = func(found, bytes int64) {
			msg := fmt.Sprintf("Sweeping… %d directories, %s",
				found, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	var (
		hdb     *history.DB
		sweepID int64
	)

	if cfg.HistoryPath != "" {
		var err error

		hdb, err = history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer hdb.Close()

		root, err := filepath.Abs(path)
		if err != nil {
			root = path
		}

		sweepID, err = hdb.Begin(root, cfg.DryRun, time.Now())
		if err != nil {
			return err
		}

		opts.OnMatch = func(m sweep.Match) {
			if err := hdb.Record(sweepID, m); err != nil && !cfg.Silent {
				logger.Warn("recording history failed", "path", m.Path, "error", err)
			}
		}
	}

	result, scanErr := sweep.Scan(ctx, path, opts)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	finished := time.Now()

	var errs []error

	if scanErr != nil {
		errs = append(errs, fmt.Errorf("sweeping %q: %w", path, scanErr))
	}

	if hdb != nil {
		finish := func() error { return hdb.Finish(sweepID, result, finished) }

		// A sweep whose root could not be listed leaves no trace in the history.
		if errors.Is(scanErr, sweep.ErrRootUnreadable) {
			finish = func() error { return hdb.Discard(sweepID) }
		}

		if err := finish(); err != nil {
			errs = append(errs, err)
		}
	}

	if cfg.MetricsFile != "" {
		m := metrics.New()
		m.Observe(result, finished)

		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			errs = append(errs, err)
		}
	}

	// A root that cannot be read produced nothing worth summarizing.
	if errors.Is(scanErr, sweep.ErrRootUnreadable) {
		return errors.Join(errs...)
	}

	var printErr error

	switch cfg.Output {
	case "json":
		printErr = PrintJSON(result, stdout)
	default:
		printErr = PrintTable(result, cfg.Target, stdout)
	}

	if printErr != nil {
		errs = append(errs, printErr)
	}

	return errors.Join(errs...)
}

// isStderrTerminal reports whether w is the process stderr attached to a terminal.
func isStderrTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && f == os.Stderr && isatty.IsTerminal(f.Fd())
}
