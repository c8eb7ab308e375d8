package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/nmsweep/internal/history"
)

// DefaultHistoryLimit is the number of recorded directories shown by default.
const DefaultHistoryLimit = 20

// ErrNoHistory is returned when the history command has no database to read.
var ErrNoHistory = errors.New("no history database configured")

func newHistoryCommand(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show totals and recent directories from the sweep history",
		Long: heredoc.Doc(`
			Show what previous sweeps recorded in the history database: totals over
			all finished sweeps that deleted, followed by the most recently matched
			directories.

			The database is taken from --history or from history_path in the
			configuration file.
		`),
		Example: heredoc.Doc(`
			# Show the last 5 recorded directories
			nmsweep history --history ~/.local/share/nmsweep/history.db -l 5
		`),
		Args: invalidArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolve(cmd, *opts)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
			}

			if cfg.HistoryPath == "" {
				return fmt.Errorf("%w: %w: use --history or history_path", ErrInvalidConfig, ErrNoHistory)
			}

			if limit < 1 {
				return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfig, limit)
			}

			return showHistory(cfg.HistoryPath, limit, cfg.Output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultHistoryLimit, "Number of recent directories to show")

	return cmd
}

// showHistory prints the totals and the limit most recent directories of the database at path.
func showHistory(path string, limit int, output string, w io.Writer) error {
	// Reading must not create an empty database as a side effect.
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %q does not exist", ErrNoHistory, path)
		}

		return fmt.Errorf("reading history %q: %w", path, err)
	}

	hdb, err := history.Open(path)
	if err != nil {
		return err
	}
	defer hdb.Close()

	totals, err := hdb.Totals()
	if err != nil {
		return err
	}

	removals, err := hdb.Recent(limit)
	if err != nil {
		return err
	}

	if output == "json" {
		return PrintHistoryJSON(totals, removals, w)
	}

	return PrintHistoryTable(totals, removals, w)
}
