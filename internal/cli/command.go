// Package cli implements the nmsweep command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/nmsweep/internal/config"
	"github.com/idelchi/nmsweep/internal/exitcodes"
	"github.com/idelchi/nmsweep/internal/sweep"
)

// ErrInvalidConfig marks errors caused by the configuration file, flags or arguments.
var ErrInvalidConfig = errors.New("invalid configuration")

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// options holds the parsed command line.
type options struct {
	Path         string
	ConfigPath   string
	Target       string
	DryRun       bool
	Silent       bool
	CountDeleted bool
	FailFast     bool
	Output       string
	HistoryPath  string
	MetricsFile  string
	Debug        bool
	Init         bool
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Run(os.Args[1:], os.Stdout, os.Stderr)
}

// Run runs the CLI with the provided arguments and output streams.
func (c CLI) Run(args []string, stdout, stderr io.Writer) error {
	var opts options

	cmd := &cobra.Command{
		Use:   "nmsweep [flags] [path]",
		Short: "Find and delete node_modules directories",
		Long: heredoc.Doc(`
			nmsweep finds node_modules directories below a path, deletes them and
			reports how much space was reclaimed.

			Hidden directories (starting with '.') are never searched, and a matched
			directory is never searched for nested matches. Symbolic links are not
			followed.

			Positional Arguments:
			  path    Directory to sweep. Defaults to the current directory.
		`),
		Example: heredoc.Doc(`
			# Show what would be deleted below ~/projects
			nmsweep --dry-run ~/projects

			# Delete quietly and keep a history
			nmsweep -s --history ~/.local/share/nmsweep/history.db ~/projects

			# Show what the history recorded
			nmsweep history --history ~/.local/share/nmsweep/history.db
		`),
		Args:          invalidArgs(cobra.MaximumNArgs(1)),
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Init {
				rendered, err := config.Render()
				if err != nil {
					return fmt.Errorf("rendering default config: %w", err)
				}

				fmt.Fprint(cmd.OutOrStdout(), rendered)

				return nil
			}

			opts.Path = "."
			if len(args) > 0 {
				opts.Path = args[0]
			}

			cfg, err := resolve(cmd, opts)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
			}

			return logic(cmd.Context(), opts.Path, cfg, opts.Debug, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	// A directory named "completion" stays sweepable.
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.SetVersionTemplate("{{ .Version }}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	})
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&opts.DryRun, "dry-run", "n", false, "Find and measure without deleting")
	flags.BoolVarP(&opts.Silent, "silent", "s", false, "Do not print matched directories or warnings")
	flags.StringVarP(&opts.Target, "target", "t", sweep.DefaultTarget, "Directory name to delete")
	flags.BoolVar(&opts.CountDeleted, "count-deleted", false, "Count only directories that were actually deleted")
	flags.BoolVar(&opts.FailFast, "fail-fast", false, "Abort on directories that cannot be read")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	flags.BoolVar(&opts.Debug, "debug", false, "Enable debug output")
	flags.BoolVar(&opts.Init, "init", false, "Print the default configuration file and exit")

	persistent := cmd.PersistentFlags()
	persistent.SortFlags = false
	persistent.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML configuration file")
	persistent.StringVarP(&opts.Output, "output", "o", "table", "Output format: table or json")
	persistent.StringVar(&opts.HistoryPath, "history", "", "SQLite database recording every matched directory")

	cmd.AddCommand(newHistoryCommand(&opts))

	// Interrupting stops the walk; deletions already done are kept.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return cmd.ExecuteContext(ctx)
}

// invalidArgs marks argument validation failures as configuration errors.
func invalidArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}

		return nil
	}
}

// resolve loads the configuration file, if any, and applies explicitly set flags on top.
func resolve(cmd *cobra.Command, opts options) (*config.Config, error) {
	cfg := config.Default()

	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	flags := cmd.Flags()

	if flags.Changed("dry-run") {
		cfg.DryRun = opts.DryRun
	}

	if flags.Changed("silent") {
		cfg.Silent = opts.Silent
	}

	if flags.Changed("target") {
		cfg.Target = opts.Target
	}

	if flags.Changed("count-deleted") {
		cfg.Count = config.CountModes[0]
		if opts.CountDeleted {
			cfg.Count = "deleted"
		}
	}

	if flags.Changed("fail-fast") {
		cfg.SubtreeErrors = config.SubtreeErrors[0]
		if opts.FailFast {
			cfg.SubtreeErrors = "fail"
		}
	}

	if flags.Changed("output") {
		cfg.Output = opts.Output
	}

	if flags.Changed("history") {
		cfg.HistoryPath = opts.HistoryPath
	}

	if flags.Changed("metrics-file") {
		cfg.MetricsFile = opts.MetricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitcodes.Success
	case errors.Is(err, ErrInvalidConfig):
		return exitcodes.InvalidConfig
	default:
		return exitcodes.RuntimeError
	}
}
