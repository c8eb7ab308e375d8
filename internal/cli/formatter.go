package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/idelchi/nmsweep/internal/history"
	"github.com/idelchi/nmsweep/internal/sweep"
	"github.com/idelchi/nmsweep/internal/units"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintJSON outputs the sweep result in JSON format.
func PrintJSON(result sweep.Result, writer io.Writer) error {
	return printJSON(result, writer)
}

func printJSON(v any, writer io.Writer) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs the sweep summary in human-readable table format.
func PrintTable(result sweep.Result, target string, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)
	p := localePrinter()

	if result.DryRun {
		fmt.Fprintln(w, "\nDry run complete, nothing was deleted.\t")
		fmt.Fprintf(w, "%s directories found:\t%s\n", target, p.Sprintf("%d", result.TotalRemoved))
		fmt.Fprintf(w, "Space to reclaim:\t%s\n", units.FormatBytes(float64(result.TotalSize)))
	} else {
		fmt.Fprintln(w, "\nSweep complete!\t")
		fmt.Fprintf(w, "%s directories removed:\t%s\n", target, p.Sprintf("%d", result.TotalRemoved))
		fmt.Fprintf(w, "Space reclaimed:\t%s\n", units.FormatBytes(float64(result.TotalSize)))
	}

	if result.Failed > 0 {
		fmt.Fprintf(w, "Failed deletions:\t%s\n", p.Sprintf("%d", result.Failed))
	}

	if result.Skipped > 0 {
		fmt.Fprintf(w, "Unreadable directories:\t%s\n", p.Sprintf("%d", result.Skipped))
	}

	fmt.Fprintf(w, "Elapsed:\t%v\n", result.Elapsed.Round(time.Millisecond))

	return w.Flush()
}

// PrintHistoryJSON outputs the history totals and recent directories in JSON format.
func PrintHistoryJSON(totals history.Totals, removals []history.Removal, writer io.Writer) error {
	if removals == nil {
		removals = []history.Removal{}
	}

	return printJSON(struct {
		Totals   history.Totals    `json:"totals"`
		Removals []history.Removal `json:"removals"`
	}{totals, removals}, writer)
}

// PrintHistoryTable outputs the history totals and recent directories in human-readable table format.
func PrintHistoryTable(totals history.Totals, removals []history.Removal, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)
	p := localePrinter()

	fmt.Fprintf(w, "Sweeps:\t%s\n", p.Sprintf("%d", totals.Sweeps))
	fmt.Fprintf(w, "Directories removed:\t%s\n", p.Sprintf("%d", totals.Removed))
	fmt.Fprintf(w, "Space reclaimed:\t%s\n", units.FormatBytes(float64(totals.BytesFreed)))

	if totals.Failed > 0 {
		fmt.Fprintf(w, "Failed deletions:\t%s\n", p.Sprintf("%d", totals.Failed))
	}

	if !totals.LastSweepAt.IsZero() {
		fmt.Fprintf(w, "Last sweep:\t%s\n", totals.LastSweepAt.Local().Format(time.DateTime))
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if len(removals) == 0 {
		_, err := fmt.Fprintln(writer, "\nNo directories recorded.")

		return err
	}

	w = tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintln(w, "\nWHEN\tACTION\tSIZE\tFILES\tPATH")

	for _, r := range removals {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.CreatedAt.Local().Format(time.DateTime),
			r.Action,
			units.FormatBytes(float64(r.Size)),
			p.Sprintf("%d", r.FileCount),
			r.Path,
		)
	}

	return w.Flush()
}
