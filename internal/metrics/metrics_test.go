package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/idelchi/nmsweep/internal/metrics"
	"github.com/idelchi/nmsweep/internal/sweep"
)

func TestObserve(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	finished := time.Unix(1_700_000_000, 0)

	m.Observe(sweep.Result{
		TotalRemoved: 3,
		TotalSize:    4096,
		Failed:       1,
		Skipped:      2,
		Elapsed:      1500 * time.Millisecond,
	}, finished)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"removed", testutil.ToFloat64(m.DirectoriesRemoved), 3},
		{"bytes", testutil.ToFloat64(m.BytesReclaimed), 4096},
		{"failures", testutil.ToFloat64(m.DeleteFailures), 1},
		{"skipped", testutil.ToFloat64(m.SubtreesSkipped), 2},
		{"duration", testutil.ToFloat64(m.ScanDuration), 1.5},
		{"timestamp", testutil.ToFloat64(m.LastRunTimestamp), 1_700_000_000},
		{"dry run", testutil.ToFloat64(m.DryRun), 0},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	path := filepath.Join(t.TempDir(), "nmsweep.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if n := strings.Count(string(content), "# TYPE nmsweep_"); n != len(tests) {
		t.Errorf("textfile holds %d metrics, want %d:\n%s", n, len(tests), content)
	}
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.Observe(sweep.Result{TotalRemoved: 2, TotalSize: 10, DryRun: true}, time.Now())

	path := filepath.Join(t.TempDir(), "nmsweep.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"nmsweep_directories_removed_total 2",
		"nmsweep_bytes_reclaimed_total 10",
		"nmsweep_dry_run 1",
		"# HELP nmsweep_scan_duration_seconds",
	} {
		if !strings.Contains(string(content), want) {
			t.Errorf("textfile does not contain %q:\n%s", want, content)
		}
	}
}

func TestWriteTextfileBadPath(t *testing.T) {
	t.Parallel()

	m := metrics.New()

	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "nmsweep.prom")); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}
