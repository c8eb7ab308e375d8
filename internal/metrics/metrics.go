// Package metrics exposes the outcome of a sweep as Prometheus metrics
// written to a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/idelchi/nmsweep/internal/sweep"
)

const namespace = "nmsweep"

// Sweep holds the metrics of a single sweep in its own registry.
type Sweep struct {
	registry *prometheus.Registry

	DirectoriesRemoved prometheus.Counter
	BytesReclaimed     prometheus.Counter
	DeleteFailures     prometheus.Counter
	SubtreesSkipped    prometheus.Counter
	ScanDuration       prometheus.Gauge
	LastRunTimestamp   prometheus.Gauge
	DryRun             prometheus.Gauge
}

// New creates and registers the sweep metrics.
func New() *Sweep {
	s := &Sweep{
		registry: prometheus.NewRegistry(),
		DirectoriesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directories_removed_total",
			Help:      "Number of matched directories counted as removed.",
		}),
		BytesReclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_reclaimed_total",
			Help:      "Bytes measured in matched directories before deletion.",
		}),
		DeleteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delete_failures_total",
			Help:      "Number of matched directories that failed to delete.",
		}),
		SubtreesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subtrees_skipped_total",
			Help:      "Number of unreadable directories skipped.",
		}),
		ScanDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Duration of the last sweep in seconds.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last sweep finished.",
		}),
		DryRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dry_run",
			Help:      "1 if the last sweep was a dry run.",
		}),
	}

	s.registry.MustRegister(
		s.DirectoriesRemoved,
		s.BytesReclaimed,
		s.DeleteFailures,
		s.SubtreesSkipped,
		s.ScanDuration,
		s.LastRunTimestamp,
		s.DryRun,
	)

	return s
}

// Observe records the final result of the sweep.
func (s *Sweep) Observe(result sweep.Result, finishedAt time.Time) {
	s.DirectoriesRemoved.Add(float64(result.TotalRemoved))
	s.BytesReclaimed.Add(float64(result.TotalSize))
	s.DeleteFailures.Add(float64(result.Failed))
	s.SubtreesSkipped.Add(float64(result.Skipped))
	s.ScanDuration.Set(result.Elapsed.Seconds())
	s.LastRunTimestamp.Set(float64(finishedAt.Unix()))

	if result.DryRun {
		s.DryRun.Set(1)
	} else {
		s.DryRun.Set(0)
	}
}

// WriteTextfile atomically writes the metrics in text exposition format to path.
func (s *Sweep) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
		return fmt.Errorf("writing metrics to %q: %w", path, err)
	}

	return nil
}
