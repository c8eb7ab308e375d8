package sweep

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/idelchi/nmsweep/internal/fsops"
)

const (
	// DefaultTarget is the directory name reclaimed when none is configured.
	DefaultTarget = "node_modules"
	// HiddenPrefix marks directories that are never searched.
	HiddenPrefix = "."
	// DefaultProgressInterval is the default interval for progress updates.
	DefaultProgressInterval = 250 * time.Millisecond
)

// CountMode decides which matches count toward Result.TotalRemoved.
type CountMode int

const (
	// CountFound counts every match, whether or not its deletion succeeded.
	CountFound CountMode = iota
	// CountDeleted counts only matches that were deleted, or found during a dry run.
	CountDeleted
)

// String returns the configuration name of the mode.
func (m CountMode) String() string {
	if m == CountDeleted {
		return "deleted"
	}

	return "found"
}

// ErrorPolicy decides what happens when a directory below the root cannot be listed.
type ErrorPolicy int

const (
	// SkipUnreadable logs the failure and continues with the next sibling.
	SkipUnreadable ErrorPolicy = iota
	// FailFast aborts the scan.
	FailFast
)

// String returns the configuration name of the policy.
func (p ErrorPolicy) String() string {
	if p == FailFast {
		return "fail"
	}

	return "skip"
}

// Options configures a Scan. It is read-only for the duration of the walk.
type Options struct {
	// Silent suppresses all log output of the walk.
	Silent bool
	// DryRun matches and measures without deleting.
	DryRun bool
	// Target is the directory name to reclaim. Defaults to DefaultTarget.
	Target string
	// Count selects the semantics of Result.TotalRemoved.
	Count CountMode
	// Subtrees selects the policy for unreadable directories below the root.
	Subtrees ErrorPolicy
	// Deleter performs the deletions. Defaults to fsops.OSDeleter.
	Deleter fsops.Deleter
	// Logger receives progress lines and warnings. Nil disables logging.
	Logger *log.Logger
	// OnMatch is called once per matched directory, after its deletion attempt.
	OnMatch func(Match)
	// ProgressHook is called periodically with the running match count and byte total.
	ProgressHook func(found, bytes int64)
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Target == "" {
		o.Target = DefaultTarget
	}

	if o.Deleter == nil {
		o.Deleter = fsops.OSDeleter{}
	}

	if o.Silent {
		o.Logger = nil
	}

	return o
}
