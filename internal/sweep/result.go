package sweep

import "time"

// SizeResult is the outcome of measuring one directory.
type SizeResult struct {
	// Size is the cumulative size of all regular files in bytes.
	Size int64 `json:"size"`
	// FileCount is the number of regular files.
	FileCount int64 `json:"file_count"`
}

// Match describes one reclaimed (or, in a dry run, reclaimable) directory.
type Match struct {
	// Path is the matched directory.
	Path string `json:"path"`
	// Size is the size measured before the deletion attempt.
	Size int64 `json:"size"`
	// FileCount is the number of files measured before the deletion attempt.
	FileCount int64 `json:"file_count"`
	// Deleted reports whether the directory was removed.
	Deleted bool `json:"deleted"`
	// DryRun reports whether deletion was skipped because of a dry run.
	DryRun bool `json:"dry_run"`
	// Err is the deletion failure, if any.
	Err error `json:"-"`
	// Error is the text of Err.
	Error string `json:"error,omitempty"`
}

// Result holds the aggregate outcome of a Scan.
type Result struct {
	// TotalRemoved is the number of matched directories, counted per Options.Count.
	TotalRemoved int64 `json:"total_removed"`
	// TotalSize is the sum of all measured sizes in bytes.
	TotalSize int64 `json:"total_size"`
	// Failed is the number of deletions that failed with a recoverable error.
	Failed int64 `json:"failed"`
	// Skipped is the number of unreadable directories skipped.
	Skipped int64 `json:"skipped"`
	// Matches lists every matched directory in walk order.
	Matches []Match `json:"matches"`
	// DryRun reports whether the scan ran without deleting.
	DryRun bool `json:"dry_run"`
	// Elapsed is the total time taken by the scan.
	Elapsed time.Duration `json:"elapsed"`
}
