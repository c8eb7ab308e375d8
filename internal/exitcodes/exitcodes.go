// Package exitcodes defines the process exit codes of nmsweep.
package exitcodes

// These codes form the contract with scripts and CI jobs wrapping nmsweep.
const (
	Success       = 0 // Sweep completed, possibly with recoverable failures
	InvalidConfig = 2 // Configuration file or flags invalid
	RuntimeError  = 4 // Sweep aborted: root unreadable or fatal delete failure
)
