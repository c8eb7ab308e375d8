// Package units formats byte counts for display.
package units

import (
	"math"
	"strconv"
)

// Step is the factor between two consecutive units.
const Step = 1024

// Suffixes lists the units in increasing order of magnitude.
//
//nolint:gochecknoglobals // Lookup table
var Suffixes = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders n with two fractional digits and the largest unit for which
// the remaining value stays at or above one, capped at TB.
// Negative values are rendered in bytes with their sign.
func FormatBytes(n float64) string {
	size := n
	unit := 0

	for size >= Step && unit < len(Suffixes)-1 {
		size /= Step
		unit++
	}

	return strconv.FormatFloat(size, 'f', 2, 64) + " " + Suffixes[unit]
}

// Format is FormatBytes for values of unknown type.
// nil and non-numeric values are treated as zero.
//
//nolint:cyclop // One case per numeric kind
func Format(v any) string {
	var n float64

	switch t := v.(type) {
	case int:
		n = float64(t)
	case int8:
		n = float64(t)
	case int16:
		n = float64(t)
	case int32:
		n = float64(t)
	case int64:
		n = float64(t)
	case uint:
		n = float64(t)
	case uint8:
		n = float64(t)
	case uint16:
		n = float64(t)
	case uint32:
		n = float64(t)
	case uint64:
		n = float64(t)
	case float32:
		n = float64(t)
	case float64:
		n = t
	}

	if math.IsNaN(n) {
		n = 0
	}

	return FormatBytes(n)
}
