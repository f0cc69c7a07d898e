// Package util provides shared utility functions for waytrace.
package util

// MaxArgumentDisplay is the default width the CLI allots to an event's
// argument list. Array arguments in real logs can run to kilobytes.
const MaxArgumentDisplay = 96

// Truncate shortens a string to maxSize bytes, appending an ellipsis if it
// was cut. If maxSize <= 0, uses MaxArgumentDisplay.
func Truncate(s string, maxSize int) string {
	if maxSize <= 0 {
		maxSize = MaxArgumentDisplay
	}
	if len(s) > maxSize {
		return s[:maxSize] + "…"
	}
	return s
}
