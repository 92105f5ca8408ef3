package model

import (
	"fmt"
	"strings"
)

// Mode selects the download execution strategy.
// It is parsed once at the CLI boundary and dispatched once at the top of
// the download executor; both strategies share the same per-item routine.
type Mode int

const (
	// ModeSequential downloads descriptors one at a time, in input order,
	// on a single goroutine.
	ModeSequential Mode = iota

	// ModeThreaded downloads descriptors with a fixed-size worker pool.
	// Completion order is not guaranteed.
	ModeThreaded
)

// String returns the mode name as accepted on the command line.
func (m Mode) String() string {
	switch m {
	case ModeSequential:
		return "sequential"
	case ModeThreaded:
		return "threaded"
	default:
		return "unknown"
	}
}

// ParseMode converts a command-line mode name into a Mode.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sequential":
		return ModeSequential, nil
	case "threaded":
		return ModeThreaded, nil
	default:
		return ModeSequential, fmt.Errorf("unknown mode %q: must be %q or %q", s, ModeSequential, ModeThreaded)
	}
}
