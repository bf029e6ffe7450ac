// SPDX-License-Identifier: MIT
// Package termstyle holds the ANSI styling used by the repository view.
package termstyle

import (
	"github.com/liggitt/tabwriter"

	"github.com/skaphos/dyd/internal/model"
)

const (
	Reset  = "\x1b[0m"
	Bold   = "\x1b[1m"
	Faint  = "\x1b[2m"
	Green  = "\x1b[32m"
	Yellow = "\x1b[33m"
	Red    = "\x1b[31m"
	Blue   = "\x1b[34m"
	Cyan   = "\x1b[36m"

	// Semantic aliases used by the repository view.
	Finished = Green
	Busy     = Yellow
	Failed   = Red
	Stale    = Faint
	SHA      = Cyan
	Heading  = Bold
)

// Colorize wraps a value in ANSI escapes when color output is enabled.
func Colorize(enabled bool, value, color string) string {
	if !enabled || value == "" || color == "" {
		return value
	}
	// Hide ANSI sequences from tabwriter width calculations so columns align.
	esc := string([]byte{tabwriter.Escape})
	return esc + color + esc + value + esc + Reset + esc
}

// ForStatus returns the color for a status glyph.
func ForStatus(s model.Status) string {
	switch s {
	case model.StatusFinished:
		return Finished
	case model.StatusFailed:
		return Failed
	case model.StatusCloning, model.StatusPulling, model.StatusFetchingLog:
		return Busy
	default:
		return ""
	}
}

// Status renders a status glyph, colored when enabled.
func Status(enabled bool, s model.Status) string {
	return Colorize(enabled, s.Symbol(), ForStatus(s))
}
