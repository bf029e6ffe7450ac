// SPDX-License-Identifier: MIT
// Package tableutil builds the aligned tables the CLI prints.
package tableutil

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/liggitt/tabwriter"
)

// New creates a tabwriter with dyd's default spacing settings.
func New(out io.Writer, stripEscape bool) *tabwriter.Writer {
	var flags uint
	if stripEscape {
		flags = tabwriter.StripEscape
	}
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', flags)
}

// PrintHeaders writes a tab-separated header row unless disabled.
func PrintHeaders(w io.Writer, noHeaders bool, headers string) error {
	if noHeaders {
		return nil
	}
	_, err := fmt.Fprintln(w, headers)
	return err
}

// Truncate shortens s to at most width runes, marking the cut with "…".
// A non-positive width disables truncation.
func Truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}
