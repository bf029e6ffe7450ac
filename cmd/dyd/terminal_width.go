// SPDX-License-Identifier: MIT
package dyd

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	narrowTableWidth = 100
	tinyTableWidth   = 80
)

var getTerminalSize = term.GetSize

func tableWidth(cmd *cobra.Command) (int, bool) {
	if cmd == nil {
		return 0, false
	}
	file, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(file.Fd())
	if !isTerminalFD(fd) {
		return 0, false
	}
	width, _, err := getTerminalSize(fd)
	if err != nil || width <= 0 {
		return 0, false
	}
	return width, true
}

// messageLimit returns the commit message column budget, or 0 for no limit
// when output is not a terminal.
func messageLimit(cmd *cobra.Command) int {
	width, ok := tableWidth(cmd)
	if !ok {
		return 0
	}
	return messageLimitForWidth(width)
}

func messageLimitForWidth(width int) int {
	// Glyph, sha, age and author columns take roughly half of a narrow line.
	switch {
	case width < tinyTableWidth:
		return max(width-40, 16)
	case width < narrowTableWidth:
		return width - 48
	default:
		return width - 56
	}
}
