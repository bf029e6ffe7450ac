// SPDX-License-Identifier: MIT
package dyd

import (
	"time"

	"github.com/spf13/cobra"
)

const (
	formatUsage    = "output format: table, json"
	noHeadersUsage = "when using table format, do not print headers"
	onlyUsage      = "comma-separated globs matched against repository names and ids"
	sinceUsage     = "review threshold, e.g. \"3 days ago\" (default: manifest since)"
)

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "o", "table", formatUsage)
}

func addNoHeadersFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("no-headers", false, noHeadersUsage)
}

func addDiffFlags(cmd *cobra.Command) {
	addFormatFlag(cmd)
	addNoHeadersFlag(cmd)
	cmd.Flags().String("since", "", sinceUsage)
	cmd.Flags().String("only", "", onlyUsage)
	cmd.Flags().Bool("all", false, "include commits at or before the review threshold")
	cmd.Flags().BoolP("watch", "w", false, "keep refreshing until interrupted")
	cmd.Flags().Duration("interval", 5*time.Minute, "time between refresh cycles with --watch")
	cmd.Flags().Int("concurrency", 0, "repositories synced at once (default: manifest concurrency)")
}

func getStringFlag(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return value
}

func getBoolFlag(cmd *cobra.Command, name string) bool {
	value, _ := cmd.Flags().GetBool(name)
	return value
}
