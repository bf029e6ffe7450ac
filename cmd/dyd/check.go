// SPDX-License-Identifier: MIT
package dyd

import (
	"github.com/spf13/cobra"

	"github.com/skaphos/dyd/internal/cliio"
	"github.com/skaphos/dyd/internal/remotemismatch"
	"github.com/skaphos/dyd/internal/termstyle"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report mirrors that no longer match the manifest",
	Long: "Compares each mirror's remote with its manifest origin. Mirrors left behind by an origin change, " +
		"mirrors without a remote, and remotes that share one mirror directory are reported. " +
		"With --reconcile reclone, mismatched mirrors are removed so the next sync clones them again.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := remotemismatch.ParseReconcileMode(getStringFlag(cmd, "reconcile"))
		if err != nil {
			return err
		}
		setColorOutputMode(cmd, "table")

		sess, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer sess.Close()

		repos, err := sess.manifest.Repositories()
		if err != nil {
			return err
		}
		plans, err := remotemismatch.BuildPlans(commandContext(cmd), repos, sess.root, sess.adapters, mode)
		if err != nil {
			return err
		}
		if len(plans) == 0 {
			infof(cmd, "all mirrors match the manifest")
			return nil
		}

		rows := make([][]string, 0, len(plans))
		for _, plan := range plans {
			mirrorURL := plan.MirrorURL
			if mirrorURL == "" {
				mirrorURL = "-"
			}
			rows = append(rows, []string{
				termstyle.Colorize(colorOutputEnabled, plan.Name, termstyle.Heading),
				termstyle.Colorize(colorOutputEnabled, plan.Kind, termstyle.Failed),
				plan.Path,
				plan.ManifestURL,
				mirrorURL,
				plan.Action,
			})
		}
		headers := []string{"REPOSITORY", "PROBLEM", "PATH", "MANIFEST_ORIGIN", "MIRROR_ORIGIN", "ACTION"}
		if err := cliio.WriteTable(cmd.OutOrStdout(), colorOutputEnabled, getBoolFlag(cmd, "no-headers"), headers, rows); err != nil {
			return err
		}

		if err := remotemismatch.ApplyPlans(plans, mode); err != nil {
			return err
		}
		for _, plan := range plans {
			sess.log.Warn("mirror mismatch", "repo", plan.RepoID, "kind", plan.Kind, "path", plan.Path, "mode", string(mode))
		}
		if mode == remotemismatch.ReconcileNone {
			raiseExitCode(exitWarning)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().String("reconcile", "none", "how to reconcile mismatched mirrors: none, reclone")
	addNoHeadersFlag(checkCmd)

	rootCmd.AddCommand(checkCmd)
}
