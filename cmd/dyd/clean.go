// SPDX-License-Identifier: MIT
package dyd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skaphos/dyd/internal/cliio"
	"github.com/skaphos/dyd/internal/gitx"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the local mirrors of the manifest's repositories",
	Long:  "Deletes every mirror under the manifest's root. The next run clones them again.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		assumeYes, _ := cmd.Flags().GetBool("yes")

		sess, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer sess.Close()

		repos, err := sess.manifest.Repositories()
		if err != nil {
			return err
		}
		repos, err = selectRepositories(repos, getStringFlag(cmd, "only"))
		if err != nil {
			return err
		}

		var targets []string
		seen := map[string]struct{}{}
		for _, repo := range repos {
			name := gitx.LocalDirName(repo.Origin)
			if name == "" {
				continue
			}
			path := filepath.Join(sess.root, name)
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			if _, err := os.Stat(path); err == nil {
				targets = append(targets, path)
			}
		}
		if len(targets) == 0 {
			infof(cmd, "nothing to clean under %s", sess.root)
			return nil
		}

		for _, path := range targets {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		ok, err := cliio.Confirm(cmd.OutOrStdout(), cmd.InOrStdin(), fmt.Sprintf("Remove %d mirrors?", len(targets)), assumeYes)
		if err != nil {
			return err
		}
		if !ok {
			infof(cmd, "aborted")
			return nil
		}

		for _, path := range targets {
			if err := os.RemoveAll(path); err != nil {
				sess.log.Error("remove mirror failed", "path", path, "err", err)
				infof(cmd, "remove %s: %v", path, err)
				raiseExitCode(exitError)
				continue
			}
			sess.log.Info("mirror removed", "path", path)
			debugf(cmd, "removed %s", path)
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolP("yes", "y", false, "do not prompt for confirmation")
	cleanCmd.Flags().String("only", "", onlyUsage)

	rootCmd.AddCommand(cleanCmd)
}
