// SPDX-License-Identifier: MIT
package dyd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skaphos/dyd/internal/difftool"
	"github.com/skaphos/dyd/internal/gitx"
)

var openCmd = &cobra.Command{
	Use:   "open REPOSITORY SHA",
	Short: "Open the difftool for a commit",
	Long: "Runs the manifest's difftool from the repository's mirror, comparing SHA with the tracked branch. " +
		"REPOSITORY is a name or id from the manifest. The difftool may be \"git\", \"github\", or a " +
		"command template using ${DIFF}, ${ORIGIN}, ${REF_FROM}, ${REF_TO} and ${DYD_PWD}.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer sess.Close()

		repos, err := sess.manifest.Repositories()
		if err != nil {
			return err
		}
		repo, err := findRepository(repos, args[0])
		if err != nil {
			return err
		}

		name := gitx.LocalDirName(repo.Origin)
		if name == "" {
			return fmt.Errorf("%s: cannot determine local path for origin %q", repo.Name, repo.Origin)
		}
		dir := filepath.Join(sess.root, name)
		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("%s: no mirror at %s (run `dyd` first)", repo.Name, dir)
		}

		tool := sess.manifest.Difftool
		if v := getStringFlag(cmd, "difftool"); v != "" {
			tool = v
		}
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		proc, err := difftool.Command(commandContext(cmd), tool, repo, args[1], dir, cwd)
		if err != nil {
			return err
		}
		proc.Stdin = cmd.InOrStdin()
		proc.Stdout = cmd.OutOrStdout()
		proc.Stderr = cmd.ErrOrStderr()
		debugf(cmd, "running %v in %s", proc.Args, dir)
		sess.log.Info("difftool", "repo", repo.ID, "sha", args[1], "command", proc.Args)
		if err := proc.Run(); err != nil {
			return fmt.Errorf("difftool: %w", err)
		}
		return nil
	},
}

func init() {
	openCmd.Flags().String("difftool", "", "override the manifest difftool")

	rootCmd.AddCommand(openCmd)
}
