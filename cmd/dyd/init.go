// SPDX-License-Identifier: MIT
package dyd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skaphos/dyd/internal/cliio"
	"github.com/skaphos/dyd/internal/config"
	"github.com/skaphos/dyd/internal/discovery"
	"github.com/skaphos/dyd/internal/gitx"
	"github.com/skaphos/dyd/internal/vcs"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap a dyd manifest",
	Long: "Creates a dyd manifest in the current directory by default. With --scan, existing clones " +
		"under the given directories seed the manifest's remotes.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		scanRoots, _ := cmd.Flags().GetStringSlice("scan")

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		manifestPath, err := config.InitManifestPath(flagManifest, cwd)
		if err != nil {
			return err
		}
		if _, err := os.Stat(manifestPath); err == nil {
			if !force {
				return fmt.Errorf("manifest already exists at %q (use --force to overwrite)", manifestPath)
			}
			if err := os.Remove(manifestPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove existing manifest %q: %w", manifestPath, err)
			}
		}

		manifest := config.DefaultManifest()
		if len(scanRoots) > 0 {
			results, err := scanForRemotes(cmd, scanRoots, manifest.Exclude)
			if err != nil {
				return err
			}
			manifest.Remotes = remotesFromScan(results)
			if err := writeScanTable(cmd, results); err != nil {
				return err
			}
		}

		if err := config.Save(&manifest, manifestPath); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote manifest to %s\n", manifestPath); err != nil {
			return err
		}
		if len(manifest.Remotes) == 0 {
			infof(cmd, "add remotes to %s, then run `dyd`", manifestPath)
		}
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite existing manifest without prompting")
	initCmd.Flags().StringSlice("scan", nil, "directories to scan for existing clones")
	addNoHeadersFlag(initCmd)

	rootCmd.AddCommand(initCmd)
}

func scanForRemotes(cmd *cobra.Command, roots, exclude []string) ([]discovery.Result, error) {
	selection := flagVCS
	if selection == "" {
		selection = "git,hg"
	}
	adapters, err := vcs.NewSet(selection)
	if err != nil {
		return nil, err
	}
	abs := make([]string, 0, len(roots))
	for _, root := range roots {
		path, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		abs = append(abs, path)
	}
	debugf(cmd, "scanning %v", abs)
	return discovery.Scan(commandContext(cmd), discovery.Options{
		Roots:    abs,
		Exclude:  exclude,
		Adapters: adapters,
	})
}

// remotesFromScan keeps one remote per origin, in scan order. Clones
// without a remote cannot be mirrored and are skipped.
func remotesFromScan(results []discovery.Result) []config.Remote {
	seen := map[string]struct{}{}
	var remotes []config.Remote
	for _, result := range results {
		if result.RemoteURL == "" {
			continue
		}
		id := gitx.RepoID(result.RemoteURL, "")
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		remote := config.Remote{
			Name:   filepath.Base(result.Path),
			Origin: result.RemoteURL,
		}
		if result.VCS != "" && result.VCS != "git" {
			remote.VCS = result.VCS
		}
		remotes = append(remotes, remote)
	}
	return remotes
}

func writeScanTable(cmd *cobra.Command, results []discovery.Result) error {
	noHeaders := getBoolFlag(cmd, "no-headers")
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		origin := result.RemoteURL
		if origin == "" {
			origin = "-"
		}
		rows = append(rows, []string{result.Path, result.VCS, origin})
	}
	return cliio.WriteTable(cmd.OutOrStdout(), false, noHeaders, []string{"PATH", "VCS", "ORIGIN"}, rows)
}
