// SPDX-License-Identifier: MIT
package dyd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skaphos/dyd/internal/config"
	"github.com/skaphos/dyd/internal/logging"
	"github.com/skaphos/dyd/internal/vcs"
)

const logFileName = "dyd.log"

// session is the per-invocation state shared by commands that work on a
// loaded manifest.
type session struct {
	manifestPath string
	manifest     *config.Manifest
	dataDir      string
	root         string
	adapters     *vcs.Set
	log          logging.Logger
	closeLog     func() error
}

func (s *session) Close() {
	if s == nil || s.closeLog == nil {
		return
	}
	_ = s.closeLog()
}

// openSession loads .env, resolves and loads the manifest, then opens the
// log and the VCS backends it selects.
func openSession(cmd *cobra.Command) (*session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(cwd); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	manifestPath, err := config.ResolveManifestPath(flagManifest, cwd)
	if err != nil {
		return nil, err
	}
	manifest, err := config.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	selection := strings.TrimSpace(flagVCS)
	if selection == "" {
		selection = manifest.VCS
	}
	adapters, err := vcs.NewSet(selection)
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logging.Open(logOptions(cmd, dataDir))
	if err != nil {
		return nil, err
	}

	s := &session{
		manifestPath: manifestPath,
		manifest:     manifest,
		dataDir:      dataDir,
		root:         config.ResolveRoot(manifestPath, manifest.Root, dataDir),
		adapters:     adapters,
		log:          log.With("manifest", manifestPath),
		closeLog:     closeLog,
	}
	debugf(cmd, "manifest: %s", manifestPath)
	debugf(cmd, "mirror root: %s", s.root)
	return s, nil
}

func logOptions(cmd *cobra.Command, dataDir string) logging.Options {
	return logging.Options{
		Path:   logPath(dataDir),
		Format: flagLogFormat,
		Debug:  flagVerbose > 0,
		Stderr: cmd.ErrOrStderr(),
	}
}

func logPath(dataDir string) string {
	if flagLogFile != "" {
		return flagLogFile
	}
	return filepath.Join(dataDir, logFileName)
}
