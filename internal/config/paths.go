// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// ManifestEnv overrides manifest discovery.
	ManifestEnv = "DYD_MANIFEST_PATH"
	// DataDirEnv overrides the data directory.
	DataDirEnv = "DYD_DATA_DIR"
)

// ErrManifestNotFound is returned when no manifest could be located.
var ErrManifestNotFound = errors.New("no dyd manifest found (run `dyd init`)")

// ResolveManifestPath resolves the manifest for runtime commands.
// Order: explicit override, DYD_MANIFEST_PATH, nearest manifest in
// cwd/parents.
func ResolveManifestPath(override, cwd string) (string, error) {
	if override != "" {
		return override, nil
	}
	if env := os.Getenv(ManifestEnv); env != "" {
		return env, nil
	}
	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	path, err := FindNearestManifestPath(cwd)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", ErrManifestNotFound
	}
	return path, nil
}

// InitManifestPath resolves where `dyd init` should write a manifest.
// Order: explicit override, DYD_MANIFEST_PATH, then dyd.yaml in cwd.
func InitManifestPath(override, cwd string) (string, error) {
	if override != "" {
		return override, nil
	}
	if env := os.Getenv(ManifestEnv); env != "" {
		return env, nil
	}
	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(cwd, ManifestFilenames[0]), nil
}

// FindNearestManifestPath searches cwd and each parent directory for a
// manifest. It returns an empty string when none is found.
func FindNearestManifestPath(cwd string) (string, error) {
	dir := cwd
	for {
		for _, name := range ManifestFilenames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			} else if !os.IsNotExist(err) {
				return "", err
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// DataDir returns the directory for mirrors and logs.
// Order: DYD_DATA_DIR, $XDG_DATA_HOME/dyd, ~/.local/share/dyd.
func DataDir() (string, error) {
	if env := os.Getenv(DataDirEnv); env != "" {
		return filepath.Clean(env), nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "dyd"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "dyd"), nil
}

// ResolveRoot returns the effective mirror root. An empty root selects
// dataDir; "~/" expands to the home directory; other relative roots
// resolve against the manifest's directory.
func ResolveRoot(manifestPath, root, dataDir string) string {
	root = strings.TrimSpace(root)
	switch {
	case root == "":
		return filepath.Clean(dataDir)
	case root == "~" || strings.HasPrefix(root, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(root, "~"))
		}
	}
	if filepath.IsAbs(root) || strings.TrimSpace(manifestPath) == "" {
		return filepath.Clean(root)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(manifestPath), root))
}

// LoadDotEnv loads dir/.env into the process environment without
// overriding variables that are already set. A missing file is not an
// error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}
