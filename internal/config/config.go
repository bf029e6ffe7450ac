// SPDX-License-Identifier: MIT
// Package config handles loading, saving, and resolving the dyd manifest:
// the list of watched remotes plus review and sync settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"

	"github.com/skaphos/dyd/internal/gitx"
	"github.com/skaphos/dyd/internal/model"
	"github.com/skaphos/dyd/internal/timeparse"
)

const (
	// ManifestAPIVersion is the current manifest schema apiVersion.
	ManifestAPIVersion = "skaphos.io/dyd/v1beta1"
	// ManifestKind is the current manifest schema kind.
	ManifestKind = "DailyDiffManifest"

	DefaultSince          = "1 week ago"
	DefaultDifftool       = "git"
	DefaultConcurrency    = 8
	DefaultTimeoutSeconds = 600
)

// ManifestFilenames are searched, in order, in cwd and its parents.
var ManifestFilenames = []string{"dyd.yaml", "dyd.yml", "dyd.toml"}

// ErrNoRemotes is returned when a manifest watches nothing.
var ErrNoRemotes = errors.New("manifest has no remotes")

// ErrMirrorCollision is returned when remotes with different origins map to
// the same mirror directory.
var ErrMirrorCollision = errors.New("remotes share a mirror directory")

// Remote is one watched repository.
type Remote struct {
	Name   string `yaml:"name,omitempty" toml:"name,omitempty"`
	Origin string `yaml:"origin" toml:"origin"`
	Branch string `yaml:"branch,omitempty" toml:"branch,omitempty"`
	VCS    string `yaml:"vcs,omitempty" toml:"vcs,omitempty"`
}

// Manifest is the dyd configuration file.
type Manifest struct {
	APIVersion string `yaml:"apiVersion" toml:"apiVersion"`
	Kind       string `yaml:"kind" toml:"kind"`
	// Since is the review threshold, e.g. "3 days ago".
	Since string `yaml:"since" toml:"since"`
	// Root holds the mirrors. Relative paths resolve against the manifest.
	Root     string `yaml:"root,omitempty" toml:"root,omitempty"`
	Difftool string `yaml:"difftool" toml:"difftool"`
	// Concurrency is the number of mirrors synced at once.
	Concurrency int `yaml:"concurrency" toml:"concurrency"`
	// TimeoutSeconds bounds each clone, update and log step; 0 disables.
	TimeoutSeconds int      `yaml:"timeout_seconds" toml:"timeout_seconds"`
	VCS            string   `yaml:"vcs,omitempty" toml:"vcs,omitempty"`
	Exclude        []string `yaml:"exclude,omitempty" toml:"exclude,omitempty"`
	Remotes        []Remote `yaml:"remotes" toml:"remotes"`
}

// DefaultManifest returns a Manifest with sensible defaults applied.
func DefaultManifest() Manifest {
	return Manifest{
		APIVersion:     ManifestAPIVersion,
		Kind:           ManifestKind,
		Since:          DefaultSince,
		Difftool:       DefaultDifftool,
		Concurrency:    DefaultConcurrency,
		TimeoutSeconds: DefaultTimeoutSeconds,
		Exclude:        []string{"**/node_modules/**", "**/vendor/**"},
	}
}

// Load reads and validates the manifest at path. The format follows the
// file extension: .toml is TOML, anything else YAML.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data, isTOML(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes manifest bytes over the defaults and validates them.
func Parse(data []byte, asTOML bool) (*Manifest, error) {
	m := DefaultManifest()
	if asTOML {
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	applyManifestGVK(&m)
	if err := validateManifestGVK(&m); err != nil {
		return nil, err
	}
	if strings.TrimSpace(m.Since) == "" {
		m.Since = DefaultSince
	}
	if strings.TrimSpace(m.Difftool) == "" {
		m.Difftool = DefaultDifftool
	}
	if m.Concurrency == 0 {
		m.Concurrency = DefaultConcurrency
	}
	if m.Concurrency < 0 {
		return nil, fmt.Errorf("concurrency must be positive, got %d", m.Concurrency)
	}
	if m.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("timeout_seconds must not be negative, got %d", m.TimeoutSeconds)
	}
	if _, err := timeparse.ParseRelative(m.Since, time.Now()); err != nil {
		return nil, fmt.Errorf("since: %w", err)
	}
	if _, err := m.Repositories(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Save writes the manifest to path in the format its extension selects.
func Save(m *Manifest, path string) error {
	if m == nil {
		return errors.New("manifest is nil")
	}
	applyManifestGVK(m)
	if err := validateManifestGVK(m); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(m)
	} else {
		data, err = yaml.Marshal(m)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SinceTime resolves the review threshold relative to now.
func (m *Manifest) SinceTime(now time.Time) (time.Time, error) {
	return timeparse.ParseRelative(m.Since, now)
}

// StepTimeout returns the per-step timeout; zero disables it.
func (m *Manifest) StepTimeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// Repositories builds the repository list in manifest order. Remotes
// without an origin or sharing an id are rejected.
func (m *Manifest) Repositories() ([]model.Repository, error) {
	repos := make([]model.Repository, 0, len(m.Remotes))
	seen := make(map[string]int, len(m.Remotes))
	for i, remote := range m.Remotes {
		origin := strings.TrimSpace(remote.Origin)
		if origin == "" {
			return nil, fmt.Errorf("remotes[%d]: origin is required", i)
		}
		id := gitx.RepoID(origin, remote.Branch)
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("remotes[%d]: duplicate of remotes[%d] (%s)", i, prev, id)
		}
		seen[id] = i
		name := strings.TrimSpace(remote.Name)
		if name == "" {
			name = DefaultRemoteName(origin)
		}
		vcsName := strings.TrimSpace(remote.VCS)
		if vcsName == "" {
			vcsName = strings.TrimSpace(m.VCS)
		}
		repos = append(repos, model.Repository{
			ID:     id,
			Name:   name,
			Origin: origin,
			Branch: strings.TrimSpace(remote.Branch),
			VCS:    vcsName,
			Status: model.StatusChecking,
		})
	}
	return repos, nil
}

// Validate reports configuration that loads but cannot be synced.
func (m *Manifest) Validate() error {
	if len(m.Remotes) == 0 {
		return ErrNoRemotes
	}
	owners := make(map[string]int, len(m.Remotes))
	for i, remote := range m.Remotes {
		dir := gitx.LocalDirName(remote.Origin)
		if dir == "" {
			continue
		}
		prev, ok := owners[dir]
		if !ok {
			owners[dir] = i
			continue
		}
		if gitx.NormalizeURL(m.Remotes[prev].Origin) != gitx.NormalizeURL(remote.Origin) {
			return fmt.Errorf("%w: remotes[%d] (%s) and remotes[%d] (%s) both use %q",
				ErrMirrorCollision, prev, m.Remotes[prev].Origin, i, remote.Origin, dir)
		}
	}
	return nil
}

// DefaultRemoteName derives a display name from an origin.
func DefaultRemoteName(origin string) string {
	name := strings.TrimSuffix(gitx.LocalDirName(origin), ".git")
	if name == "" {
		return origin
	}
	return name
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func applyManifestGVK(m *Manifest) {
	if m == nil {
		return
	}
	if strings.TrimSpace(m.APIVersion) == "" {
		m.APIVersion = ManifestAPIVersion
	}
	if strings.TrimSpace(m.Kind) == "" {
		m.Kind = ManifestKind
	}
}

func validateManifestGVK(m *Manifest) error {
	if m == nil {
		return errors.New("manifest is nil")
	}
	if m.APIVersion != ManifestAPIVersion {
		return fmt.Errorf("unsupported manifest apiVersion %q (expected %q)", m.APIVersion, ManifestAPIVersion)
	}
	if m.Kind != ManifestKind {
		return fmt.Errorf("unsupported manifest kind %q (expected %q)", m.Kind, ManifestKind)
	}
	return nil
}
