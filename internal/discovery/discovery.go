// SPDX-License-Identifier: MIT
// Package discovery walks directories to find existing clones whose
// origins can seed a manifest.
package discovery

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/skaphos/dyd/internal/gitx"
	"github.com/skaphos/dyd/internal/vcs"
)

// Result represents a discovered repository.
type Result struct {
	Path          string // absolute path to the repo root
	RepoID        string // normalized remote URL
	RemoteURL     string // raw remote URL of the primary remote
	PrimaryRemote string // primary remote name
	Remotes       []gitx.Remote
	VCS           string // backend that recognized the repo
}

// Options configures the discovery scan.
type Options struct {
	Roots          []string
	Exclude        []string // glob patterns to skip
	FollowSymlinks bool
	Adapters       *vcs.Set
}

// markers name the metadata entries that make a directory worth probing.
var markers = []string{".git", ".hg"}

// Scan walks all roots and returns discovered repos in walk order.
// It skips directories matching exclude patterns and does not recurse
// into repositories or VCS metadata directories.
func Scan(ctx context.Context, opts Options) ([]Result, error) {
	if opts.Adapters == nil {
		opts.Adapters = vcs.NewSetOf(vcs.NewGitAdapter(nil))
	}

	visited := make(map[string]struct{})
	var results []Result
	skipDirs := make(map[string]struct{})

	for _, root := range opts.Roots {
		if root == "" {
			continue
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		if err := walkRoot(ctx, absRoot, opts, visited, skipDirs, &results); err != nil {
			return nil, err
		}
	}

	return results, nil
}

// MatchesExclude checks whether a path matches any of the given exclude
// glob patterns.
func MatchesExclude(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	slashPath := filepath.ToSlash(path)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		match, err := doublestar.Match(pattern, slashPath)
		if err != nil {
			continue
		}
		if match {
			return true
		}
	}
	return false
}

func walkRoot(ctx context.Context, root string, opts Options, visited map[string]struct{}, skipDirs map[string]struct{}, results *[]Result) error {
	realRoot := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		realRoot = resolved
	}
	if _, ok := visited[realRoot]; ok {
		return nil
	}
	visited[realRoot] = struct{}{}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		isLink := d.Type()&os.ModeSymlink != 0
		if !d.IsDir() && !isLink {
			return nil
		}
		if isLink && !opts.FollowSymlinks {
			return nil
		}
		if _, ok := skipDirs[path]; ok {
			return fs.SkipDir
		}
		if isMarker(d.Name()) {
			return fs.SkipDir
		}
		if MatchesExclude(path, opts.Exclude) {
			return fs.SkipDir
		}

		if isLink {
			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil
			}
			info, err := os.Stat(target)
			if err != nil || !info.IsDir() {
				return nil
			}
			return walkRoot(ctx, target, opts, visited, skipDirs, results)
		}

		found, gitdir := hasMarker(path)
		if !found {
			return nil
		}
		adapter, ok := opts.Adapters.Detect(ctx, path)
		if !ok {
			return nil
		}
		if gitdir != "" {
			skipDirs[gitdir] = struct{}{}
		}
		result, err := buildResult(ctx, adapter, path)
		if err != nil {
			return err
		}
		*results = append(*results, result)
		return fs.SkipDir
	})
}

func isMarker(name string) bool {
	for _, m := range markers {
		if name == m {
			return true
		}
	}
	return false
}

// hasMarker reports whether dir holds VCS metadata. For a linked worktree
// whose .git is a file, the referenced gitdir is returned so the walk can
// skip it.
func hasMarker(dir string) (bool, string) {
	for _, m := range markers {
		p := filepath.Join(dir, m)
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			if gitdir, ok := gitdirFromFile(p); ok {
				return true, gitdir
			}
			continue
		}
		return true, ""
	}
	return false, ""
}

func gitdirFromFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	content := strings.TrimSpace(string(data))
	if !strings.HasPrefix(content, "gitdir:") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(content, "gitdir:"))
	if raw == "" {
		return "", false
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw), true
	}
	return filepath.Clean(filepath.Join(filepath.Dir(path), raw)), true
}

func buildResult(ctx context.Context, adapter vcs.Adapter, dir string) (Result, error) {
	remotes, err := adapter.Remotes(ctx, dir)
	if err != nil {
		return Result{}, err
	}
	var remoteNames []string
	for _, r := range remotes {
		remoteNames = append(remoteNames, r.Name)
	}
	primary := adapter.PrimaryRemote(remoteNames)
	var remoteURL string
	for _, r := range remotes {
		if r.Name == primary {
			remoteURL = r.URL
			break
		}
	}
	return Result{
		Path:          dir,
		RepoID:        gitx.NormalizeURL(remoteURL),
		RemoteURL:     remoteURL,
		PrimaryRemote: primary,
		Remotes:       remotes,
		VCS:           adapter.Name(),
	}, nil
}
