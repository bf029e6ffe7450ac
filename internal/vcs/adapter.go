// SPDX-License-Identifier: MIT
package vcs

import (
	"context"

	"github.com/skaphos/dyd/internal/gitx"
)

// Adapter defines the VCS operations a sync job relies on.
// Git is the default adapter.
type Adapter interface {
	Name() string
	IsRepo(ctx context.Context, dir string) (bool, error)
	Remotes(ctx context.Context, dir string) ([]gitx.Remote, error)
	PrimaryRemote(remoteNames []string) string
	// Clone creates a new mirror of origin at path.
	Clone(ctx context.Context, origin, path, branch string) error
	// Update fast-forwards an existing mirror from its origin.
	Update(ctx context.Context, path, branch string) error
	// History returns at most max one-line history records, newest first,
	// in the history package's record layout.
	History(ctx context.Context, path, branch string, max int) ([]string, error)
}

// GitAdapter implements Adapter using the git CLI via gitx.
type GitAdapter struct {
	Runner gitx.Runner
}

func NewGitAdapter(runner gitx.Runner) *GitAdapter {
	if runner == nil {
		runner = &gitx.GitRunner{}
	}
	return &GitAdapter{Runner: runner}
}

func (g *GitAdapter) Name() string { return "git" }

func (g *GitAdapter) IsRepo(ctx context.Context, dir string) (bool, error) {
	return gitx.IsRepo(ctx, g.Runner, dir)
}

func (g *GitAdapter) Remotes(ctx context.Context, dir string) ([]gitx.Remote, error) {
	return gitx.Remotes(ctx, g.Runner, dir)
}

func (g *GitAdapter) PrimaryRemote(remoteNames []string) string {
	return gitx.PrimaryRemote(remoteNames)
}

// Clone fetches every branch so origin/<branch> resolves for any override.
func (g *GitAdapter) Clone(ctx context.Context, origin, path, _ string) error {
	return gitx.Clone(ctx, g.Runner, origin, path)
}

func (g *GitAdapter) Update(ctx context.Context, path, branch string) error {
	return gitx.Update(ctx, g.Runner, path, branch)
}

func (g *GitAdapter) History(ctx context.Context, path, branch string, max int) ([]string, error) {
	return gitx.Log(ctx, g.Runner, path, branch, max)
}
