// SPDX-License-Identifier: MIT
package vcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/skaphos/dyd/internal/gitx"
	"github.com/skaphos/dyd/internal/history"
)

const shortSHALen = 7

// GoGitAdapter implements Adapter in-process with go-git, for hosts
// without a git binary.
type GoGitAdapter struct{}

func NewGoGitAdapter() *GoGitAdapter { return &GoGitAdapter{} }

func (g *GoGitAdapter) Name() string { return "go-git" }

func (g *GoGitAdapter) IsRepo(_ context.Context, dir string) (bool, error) {
	_, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil, nil
}

func (g *GoGitAdapter) Remotes(_ context.Context, dir string) ([]gitx.Remote, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	remotes, err := repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}
	out := make([]gitx.Remote, 0, len(remotes))
	for _, remote := range remotes {
		cfg := remote.Config()
		if len(cfg.URLs) == 0 {
			continue
		}
		out = append(out, gitx.Remote{Name: cfg.Name, URL: cfg.URLs[0]})
	}
	return out, nil
}

func (g *GoGitAdapter) PrimaryRemote(remoteNames []string) string {
	return gitx.PrimaryRemote(remoteNames)
}

func (g *GoGitAdapter) Clone(ctx context.Context, origin, path, _ string) error {
	_, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL:        origin,
		RemoteName: git.DefaultRemoteName,
		Tags:       git.NoTags,
	})
	if err != nil {
		return fmt.Errorf("clone %s: %w", origin, err)
	}
	return nil
}

func (g *GoGitAdapter) Update(ctx context.Context, path, branch string) error {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	err = repo.FetchContext(ctx, &git.FetchOptions{RemoteName: git.DefaultRemoteName, Prune: true, Tags: git.NoTags})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetch: %w", err)
	}
	// A configured branch is read from refs/remotes/origin/<branch>, so the
	// fetch is enough unless that branch is the one checked out.
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("resolve HEAD: %w", err)
	}
	opts := &git.PullOptions{RemoteName: git.DefaultRemoteName}
	if branch != "" {
		if !head.Name().IsBranch() || head.Name().Short() != branch {
			return nil
		}
		opts.ReferenceName = head.Name()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}
	err = wt.PullContext(ctx, opts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pull: %w", err)
	}
	return nil
}

func (g *GoGitAdapter) History(ctx context.Context, path, branch string, max int) ([]string, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	var from *plumbing.Reference
	if branch != "" {
		from, err = repo.Reference(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, branch), true)
	} else {
		from, err = repo.Head()
	}
	if err != nil {
		return nil, fmt.Errorf("resolve start ref: %w", err)
	}
	iter, err := repo.Log(&git.LogOptions{From: from.Hash()})
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	defer iter.Close()

	lines := make([]string, 0, max)
	err = iter.ForEach(func(c *object.Commit) error {
		if len(lines) >= max {
			return storer.ErrStop
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		lines = append(lines, recordFor(c))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func recordFor(c *object.Commit) string {
	sha := c.Hash.String()
	if len(sha) > shortSHALen {
		sha = sha[:shortSHALen]
	}
	subject, _, _ := strings.Cut(c.Message, "\n")
	when := c.Committer.When
	return history.Encode(sha, when, humanize.Time(when), c.Author.Name, strings.TrimSpace(subject))
}
