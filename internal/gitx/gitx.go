// SPDX-License-Identifier: MIT
// Package gitx provides helpers for executing git commands and parsing
// their output. It shells out to the installed git binary.
package gitx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/skaphos/dyd/internal/history"
)

// Runner executes git commands in a given repo directory.
// This interface allows mocking in tests.
type Runner interface {
	// Run executes a git command in the given directory and returns its
	// stdout. Failures carry the trimmed stderr text.
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// GitRunner is the default Runner implementation that shells out to git.
type GitRunner struct {
	// GitBin is the path to the git binary. Defaults to "git".
	GitBin string
}

// Run executes a git command.
func (g *GitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := g.GitBin
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	// Never block on credential prompts; the terminal belongs to the view.
	cmd.Env = append(cmd.Environ(), "GIT_TERMINAL_PROMPT=0")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %s: %w", args[0], msg, err)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// IsRepo checks whether the given path is inside a git working tree.
func IsRepo(ctx context.Context, r Runner, dir string) (bool, error) {
	out, err := r.Run(ctx, dir, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false, nil
	}
	return strings.TrimSpace(out) == "true", nil
}

// Remotes returns all configured remotes for the repo.
func Remotes(ctx context.Context, r Runner, dir string) ([]Remote, error) {
	out, err := r.Run(ctx, dir, "remote")
	if err != nil {
		return nil, fmt.Errorf("git remote: %w", err)
	}
	var remotes []Remote
	for _, name := range ParseRemoteNames(out) {
		url, err := r.Run(ctx, dir, "remote", "get-url", name)
		if err != nil {
			continue
		}
		remotes = append(remotes, Remote{Name: name, URL: strings.TrimSpace(url)})
	}
	return remotes, nil
}

// Clone clones origin into dir. The parent of dir must exist.
func Clone(ctx context.Context, r Runner, origin, dir string) error {
	_, err := r.Run(ctx, "", "-c", "fetch.recurseSubmodules=false", "clone", "--quiet", "--no-recurse-submodules", origin, dir)
	return err
}

// Fetch updates remote-tracking refs from origin. With a branch only that
// branch is fetched, which still updates refs/remotes/origin/<branch>.
func Fetch(ctx context.Context, r Runner, dir, branch string) error {
	args := []string{"-c", "fetch.recurseSubmodules=false", "fetch", "--quiet", "--prune", "--no-recurse-submodules", "origin"}
	if branch != "" {
		args = append(args, branch)
	}
	_, err := r.Run(ctx, dir, args...)
	return err
}

// MergeFastForward advances the checked-out branch to its upstream and
// refuses to create a merge commit.
func MergeFastForward(ctx context.Context, r Runner, dir string) error {
	_, err := r.Run(ctx, dir, "merge", "--ff-only", "--quiet", "--no-edit")
	return err
}

// Update fetches and fast-forwards an existing mirror.
func Update(ctx context.Context, r Runner, dir, branch string) error {
	if err := Fetch(ctx, r, dir, branch); err != nil {
		return err
	}
	return MergeFastForward(ctx, r, dir)
}

// Log returns up to max history records reachable from origin/<branch>,
// or from HEAD when branch is empty, formatted per history.GitFormat.
func Log(ctx context.Context, r Runner, dir, branch string, max int) ([]string, error) {
	args := []string{
		"log",
		"-n", strconv.Itoa(max),
		"--abbrev-commit",
		"--no-color",
		"--pretty=tformat:" + history.GitFormat,
	}
	if branch != "" {
		args = append(args, "origin/"+branch, "--")
	}
	out, err := r.Run(ctx, dir, args...)
	if err != nil {
		return nil, err
	}
	return history.SplitLines(out), nil
}
