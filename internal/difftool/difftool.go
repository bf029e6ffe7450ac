// SPDX-License-Identifier: MIT
// Package difftool launches the external viewer for a commit range.
//
// A difftool setting is either "git", "github", or a command template
// whose ${VAR} references are expanded from Vars.
package difftool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/skaphos/dyd/internal/model"
)

const (
	Git    = "git"
	GitHub = "github"

	// GitTemplate opens git's configured GUI difftool without prompting.
	GitTemplate = "git difftool -g -y ${DIFF}"
)

// ErrEmptyCommand is returned when a template expands to nothing.
var ErrEmptyCommand = errors.New("difftool command is empty")

var originPattern = regexp.MustCompile(`^([^@]+@|[^:]+://)([^:]+)[:/](.+)$`)

// RefTo is the range end: origin/<branch> when a branch is set, else HEAD.
func RefTo(repo model.Repository) string {
	if repo.Branch != "" {
		return "origin/" + repo.Branch
	}
	return "HEAD"
}

// Vars returns the variables available to templates and exported to the
// launched process.
func Vars(repo model.Repository, sha, cwd string) map[string]string {
	refTo := RefTo(repo)
	return map[string]string{
		"DYD_PWD":  cwd,
		"DIFF":     sha + ".." + refTo,
		"ORIGIN":   repo.Origin,
		"REF_FROM": sha,
		"REF_TO":   refTo,
	}
}

// Template returns the unexpanded command for tool.
func Template(tool string, repo model.Repository, sha string) (string, error) {
	switch strings.TrimSpace(tool) {
	case "", Git:
		return GitTemplate, nil
	case GitHub:
		url, err := CompareURL(repo, sha)
		if err != nil {
			return "", err
		}
		return "open " + url, nil
	default:
		return tool, nil
	}
}

// CompareURL builds the GitHub split-diff URL from sha to the branch, or
// HEAD when none is set.
func CompareURL(repo model.Repository, sha string) (string, error) {
	origin := strings.TrimSuffix(repo.Origin, ".git")
	m := originPattern.FindStringSubmatch(origin)
	if m == nil {
		return "", fmt.Errorf("cannot derive a web URL from origin %q", repo.Origin)
	}
	refTo := repo.Branch
	if refTo == "" {
		refTo = "HEAD"
	}
	return fmt.Sprintf("https://%s/%s/compare/%s..%s?diff=split", m[2], m[3], sha, refTo), nil
}

// Expand substitutes ${VAR} and $VAR references from vars. Unknown
// variables expand to the empty string.
func Expand(template string, vars map[string]string) string {
	return os.Expand(template, func(key string) string {
		return vars[key]
	})
}

// Command builds the viewer process for sha in the mirror at dir.
func Command(ctx context.Context, tool string, repo model.Repository, sha, dir, cwd string) (*exec.Cmd, error) {
	template, err := Template(tool, repo, sha)
	if err != nil {
		return nil, err
	}
	vars := Vars(repo, sha, cwd)
	parts := strings.Fields(Expand(template, vars))
	if len(parts) == 0 {
		return nil, ErrEmptyCommand
	}
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Dir = dir
	env := cmd.Environ()
	for _, key := range []string{"DYD_PWD", "DIFF", "ORIGIN", "REF_FROM", "REF_TO"} {
		env = append(env, key+"="+vars[key])
	}
	cmd.Env = env
	return cmd, nil
}
