// SPDX-License-Identifier: MIT
package vcs

import (
	"context"
	"strconv"
	"strings"

	"github.com/skaphos/dyd/internal/gitx"
	"github.com/skaphos/dyd/internal/history"
)

// HgTemplate renders one history record per changeset.
const HgTemplate = "{node|short}" + history.Separator +
	"{word(0, date|hgdate)}" + history.Separator +
	"{date|age}" + history.Separator +
	"{author|person}" + history.Separator +
	"{desc|firstline}\\n"

// HgAdapter implements Adapter for Mercurial repositories.
type HgAdapter struct {
	// Bin is the hg executable. Defaults to "hg".
	Bin string
}

func NewHgAdapter() *HgAdapter { return &HgAdapter{} }

func (h *HgAdapter) Name() string { return "hg" }

func (h *HgAdapter) bin() string {
	if h.Bin == "" {
		return "hg"
	}
	return h.Bin
}

func (h *HgAdapter) IsRepo(ctx context.Context, dir string) (bool, error) {
	if _, err := runCommand(ctx, dir, h.bin(), "root"); err != nil {
		return false, nil
	}
	return true, nil
}

func (h *HgAdapter) Remotes(ctx context.Context, dir string) ([]gitx.Remote, error) {
	url, err := runCommand(ctx, dir, h.bin(), "paths", "default")
	if err != nil || strings.TrimSpace(url) == "" {
		return nil, nil
	}
	return []gitx.Remote{{Name: "default", URL: strings.TrimSpace(url)}}, nil
}

func (h *HgAdapter) PrimaryRemote(remoteNames []string) string {
	for _, name := range remoteNames {
		if name == "default" {
			return name
		}
	}
	if len(remoteNames) == 0 {
		return ""
	}
	return remoteNames[0]
}

func (h *HgAdapter) Clone(ctx context.Context, origin, path, branch string) error {
	args := []string{"clone", "--quiet"}
	if strings.TrimSpace(branch) != "" {
		args = append(args, "--updaterev", strings.TrimSpace(branch))
	}
	args = append(args, origin, path)
	_, err := runCommand(ctx, "", h.bin(), args...)
	return err
}

func (h *HgAdapter) Update(ctx context.Context, path, branch string) error {
	args := []string{"pull", "--quiet", "--update"}
	if strings.TrimSpace(branch) != "" {
		args = append(args, "--branch", strings.TrimSpace(branch))
	}
	_, err := runCommand(ctx, path, h.bin(), args...)
	return err
}

func (h *HgAdapter) History(ctx context.Context, path, branch string, max int) ([]string, error) {
	args := []string{"log", "--limit", strconv.Itoa(max), "--template", HgTemplate}
	if strings.TrimSpace(branch) != "" {
		args = append(args, "--branch", strings.TrimSpace(branch))
	}
	out, err := runCommand(ctx, path, h.bin(), args...)
	if err != nil {
		return nil, err
	}
	return history.SplitLines(out), nil
}
