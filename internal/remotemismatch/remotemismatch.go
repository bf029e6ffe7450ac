// SPDX-License-Identifier: MIT
// Package remotemismatch finds mirrors whose checked-out remote no longer
// matches the manifest origin they are synced for.
package remotemismatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skaphos/dyd/internal/gitx"
	"github.com/skaphos/dyd/internal/model"
	"github.com/skaphos/dyd/internal/vcs"
)

// ReconcileMode controls how mismatches are reconciled.
type ReconcileMode string

const (
	ReconcileNone    ReconcileMode = "none"
	ReconcileReclone ReconcileMode = "reclone"
)

// Problem kinds.
const (
	KindMismatch = "origin_mismatch"
	KindShared   = "shared_mirror"
	KindNoRemote = "no_remote"
)

// Plan describes one mirror that does not match its manifest entry.
type Plan struct {
	RepoID      string
	Name        string
	Path        string
	Kind        string
	ManifestURL string
	MirrorURL   string
	Action      string
}

// ParseReconcileMode validates and parses a reconcile mode flag value.
func ParseReconcileMode(raw string) (ReconcileMode, error) {
	mode := ReconcileMode(strings.ToLower(strings.TrimSpace(raw)))
	switch mode {
	case "", ReconcileNone:
		return ReconcileNone, nil
	case ReconcileReclone:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported --reconcile value %q (expected none or reclone)", raw)
	}
}

// BuildPlans inspects the mirror of every repository under root. Missing
// mirrors are fine; the next sync clones them.
func BuildPlans(ctx context.Context, repos []model.Repository, root string, adapters *vcs.Set, mode ReconcileMode) ([]Plan, error) {
	if adapters == nil {
		adapters = vcs.NewSetOf(vcs.NewGitAdapter(nil))
	}
	owners := make(map[string]model.Repository, len(repos))
	plans := make([]Plan, 0)
	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := gitx.LocalDirName(repo.Origin)
		if name == "" {
			continue
		}
		path := filepath.Join(root, name)
		if owner, ok := owners[path]; ok {
			if gitx.NormalizeURL(owner.Origin) == gitx.NormalizeURL(repo.Origin) {
				continue
			}
			plans = append(plans, Plan{
				RepoID:      repo.ID,
				Name:        repo.Name,
				Path:        path,
				Kind:        KindShared,
				ManifestURL: repo.Origin,
				MirrorURL:   owner.Origin,
				Action:      "rename the origin or drop one remote; " + owner.Name + " owns this mirror",
			})
			continue
		}
		owners[path] = repo

		if _, err := os.Stat(path); err != nil {
			continue
		}
		adapter, err := adapters.For(repo.VCS)
		if err != nil {
			return nil, err
		}
		mirrorURL, err := primaryRemoteURL(ctx, adapter, path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		plan := Plan{
			RepoID:      repo.ID,
			Name:        repo.Name,
			Path:        path,
			ManifestURL: repo.Origin,
			MirrorURL:   mirrorURL,
		}
		switch {
		case mirrorURL == "":
			plan.Kind = KindNoRemote
		case gitx.NormalizeURL(mirrorURL) != gitx.NormalizeURL(repo.Origin):
			plan.Kind = KindMismatch
		default:
			continue
		}
		plan.Action = actionFor(mode)
		plans = append(plans, plan)
	}
	return plans, nil
}

// ApplyPlans reconciles plans per mode. Shared mirrors need a manifest
// change and are never touched.
func ApplyPlans(plans []Plan, mode ReconcileMode) error {
	if mode != ReconcileReclone {
		return nil
	}
	for _, plan := range plans {
		if plan.Kind == KindShared {
			continue
		}
		if err := os.RemoveAll(plan.Path); err != nil {
			return fmt.Errorf("remove mirror %q: %w", plan.Path, err)
		}
	}
	return nil
}

func actionFor(mode ReconcileMode) string {
	if mode == ReconcileReclone {
		return "remove mirror; next sync clones the manifest origin"
	}
	return "none"
}

func primaryRemoteURL(ctx context.Context, adapter vcs.Adapter, path string) (string, error) {
	remotes, err := adapter.Remotes(ctx, path)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(remotes))
	for _, remote := range remotes {
		names = append(names, remote.Name)
	}
	primary := adapter.PrimaryRemote(names)
	for _, remote := range remotes {
		if remote.Name == primary {
			return strings.TrimSpace(remote.URL), nil
		}
	}
	return "", nil
}
