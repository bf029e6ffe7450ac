// SPDX-License-Identifier: MIT
package dyd

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/skaphos/dyd/internal/model"
	"github.com/skaphos/dyd/internal/strutil"
)

// selectRepositories keeps repositories whose name or id matches any of
// the comma-separated globs in only. An empty filter keeps everything.
func selectRepositories(repos []model.Repository, only string) ([]model.Repository, error) {
	patterns := strutil.SplitCSV(only)
	if len(patterns) == 0 {
		return repos, nil
	}
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid --only pattern %q", pattern)
		}
	}
	selected := make([]model.Repository, 0, len(repos))
	for _, repo := range repos {
		if matchesAny(repo, patterns) {
			selected = append(selected, repo)
		}
	}
	return selected, nil
}

func matchesAny(repo model.Repository, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, repo.Name); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, repo.ID); ok {
			return true
		}
	}
	return false
}

// findRepository resolves a user-supplied reference by exact id, then by
// exact name. Ambiguous names are rejected.
func findRepository(repos []model.Repository, ref string) (model.Repository, error) {
	for _, repo := range repos {
		if repo.ID == ref {
			return repo, nil
		}
	}
	var matches []model.Repository
	for _, repo := range repos {
		if repo.Name == ref {
			matches = append(matches, repo)
		}
	}
	switch len(matches) {
	case 0:
		return model.Repository{}, fmt.Errorf("repository %q not found in manifest", ref)
	case 1:
		return matches[0], nil
	default:
		return model.Repository{}, fmt.Errorf("repository name %q is ambiguous (%d matches); use the id", ref, len(matches))
	}
}
