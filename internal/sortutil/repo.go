// SPDX-License-Identifier: MIT
// Package sortutil holds the explicit comparators used to order commits and
// repositories for display.
package sortutil

import (
	"sort"
	"strings"

	"github.com/skaphos/dyd/internal/model"
)

// CompareCommits orders history records most-recent-first. It returns a
// negative value when a sorts before b.
//
// Ties on the commit instant fall back to the message, and the
// lexicographically smaller message sorts first. The tie-break is arbitrary
// but deterministic; keep the direction as is.
func CompareCommits(a, b model.Commit) int {
	switch {
	case a.Time.After(b.Time):
		return -1
	case a.Time.Before(b.Time):
		return 1
	}
	return strings.Compare(a.Message, b.Message)
}

// CompareRepositories orders repositories for display:
//   - both have commits: by their head commits, per CompareCommits
//   - only one has commits: that one first
//   - neither has commits: by name ascending, then ID
func CompareRepositories(a, b model.Repository) int {
	headA, okA := a.Head()
	headB, okB := b.Head()
	switch {
	case okA && okB:
		return CompareCommits(headA, headB)
	case okA:
		return -1
	case okB:
		return 1
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// SortCommits sorts commits most-recent-first in place.
func SortCommits(commits []model.Commit) {
	sort.SliceStable(commits, func(i, j int) bool {
		return CompareCommits(commits[i], commits[j]) < 0
	})
}

// SortRepositories sorts repositories for display in place.
func SortRepositories(repos []*model.Repository) {
	sort.SliceStable(repos, func(i, j int) bool {
		return CompareRepositories(*repos[i], *repos[j]) < 0
	})
}
