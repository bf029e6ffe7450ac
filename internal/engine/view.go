// SPDX-License-Identifier: MIT
package engine

import (
	"github.com/skaphos/dyd/internal/model"
	"github.com/skaphos/dyd/internal/sortutil"
)

// View is the ordered repository collection rendered by the CLI.
//
// A View is not safe for concurrent use. It is owned by the goroutine
// draining the event channel; sync jobs only ever send events.
type View struct {
	repos []*model.Repository
	byID  map[string]*model.Repository
}

// NewView creates a view in configuration order with every repository in
// the checking state.
func NewView(repos []model.Repository) *View {
	v := &View{
		repos: make([]*model.Repository, 0, len(repos)),
		byID:  make(map[string]*model.Repository, len(repos)),
	}
	for _, repo := range repos {
		r := repo
		r.Status = model.StatusChecking
		r.Commits = append([]model.Commit(nil), repo.Commits...)
		v.repos = append(v.repos, &r)
		v.byID[r.ID] = &r
	}
	return v
}

// Apply dispatches ev to the matching mutation and reports whether the
// view changed.
func (v *View) Apply(ev Event) bool {
	switch ev := ev.(type) {
	case StatusChanged:
		return v.ApplyStatusChanged(ev.RepoID, ev.Status)
	case SyncCompleted:
		return v.ApplySyncCompleted(ev.RepoID, ev.Commits)
	default:
		return false
	}
}

// ApplyStatusChanged sets a repository's status. Unknown ids and backward
// transitions are ignored.
func (v *View) ApplyStatusChanged(id string, status model.Status) bool {
	repo, ok := v.byID[id]
	if !ok || !repo.Status.CanAdvanceTo(status) {
		return false
	}
	repo.Status = status
	return true
}

// ApplySyncCompleted replaces a repository's commits, marks it finished
// and re-sorts the collection.
func (v *View) ApplySyncCompleted(id string, commits []model.Commit) bool {
	repo, ok := v.byID[id]
	if !ok || !repo.Status.CanAdvanceTo(model.StatusFinished) {
		return false
	}
	repo.Commits = commits
	repo.Status = model.StatusFinished
	sortutil.SortRepositories(v.repos)
	return true
}

// ResetAll returns every repository to checking. Call it only once the
// previous cycle's jobs have all ended.
func (v *View) ResetAll() {
	for _, repo := range v.repos {
		repo.Status = model.StatusChecking
	}
}

// Repositories returns a snapshot in display order.
func (v *View) Repositories() []model.Repository {
	out := make([]model.Repository, 0, len(v.repos))
	for _, repo := range v.repos {
		out = append(out, *repo)
	}
	return out
}

// Get returns a snapshot of one repository.
func (v *View) Get(id string) (model.Repository, bool) {
	repo, ok := v.byID[id]
	if !ok {
		return model.Repository{}, false
	}
	return *repo, true
}

// Len returns the number of repositories.
func (v *View) Len() int { return len(v.repos) }

// Settled reports whether every repository reached a terminal status.
func (v *View) Settled() bool {
	for _, repo := range v.repos {
		if !repo.Status.Terminal() {
			return false
		}
	}
	return true
}

// Counts tallies repositories per status.
func (v *View) Counts() map[model.Status]int {
	counts := make(map[model.Status]int, 6)
	for _, repo := range v.repos {
		counts[repo.Status]++
	}
	return counts
}
