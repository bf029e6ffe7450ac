// SPDX-License-Identifier: MIT
// Package model defines the core data types used throughout dyd.
package model

import "time"

// Status enumerates the sync lifecycle of a repository mirror.
//
//	checking -> cloning|pulling -> fetching_log -> finished|failed
//
// Finished and failed are terminal until the view is reset.
type Status string

const (
	StatusChecking    Status = "checking"
	StatusCloning     Status = "cloning"
	StatusPulling     Status = "pulling"
	StatusFetchingLog Status = "fetching_log"
	StatusFinished    Status = "finished"
	StatusFailed      Status = "failed"
)

// Terminal reports whether no further transitions are expected this cycle.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusFailed
}

func (s Status) rank() int {
	switch s {
	case StatusChecking:
		return 0
	case StatusCloning, StatusPulling:
		return 1
	case StatusFetchingLog:
		return 2
	case StatusFinished, StatusFailed:
		return 3
	default:
		return -1
	}
}

// CanAdvanceTo reports whether moving from s to next keeps the state
// machine moving forward. Failed is reachable from every non-terminal state.
func (s Status) CanAdvanceTo(next Status) bool {
	if s.Terminal() || next.rank() < 0 {
		return false
	}
	if next == StatusFailed {
		return true
	}
	return next.rank() > s.rank()
}

// Symbol is the single glyph used when rendering a status column.
func (s Status) Symbol() string {
	switch s {
	case StatusChecking:
		return "⁇"
	case StatusCloning:
		return "⚭"
	case StatusPulling:
		return "⤵"
	case StatusFetchingLog:
		return "☈"
	case StatusFinished:
		return "✓"
	case StatusFailed:
		return "𝗫"
	default:
		return "?"
	}
}

// Commit is one decoded history record.
type Commit struct {
	// SHA is the abbreviated commit hash.
	SHA string `json:"sha" yaml:"sha"`
	// Author is the author display name.
	Author string `json:"author" yaml:"author"`
	// Time is the absolute commit instant (epoch zero when unknown).
	Time time.Time `json:"time" yaml:"time"`
	// Date is the raw timestamp field as emitted by the VCS.
	Date string `json:"date" yaml:"date"`
	// Age is the VCS-provided human age, for display only.
	Age string `json:"age,omitempty" yaml:"age,omitempty"`
	// Message is the one-line subject.
	Message string `json:"message" yaml:"message"`
}

// Repository is one configured remote and its mirrored history.
type Repository struct {
	// ID is the stable key derived from the origin (and branch, if any).
	ID string `json:"id" yaml:"id"`
	// Name is the display name.
	Name string `json:"name" yaml:"name"`
	// Origin is the remote URL the mirror is cloned from.
	Origin string `json:"origin" yaml:"origin"`
	// Branch overrides the default branch when non-empty.
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`
	// VCS names the backend used for this repository; empty means default.
	VCS string `json:"vcs,omitempty" yaml:"vcs,omitempty"`
	// Status is the current sync state.
	Status Status `json:"status" yaml:"status"`
	// Commits is most-recent-first; empty until a sync finishes.
	Commits []Commit `json:"commits" yaml:"commits"`
}

// String renders "name — (branch)" when a branch override is set.
func (r Repository) String() string {
	if r.Branch == "" {
		return r.Name
	}
	return r.Name + " — (" + r.Branch + ")"
}

// Head returns the most recent commit, if any.
func (r Repository) Head() (Commit, bool) {
	if len(r.Commits) == 0 {
		return Commit{}, false
	}
	return r.Commits[0], true
}

// Fresh returns the commits strictly newer than since.
func (r Repository) Fresh(since time.Time) []Commit {
	var out []Commit
	for _, c := range r.Commits {
		if c.Time.After(since) {
			out = append(out, c)
		}
	}
	return out
}

// Stale reports whether c was committed at or before since.
func Stale(c Commit, since time.Time) bool {
	return !c.Time.After(since)
}
