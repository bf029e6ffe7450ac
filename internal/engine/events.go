// SPDX-License-Identifier: MIT
package engine

import (
	"time"

	"github.com/skaphos/dyd/internal/model"
)

// Event is a value carried on the shared event channel. Sync jobs produce
// StatusChanged and SyncCompleted; the ticker produces Tick.
type Event interface {
	isEvent()
}

// StatusChanged reports a repository's new sync state.
type StatusChanged struct {
	RepoID string
	Status model.Status
}

// SyncCompleted carries a repository's decoded history, most recent first.
type SyncCompleted struct {
	RepoID  string
	Commits []model.Commit
}

// Tick is a periodic wake-up for the consumer loop.
type Tick struct {
	At time.Time
}

func (StatusChanged) isEvent() {}
func (SyncCompleted) isEvent() {}
func (Tick) isEvent()          {}
