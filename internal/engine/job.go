// SPDX-License-Identifier: MIT
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skaphos/dyd/internal/gitx"
	"github.com/skaphos/dyd/internal/history"
	"github.com/skaphos/dyd/internal/logging"
	"github.com/skaphos/dyd/internal/model"
	"github.com/skaphos/dyd/internal/sortutil"
)

// jobRun is one repository's sync job for one cycle.
type jobRun struct {
	e      *Engine
	repo   model.Repository
	root   string
	events chan<- Event
	log    logging.Logger
}

func (e *Engine) runJob(ctx context.Context, repo model.Repository, root string, events chan<- Event) {
	permit, err := e.gate.AcquireContext(ctx)
	if err != nil {
		return
	}
	defer permit.Release()

	j := &jobRun{e: e, repo: repo, root: root, events: events, log: e.log.With("repo", repo.ID)}
	defer func() {
		if r := recover(); r != nil {
			j.fail(ctx, "panic", fmt.Errorf("panic: %v", r))
		}
	}()
	j.run(ctx)
}

func (j *jobRun) run(ctx context.Context) {
	name := gitx.LocalDirName(j.repo.Origin)
	if name == "" {
		j.fail(ctx, "path", fmt.Errorf("%w from origin %q", ErrNoLocalPath, j.repo.Origin))
		return
	}
	adapter, err := j.e.adapters.For(j.repo.VCS)
	if err != nil {
		j.fail(ctx, "path", err)
		return
	}
	path := filepath.Join(j.root, name)
	unlock := j.e.lockPath(path)
	defer unlock()

	if isDir(path) {
		j.emit(ctx, StatusChanged{RepoID: j.repo.ID, Status: model.StatusPulling})
		j.log.Debug("update started", "path", path)
		err = j.step(ctx, func(ctx context.Context) error {
			return adapter.Update(ctx, path, j.repo.Branch)
		})
		if err != nil {
			j.fail(ctx, "update", err)
			return
		}
	} else {
		j.emit(ctx, StatusChanged{RepoID: j.repo.ID, Status: model.StatusCloning})
		j.log.Debug("clone started", "path", path)
		if err := os.MkdirAll(j.root, 0o755); err != nil {
			j.fail(ctx, "clone", fmt.Errorf("create root: %w", err))
			return
		}
		err = j.step(ctx, func(ctx context.Context) error {
			return adapter.Clone(ctx, j.repo.Origin, path, j.repo.Branch)
		})
		if err != nil {
			j.fail(ctx, "clone", err)
			return
		}
	}

	j.emit(ctx, StatusChanged{RepoID: j.repo.ID, Status: model.StatusFetchingLog})
	var lines []string
	err = j.step(ctx, func(ctx context.Context) error {
		var err error
		lines, err = adapter.History(ctx, path, j.repo.Branch, history.MaxCount)
		return err
	})
	if err != nil {
		j.fail(ctx, "history", err)
		return
	}
	commits := history.DecodeAll(lines)
	sortutil.SortCommits(commits)
	j.log.Info("sync finished", "backend", adapter.Name(), "commits", len(commits))
	j.emit(ctx, SyncCompleted{RepoID: j.repo.ID, Commits: commits})
}

// step runs fn under the per-step timeout, if any.
func (j *jobRun) step(ctx context.Context, fn func(context.Context) error) error {
	if j.e.timeout <= 0 {
		return fn(ctx)
	}
	stepCtx, cancel := context.WithTimeout(ctx, j.e.timeout)
	defer cancel()
	return fn(stepCtx)
}

func (j *jobRun) fail(ctx context.Context, step string, err error) {
	j.log.Error("sync failed", "step", step, "class", gitx.ClassifyError(err), "err", err)
	j.emit(ctx, StatusChanged{RepoID: j.repo.ID, Status: model.StatusFailed})
}

func (j *jobRun) emit(ctx context.Context, ev Event) {
	select {
	case j.events <- ev:
	case <-ctx.Done():
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
