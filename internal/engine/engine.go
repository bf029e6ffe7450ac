// SPDX-License-Identifier: MIT
// Package engine runs the per-repository sync jobs and aggregates their
// progress into a single ordered view.
//
// Jobs never touch the view. They emit immutable events on a channel that
// a single consumer drains into a View.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/skaphos/dyd/internal/admission"
	"github.com/skaphos/dyd/internal/logging"
	"github.com/skaphos/dyd/internal/model"
	"github.com/skaphos/dyd/internal/vcs"
)

const (
	// DefaultConcurrency is the permit count used when none is configured.
	DefaultConcurrency = 8
	// DefaultStepTimeout bounds each clone, update and history step.
	DefaultStepTimeout = 10 * time.Minute
)

// ErrNoLocalPath is logged when a mirror directory cannot be derived from
// a repository's origin.
var ErrNoLocalPath = errors.New("cannot determine local path")

// Options configures an Engine.
type Options struct {
	// Concurrency is the admission gate's permit count. Zero selects
	// DefaultConcurrency; negative values are rejected.
	Concurrency int
	// StepTimeout bounds each VCS step. Zero disables the bound.
	StepTimeout time.Duration
	Logger      logging.Logger
}

// Engine dispatches sync jobs under a global concurrency cap.
type Engine struct {
	adapters *vcs.Set
	gate     *admission.Gate
	timeout  time.Duration
	log      logging.Logger

	wg sync.WaitGroup

	pathMu sync.Mutex
	paths  map[string]*sync.Mutex
}

// New creates an Engine. A nil adapter set selects the git CLI backend.
func New(adapters *vcs.Set, opts Options) (*Engine, error) {
	if adapters == nil {
		adapters = vcs.NewSetOf(vcs.NewGitAdapter(nil))
	}
	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	gate, err := admission.New(concurrency)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{
		adapters: adapters,
		gate:     gate,
		timeout:  opts.StepTimeout,
		log:      log,
		paths:    make(map[string]*sync.Mutex),
	}, nil
}

// Gate exposes the admission gate for instrumentation.
func (e *Engine) Gate() *admission.Gate { return e.gate }

// DispatchAll starts one job per repository and returns immediately.
// Each job acquires its permit inside its own goroutine, so spawning does
// not count against the concurrency budget. Events are sent on events in
// per-repository emission order; a cancelled ctx abandons pending sends.
func (e *Engine) DispatchAll(ctx context.Context, repos []model.Repository, root string, events chan<- Event) {
	e.log.Debug("dispatching sync cycle", "repos", len(repos), "permits", e.gate.Capacity(), "root", root)
	for _, repo := range repos {
		e.wg.Add(1)
		go func(repo model.Repository) {
			defer e.wg.Done()
			e.runJob(ctx, repo, root, events)
		}(repo)
	}
}

// lockPath serializes jobs whose repositories share one mirror directory,
// such as two branches of the same origin.
func (e *Engine) lockPath(path string) func() {
	e.pathMu.Lock()
	mu, ok := e.paths[path]
	if !ok {
		mu = &sync.Mutex{}
		e.paths[path] = mu
	}
	e.pathMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

// Wait blocks until every dispatched job has ended.
func (e *Engine) Wait() {
	e.wg.Wait()
}
