// SPDX-License-Identifier: MIT
package engine_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skaphos/dyd/internal/gitx"
	"github.com/skaphos/dyd/internal/history"
)

// stubAdapter is a scriptable vcs.Adapter. Clone creates the target
// directory so a second cycle takes the update path.
type stubAdapter struct {
	name string

	cloneErr   error
	updateErr  error
	historyErr error
	lines      []string

	// during runs inside every VCS step while the permit is held.
	during func(ctx context.Context) error

	mu     sync.Mutex
	calls  []string
	active atomic.Int32
	peak   atomic.Int32
}

func newStub() *stubAdapter {
	return &stubAdapter{
		name: "stub",
		lines: []string{
			history.Encode("aaa1111", time.Unix(1700000000, 0), "1 day ago", "Ada", "older"),
			history.Encode("bbb2222", time.Unix(1700003600, 0), "1 day ago", "Grace", "newer"),
		},
	}
}

func (s *stubAdapter) enter(ctx context.Context, call string) error {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if s.during != nil {
		return s.during(ctx)
	}
	return nil
}

func (s *stubAdapter) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubAdapter) Name() string                                          { return s.name }
func (s *stubAdapter) IsRepo(context.Context, string) (bool, error)           { return true, nil }
func (s *stubAdapter) Remotes(context.Context, string) ([]gitx.Remote, error) { return nil, nil }
func (s *stubAdapter) PrimaryRemote([]string) string                          { return "origin" }

func (s *stubAdapter) Clone(ctx context.Context, _, path, _ string) error {
	if err := s.enter(ctx, "clone "+path); err != nil {
		return err
	}
	if s.cloneErr != nil {
		return s.cloneErr
	}
	return os.MkdirAll(path, 0o755)
}

func (s *stubAdapter) Update(ctx context.Context, path, _ string) error {
	if err := s.enter(ctx, "update "+path); err != nil {
		return err
	}
	return s.updateErr
}

func (s *stubAdapter) History(ctx context.Context, path, _ string, max int) ([]string, error) {
	if err := s.enter(ctx, "history "+path); err != nil {
		return nil, err
	}
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	if len(s.lines) > max {
		return s.lines[:max], nil
	}
	return s.lines, nil
}
