// SPDX-License-Identifier: MIT
package vcs

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/skaphos/dyd/internal/strutil"
)

// Supported lists the backend names accepted by --vcs and manifests.
var Supported = []string{"git", "go-git", "hg"}

// ParseAdapterSelection parses --vcs selections.
func ParseAdapterSelection(raw string) ([]string, error) {
	values := strutil.SplitCSV(raw)
	if len(values) == 0 {
		return []string{"git"}, nil
	}
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, value := range values {
		name := strings.ToLower(strings.TrimSpace(value))
		if !isSupported(name) {
			return nil, fmt.Errorf("unsupported vcs %q (supported: %s)", value, strings.Join(Supported, ","))
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return []string{"git"}, nil
	}
	return out, nil
}

func isSupported(name string) bool {
	for _, s := range Supported {
		if s == name {
			return true
		}
	}
	return false
}

// NewAdapter creates the adapter for one backend name.
func NewAdapter(name string) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "git":
		return NewGitAdapter(nil), nil
	case "go-git":
		return NewGoGitAdapter(), nil
	case "hg":
		return NewHgAdapter(), nil
	default:
		return nil, fmt.Errorf("unsupported vcs %q (supported: %s)", name, strings.Join(Supported, ","))
	}
}

// Set holds the selected backends. The first selection is the default for
// repositories that do not name one, and detection tries them in order.
type Set struct {
	adapters []Adapter
	byName   map[string]Adapter
	byPath   map[string]Adapter
	mu       sync.Mutex
}

// NewSet creates a Set from a --vcs selection.
func NewSet(raw string) (*Set, error) {
	selected, err := ParseAdapterSelection(raw)
	if err != nil {
		return nil, err
	}
	adapters := make([]Adapter, 0, len(selected))
	for _, name := range selected {
		adapter, err := NewAdapter(name)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	}
	return NewSetOf(adapters...), nil
}

// NewSetOf wraps already constructed adapters.
func NewSetOf(adapters ...Adapter) *Set {
	s := &Set{
		adapters: adapters,
		byName:   map[string]Adapter{},
		byPath:   map[string]Adapter{},
	}
	for _, adapter := range adapters {
		if _, ok := s.byName[adapter.Name()]; !ok {
			s.byName[adapter.Name()] = adapter
		}
	}
	return s
}

// Default returns the first selected adapter.
func (s *Set) Default() Adapter {
	if len(s.adapters) == 0 {
		return NewGitAdapter(nil)
	}
	return s.adapters[0]
}

// For resolves a repository's backend by name. An empty name means the
// default backend. Names outside the selection are constructed on demand.
func (s *Set) For(name string) (Adapter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return s.Default(), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if adapter, ok := s.byName[name]; ok {
		return adapter, nil
	}
	adapter, err := NewAdapter(name)
	if err != nil {
		return nil, err
	}
	s.byName[name] = adapter
	return adapter, nil
}

// Detect returns the first selected adapter that recognizes dir.
// This enables --vcs=git,hg scans in mixed roots.
func (s *Set) Detect(ctx context.Context, dir string) (Adapter, bool) {
	s.mu.Lock()
	if adapter, ok := s.byPath[dir]; ok {
		s.mu.Unlock()
		return adapter, true
	}
	s.mu.Unlock()

	for _, adapter := range s.adapters {
		ok, err := adapter.IsRepo(ctx, dir)
		if err != nil || !ok {
			continue
		}
		s.mu.Lock()
		s.byPath[dir] = adapter
		s.mu.Unlock()
		return adapter, true
	}
	return nil, false
}

// Names returns the selected backend names in order.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.adapters))
	for _, adapter := range s.adapters {
		out = append(out, adapter.Name())
	}
	return out
}
