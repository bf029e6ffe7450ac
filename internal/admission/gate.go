// SPDX-License-Identifier: MIT
// Package admission provides the counting permit pool that bounds how many
// repository sync jobs perform I/O at the same time.
package admission

import (
	"context"
	"errors"
	"sync"
)

// ErrNoPermits is returned when a gate is constructed without any slots.
var ErrNoPermits = errors.New("admission gate requires at least one permit")

// Gate is a counting semaphore. The zero value is not usable; call New.
type Gate struct {
	slots chan struct{}
}

// Permit is one held concurrency slot. Release it exactly once; extra
// calls are no-ops.
type Permit struct {
	gate *Gate
	once sync.Once
}

// New creates a gate with the given number of permits.
func New(permits int) (*Gate, error) {
	if permits < 1 {
		return nil, ErrNoPermits
	}
	return &Gate{slots: make(chan struct{}, permits)}, nil
}

// Acquire blocks until a slot is free and returns the held permit.
func (g *Gate) Acquire() *Permit {
	g.slots <- struct{}{}
	return &Permit{gate: g}
}

// AcquireContext is Acquire with cancellation while waiting in the queue.
func (g *Gate) AcquireContext(ctx context.Context) (*Permit, error) {
	select {
	case g.slots <- struct{}{}:
		return &Permit{gate: g}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Capacity returns the total number of permits.
func (g *Gate) Capacity() int { return cap(g.slots) }

// Available returns the number of permits not currently held.
func (g *Gate) Available() int { return cap(g.slots) - len(g.slots) }

// Release returns the slot to the gate and wakes one waiter, if any.
func (p *Permit) Release() {
	if p == nil {
		return
	}
	p.once.Do(func() { <-p.gate.slots })
}
