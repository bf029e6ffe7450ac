// SPDX-License-Identifier: MIT
package engine

import (
	"context"
	"time"
)

// StartTicker emits a Tick on events every interval until ctx ends.
// Ticks are dropped rather than queued while the consumer is busy.
func StartTicker(ctx context.Context, interval time.Duration, events chan<- Event) {
	if interval <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case at := <-t.C:
				select {
				case events <- Tick{At: at}:
				default:
				}
			}
		}
	}()
}
