// Package wait holds the cancellable delay shared by every polling loop.
package wait

import (
	"context"
	"time"
)

// Sleep waits for d or until ctx is canceled. It reports whether the full delay elapsed.
func Sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
