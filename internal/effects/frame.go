package effects

import (
	"context"
	"time"
)

// Frame pacing. BaseDelay is the per-frame delay at speed 1;
// MinFrameDelay is the floor so speed 10 cannot spin the loop against
// hardware that takes milliseconds per command.
const (
	BaseDelay     = 200 * time.Millisecond
	MinFrameDelay = 20 * time.Millisecond

	// failureBackoff is the pause after a rejected frame push.
	failureBackoff = 500 * time.Millisecond

	// maxPushFailures aborts a run after this many consecutive
	// rejected pushes.
	maxPushFailures = 5
)

// frameDelay returns the inter-frame delay for a clamped speed.
func frameDelay(speed int) time.Duration {
	return scaledDelay(speed, 1)
}

// scaledDelay divides the base delay by speed*mult with the frame
// floor applied. Effects that animate per-channel or toggle use
// multipliers above 1 to keep their apparent rate in line.
func scaledDelay(speed int, mult float64) time.Duration {
	d := time.Duration(float64(BaseDelay) / (float64(speed) * mult))
	if d < MinFrameDelay {
		return MinFrameDelay
	}
	return d
}

// wait sleeps for d unless ctx is cancelled first. Returns false on
// cancellation so loops can exit promptly.
func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
