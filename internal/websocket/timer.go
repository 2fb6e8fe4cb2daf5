package websocket

import (
	"context"
	"fmt"
	"time"
)

// TickInterval is the countdown emission interval.
const TickInterval = time.Second

// RunCountdown ticks down to endAt, invoking onTick with the remaining time
// each interval and onExpire exactly once when the clock reaches zero. It
// returns when expired or when ctx is cancelled, whichever comes first.
//
// Each connection runs its own countdown; there is no shared timer state.
// All countdowns for one attempt derive from the same persisted start time,
// so they agree without coordination.
func RunCountdown(ctx context.Context, endAt time.Time, interval time.Duration, onTick func(remaining time.Duration), onExpire func()) {
	if interval <= 0 {
		interval = TickInterval
	}

	// A join at or past the deadline still signals expiry exactly once.
	if remaining := time.Until(endAt); remaining <= 0 {
		onExpire()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining := time.Until(endAt)
			if remaining <= 0 {
				onExpire()
				return
			}
			onTick(remaining)
		}
	}
}

// FormatClock renders a duration as H:MM:SS for display alongside the
// integer second count.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}
