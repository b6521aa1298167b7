package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/CodexForgeBR/testmate/internal/logging"
)

// WaitUntil blocks until target or until ctx is done, logging the remaining
// time at an interval that shrinks as target approaches. A target in the
// past returns immediately.
func WaitUntil(ctx context.Context, target time.Time) error {
	remaining := time.Until(target)
	if remaining <= 0 {
		return nil
	}

	logging.Info(fmt.Sprintf("Waiting until %s (%s remaining)", target.Format("2006-01-02 15:04:05"), remaining.Round(time.Second)))

	for {
		remaining = time.Until(target)
		if remaining <= 0 {
			return nil
		}
		interval := min(adaptiveInterval(remaining), remaining)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			if remaining = time.Until(target); remaining > 0 {
				logging.Debug(fmt.Sprintf("... %s remaining", remaining.Round(time.Second)))
			}
		}
	}
}

func adaptiveInterval(remaining time.Duration) time.Duration {
	switch {
	case remaining > time.Hour:
		return 60 * time.Second
	case remaining > 10*time.Minute:
		return 30 * time.Second
	case remaining > time.Minute:
		return 10 * time.Second
	default:
		return 1 * time.Second
	}
}
