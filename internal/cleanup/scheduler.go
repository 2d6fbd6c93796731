package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// sweepHour is the local hour the daily sweep fires at.
const sweepHour = 3

// RunDaily blocks and runs the sweep every day at 03:00 in loc, until ctx is
// cancelled. Intended to be called with `go` when the deployment has no
// platform scheduler pointed at the sweep endpoint.
func RunDaily(ctx context.Context, sweep *Sweep, loc *time.Location, logger *slog.Logger) {
	logger.Info("sweep scheduler started", "hour", sweepHour, "tz", loc.String())
	for {
		wait := time.Until(nextRun(time.Now().In(loc)))
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			if _, err := sweep.Run(ctx); err != nil {
				logger.Error("scheduled sweep failed", "error", err)
			}
		case <-ctx.Done():
			timer.Stop()
			logger.Info("sweep scheduler stopped")
			return
		}
	}
}

// nextRun returns the next 03:00 strictly after now, in now's location.
func nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), sweepHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
