package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ExpiredNotificationStore deletes a page of expired notification records.
type ExpiredNotificationStore interface {
	// DeleteExpiredPage removes up to limit records with expiresAt before now
	// and returns how many were deleted.
	DeleteExpiredPage(ctx context.Context, now time.Time, limit int) (int, error)
}

// Sweep purges expired notification records, at most one page per run.
// Anything left over is picked up by the next scheduled run.
type Sweep struct {
	store  ExpiredNotificationStore
	logger *slog.Logger
	now    func() time.Time
}

// NewSweep creates a Sweep over the given store.
func NewSweep(store ExpiredNotificationStore, logger *slog.Logger) *Sweep {
	return &Sweep{store: store, logger: logger, now: time.Now}
}

// Run deletes one page of expired notifications and returns the count.
func (s *Sweep) Run(ctx context.Context) (int, error) {
	deleted, err := s.store.DeleteExpiredPage(ctx, s.now(), pageSize)
	if err != nil {
		return 0, fmt.Errorf("delete expired notifications: %w", err)
	}
	if deleted == 0 {
		s.logger.Info("no expired notifications found")
		return 0, nil
	}
	s.logger.Info("expired notifications deleted", "count", deleted)
	return deleted, nil
}
