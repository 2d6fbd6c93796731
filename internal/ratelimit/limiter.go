// Package ratelimit implements a durable fixed-window rate limiter backed by
// per-(subject, action) counter documents. It gates write-triggered side
// effects: the triggering write itself has already been persisted by the time
// a check runs, so exceeding a limit only suppresses the downstream
// notification.
package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrCounterNotFound is returned by a CounterStore when no counter document
// exists yet for a (subject, action) pair.
var ErrCounterNotFound = errors.New("rate limit counter not found")

// Counter is the durable state read back from the store.
type Counter struct {
	Count     int64
	LastReset time.Time
}

// CounterStore persists window counters. Increment must be atomic relative to
// concurrent checks for the same key.
type CounterStore interface {
	Get(ctx context.Context, subjectID, action string) (*Counter, error)
	Reset(ctx context.Context, subjectID, action string, now, windowStart time.Time) error
	Increment(ctx context.Context, subjectID, action string) error
}

// Result is the outcome of one check.
type Result struct {
	Allowed   bool
	Remaining int64
	ResetAt   time.Time
}

// Limiter checks and consumes fixed-window quota.
type Limiter struct {
	store  CounterStore
	logger *slog.Logger

	// FailOpen allows the action when the store is unavailable, so a counter
	// outage never suppresses notifications for healthy writes.
	FailOpen bool

	now func() time.Time
}

// New creates a Limiter over the given store. FailOpen defaults to true.
func New(store CounterStore, logger *slog.Logger) *Limiter {
	return &Limiter{
		store:    store,
		logger:   logger,
		FailOpen: true,
		now:      time.Now,
	}
}

// Check consumes one unit of quota for (subjectID, action). The first use in
// a window creates or resets the counter; once count reaches limit, further
// checks are denied until the window elapses.
func (l *Limiter) Check(ctx context.Context, subjectID, action string, limit int64, window time.Duration) (Result, error) {
	now := l.now()
	windowStart := now.Add(-window)

	counter, err := l.store.Get(ctx, subjectID, action)
	switch {
	case errors.Is(err, ErrCounterNotFound):
		if err := l.store.Reset(ctx, subjectID, action, now, windowStart); err != nil {
			return l.storeFailure(subjectID, action, limit, err)
		}
		return Result{Allowed: true, Remaining: limit - 1}, nil
	case err != nil:
		return l.storeFailure(subjectID, action, limit, err)
	}

	if now.Sub(counter.LastReset) >= window {
		if err := l.store.Reset(ctx, subjectID, action, now, windowStart); err != nil {
			return l.storeFailure(subjectID, action, limit, err)
		}
		return Result{Allowed: true, Remaining: limit - 1}, nil
	}

	if counter.Count >= limit {
		l.logger.Warn("rate limit exceeded",
			"subject", subjectID, "action", action, "count", counter.Count, "limit", limit)
		return Result{Allowed: false, Remaining: 0, ResetAt: counter.LastReset.Add(window)}, nil
	}

	if err := l.store.Increment(ctx, subjectID, action); err != nil {
		return l.storeFailure(subjectID, action, limit, err)
	}
	return Result{Allowed: true, Remaining: limit - counter.Count - 1}, nil
}

func (l *Limiter) storeFailure(subjectID, action string, limit int64, err error) (Result, error) {
	if l.FailOpen {
		l.logger.Error("rate limit check failed, allowing",
			"subject", subjectID, "action", action, "error", err)
		return Result{Allowed: true, Remaining: limit}, nil
	}
	return Result{}, err
}
