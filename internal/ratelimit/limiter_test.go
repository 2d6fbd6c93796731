package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounterStore struct {
	counters map[string]*Counter
	failing  bool
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{counters: make(map[string]*Counter)}
}

func key(subjectID, action string) string { return fmt.Sprintf("%s_%s", subjectID, action) }

func (s *fakeCounterStore) Get(_ context.Context, subjectID, action string) (*Counter, error) {
	if s.failing {
		return nil, errors.New("store unavailable")
	}
	c, ok := s.counters[key(subjectID, action)]
	if !ok {
		return nil, ErrCounterNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *fakeCounterStore) Reset(_ context.Context, subjectID, action string, now, _ time.Time) error {
	if s.failing {
		return errors.New("store unavailable")
	}
	s.counters[key(subjectID, action)] = &Counter{Count: 1, LastReset: now}
	return nil
}

func (s *fakeCounterStore) Increment(_ context.Context, subjectID, action string) error {
	if s.failing {
		return errors.New("store unavailable")
	}
	s.counters[key(subjectID, action)].Count++
	return nil
}

func newTestLimiter(store CounterStore, now time.Time) *Limiter {
	l := New(store, slog.Default())
	l.now = func() time.Time { return now }
	return l
}

func TestCheck_FirstUseAllowed(t *testing.T) {
	l := newTestLimiter(newFakeCounterStore(), time.Now())

	res, err := l.Check(context.Background(), "profile-1", "posts", 20, 24*time.Hour)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(19), res.Remaining)
}

func TestCheck_AtMostLimitAllowedWithinWindow(t *testing.T) {
	store := newFakeCounterStore()
	l := newTestLimiter(store, time.Now())
	const limit = 5

	allowed := 0
	for i := 0; i < 12; i++ {
		res, err := l.Check(context.Background(), "profile-1", "interests", limit, time.Hour)
		require.NoError(t, err)
		if res.Allowed {
			allowed++
		}
	}
	assert.Equal(t, limit, allowed)
}

func TestCheck_DeniedReportsResetAt(t *testing.T) {
	store := newFakeCounterStore()
	start := time.Now()
	l := newTestLimiter(store, start)

	for i := 0; i < 2; i++ {
		_, err := l.Check(context.Background(), "p", "messages", 2, time.Hour)
		require.NoError(t, err)
	}

	res, err := l.Check(context.Background(), "p", "messages", 2, time.Hour)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(0), res.Remaining)
	assert.Equal(t, start.Add(time.Hour), res.ResetAt)
}

func TestCheck_WindowElapsedResetsCounter(t *testing.T) {
	store := newFakeCounterStore()
	start := time.Now()
	l := newTestLimiter(store, start)

	for i := 0; i < 3; i++ {
		_, err := l.Check(context.Background(), "p", "posts", 2, time.Hour)
		require.NoError(t, err)
	}

	// Move past the window. The next check is allowed and the counter restarts at 1.
	l.now = func() time.Time { return start.Add(time.Hour) }
	res, err := l.Check(context.Background(), "p", "posts", 2, time.Hour)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(1), res.Remaining)
	assert.Equal(t, int64(1), store.counters["p_posts"].Count)
}

func TestCheck_FailOpenOnStoreError(t *testing.T) {
	store := newFakeCounterStore()
	store.failing = true
	l := newTestLimiter(store, time.Now())

	res, err := l.Check(context.Background(), "p", "posts", 20, time.Hour)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(20), res.Remaining)
}

func TestCheck_FailClosedWhenConfigured(t *testing.T) {
	store := newFakeCounterStore()
	store.failing = true
	l := newTestLimiter(store, time.Now())
	l.FailOpen = false

	_, err := l.Check(context.Background(), "p", "posts", 20, time.Hour)
	assert.Error(t, err)
}
