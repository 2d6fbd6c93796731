package repositories

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/wegig/backend/internal/models"
	"github.com/wegig/backend/internal/ratelimit"
)

const rateLimitsCollection = "rateLimits"

// FirestoreCounterRepository implements ratelimit.CounterStore on the
// rateLimits collection, one document per (subject, action) pair.
type FirestoreCounterRepository struct {
	client *firestore.Client
}

// NewFirestoreCounterRepository creates a new FirestoreCounterRepository.
func NewFirestoreCounterRepository(client *firestore.Client) *FirestoreCounterRepository {
	return &FirestoreCounterRepository{client: client}
}

func (r *FirestoreCounterRepository) doc(subjectID, action string) *firestore.DocumentRef {
	return r.client.Collection(rateLimitsCollection).Doc(fmt.Sprintf("%s_%s", subjectID, action))
}

// Get reads the counter for the pair, or ratelimit.ErrCounterNotFound.
func (r *FirestoreCounterRepository) Get(ctx context.Context, subjectID, action string) (*ratelimit.Counter, error) {
	snap, err := r.doc(subjectID, action).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ratelimit.ErrCounterNotFound
		}
		return nil, fmt.Errorf("get rate limit counter: %w", err)
	}

	var counter models.RateLimitCounter
	if err := snap.DataTo(&counter); err != nil {
		return nil, fmt.Errorf("decode rate limit counter: %w", err)
	}
	return &ratelimit.Counter{Count: counter.Count, LastReset: counter.LastReset}, nil
}

// Reset starts a fresh window with count=1. The document is reused, never
// deleted.
func (r *FirestoreCounterRepository) Reset(ctx context.Context, subjectID, action string, now, windowStart time.Time) error {
	_, err := r.doc(subjectID, action).Set(ctx, models.RateLimitCounter{
		Count:       1,
		LastReset:   now,
		WindowStart: windowStart,
	})
	if err != nil {
		return fmt.Errorf("reset rate limit counter: %w", err)
	}
	return nil
}

// Increment bumps the counter atomically so concurrent trigger invocations
// never lose updates.
func (r *FirestoreCounterRepository) Increment(ctx context.Context, subjectID, action string) error {
	_, err := r.doc(subjectID, action).Update(ctx, []firestore.Update{
		{Path: "count", Value: firestore.Increment(1)},
	})
	if err != nil {
		return fmt.Errorf("increment rate limit counter: %w", err)
	}
	return nil
}
