package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

const interestsCollection = "interests"

// FirestoreInterestRepository deletes interest documents for the profile
// cascade. It implements cleanup.InterestStore.
type FirestoreInterestRepository struct {
	client *firestore.Client
}

// NewFirestoreInterestRepository creates a new FirestoreInterestRepository.
func NewFirestoreInterestRepository(client *firestore.Client) *FirestoreInterestRepository {
	return &FirestoreInterestRepository{client: client}
}

// DeletePageByProfile batch-deletes up to limit interests authored by the
// profile and returns the count.
func (r *FirestoreInterestRepository) DeletePageByProfile(ctx context.Context, profileID string, limit int) (int, error) {
	iter := r.client.Collection(interestsCollection).
		Where("profileId", "==", profileID).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	batch := r.client.Batch()
	count := 0
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("iterate interests by profile: %w", err)
		}
		batch.Delete(snap.Ref)
		count++
	}
	if count == 0 {
		return 0, nil
	}
	if _, err := batch.Commit(ctx); err != nil {
		return 0, fmt.Errorf("delete interest page: %w", err)
	}
	return count, nil
}
