package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/wegig/backend/internal/models"
)

const postsCollection = "posts"

// FirestorePostRepository pages and deletes post documents for the profile
// cascade. It implements cleanup.PostStore.
type FirestorePostRepository struct {
	client *firestore.Client
}

// NewFirestorePostRepository creates a new FirestorePostRepository.
func NewFirestorePostRepository(client *firestore.Client) *FirestorePostRepository {
	return &FirestorePostRepository{client: client}
}

// PageByAuthor returns up to limit posts authored by the profile.
func (r *FirestorePostRepository) PageByAuthor(ctx context.Context, authorProfileID string, limit int) ([]models.Post, error) {
	iter := r.client.Collection(postsCollection).
		Where("authorProfileId", "==", authorProfileID).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var posts []models.Post
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate posts by author: %w", err)
		}
		var p models.Post
		if err := snap.DataTo(&p); err != nil {
			return nil, fmt.Errorf("decode post %s: %w", snap.Ref.ID, err)
		}
		p.ID = snap.Ref.ID
		posts = append(posts, p)
	}
	return posts, nil
}

// DeleteByIDs removes the post documents in one atomic batch. Callers keep
// pages at or below the 500-write batch limit.
func (r *FirestorePostRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	batch := r.client.Batch()
	for _, id := range ids {
		batch.Delete(r.client.Collection(postsCollection).Doc(id))
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("delete %d posts: %w", len(ids), err)
	}
	return nil
}
