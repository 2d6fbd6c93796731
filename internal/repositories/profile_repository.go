package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/wegig/backend/internal/models"
)

const (
	profilesCollection  = "profiles"
	fcmTokensCollection = "fcmTokens"
)

// FirestoreProfileRepository reads proximity subscribers and manages the
// per-profile fcmTokens sub-collection. It implements push.TokenStore and
// cleanup.TokenStore.
type FirestoreProfileRepository struct {
	client *firestore.Client
}

// NewFirestoreProfileRepository creates a new FirestoreProfileRepository.
func NewFirestoreProfileRepository(client *firestore.Client) *FirestoreProfileRepository {
	return &FirestoreProfileRepository{client: client}
}

// ProximitySubscribers returns every profile that opted into nearby-post
// notifications.
func (r *FirestoreProfileRepository) ProximitySubscribers(ctx context.Context) ([]models.Profile, error) {
	iter := r.client.Collection(profilesCollection).
		Where("notificationRadiusEnabled", "==", true).
		Documents(ctx)
	defer iter.Stop()

	var profiles []models.Profile
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate proximity subscribers: %w", err)
		}
		var p models.Profile
		if err := snap.DataTo(&p); err != nil {
			return nil, fmt.Errorf("decode profile %s: %w", snap.Ref.ID, err)
		}
		p.ID = snap.Ref.ID
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (r *FirestoreProfileRepository) tokenCollection(profileID string) *firestore.CollectionRef {
	return r.client.Collection(profilesCollection).Doc(profileID).Collection(fcmTokensCollection)
}

// Tokens lists the FCM tokens registered for one profile.
func (r *FirestoreProfileRepository) Tokens(ctx context.Context, profileID string) ([]string, error) {
	iter := r.tokenCollection(profileID).Documents(ctx)
	defer iter.Stop()

	var tokens []string
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate tokens for profile %s: %w", profileID, err)
		}
		var t models.PushToken
		if err := snap.DataTo(&t); err != nil {
			return nil, fmt.Errorf("decode token %s: %w", snap.Ref.ID, err)
		}
		if t.Token == "" {
			// Token documents are keyed by the token string.
			t.Token = snap.Ref.ID
		}
		tokens = append(tokens, t.Token)
	}
	return tokens, nil
}

// DeleteTokens removes the given token documents in one batched delete.
func (r *FirestoreProfileRepository) DeleteTokens(ctx context.Context, refs []models.TokenRef) error {
	if len(refs) == 0 {
		return nil
	}
	batch := r.client.Batch()
	for _, ref := range refs {
		batch.Delete(r.tokenCollection(ref.ProfileID).Doc(ref.Token))
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("delete %d tokens: %w", len(refs), err)
	}
	return nil
}

// DeleteAllForProfile clears the profile's fcmTokens sub-collection and
// returns how many documents were removed.
func (r *FirestoreProfileRepository) DeleteAllForProfile(ctx context.Context, profileID string) (int, error) {
	iter := r.tokenCollection(profileID).Documents(ctx)
	defer iter.Stop()

	batch := r.client.Batch()
	count := 0
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("iterate tokens for profile %s: %w", profileID, err)
		}
		batch.Delete(snap.Ref)
		count++
	}
	if count == 0 {
		return 0, nil
	}
	if _, err := batch.Commit(ctx); err != nil {
		return 0, fmt.Errorf("delete tokens for profile %s: %w", profileID, err)
	}
	return count, nil
}
