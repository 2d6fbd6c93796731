package repositories

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/wegig/backend/internal/models"
	"github.com/wegig/backend/internal/notifications"
)

const notificationsCollection = "notifications"

// maxBatchWrites is the Firestore atomic write-batch limit.
const maxBatchWrites = 500

// FirestoreNotificationRepository persists notification records. It
// implements notifications.Store, cleanup.NotificationStore and
// cleanup.ExpiredNotificationStore.
type FirestoreNotificationRepository struct {
	client *firestore.Client
}

// NewFirestoreNotificationRepository creates a new FirestoreNotificationRepository.
func NewFirestoreNotificationRepository(client *firestore.Client) *FirestoreNotificationRepository {
	return &FirestoreNotificationRepository{client: client}
}

func (r *FirestoreNotificationRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(notificationsCollection)
}

// Create writes one record with an auto-generated id.
func (r *FirestoreNotificationRepository) Create(ctx context.Context, n *models.Notification) (string, error) {
	ref := r.collection().NewDoc()
	if _, err := ref.Set(ctx, n); err != nil {
		return "", fmt.Errorf("create notification: %w", err)
	}
	return ref.ID, nil
}

// CreateBatch writes the records in atomic batches of at most 500.
func (r *FirestoreNotificationRepository) CreateBatch(ctx context.Context, ns []*models.Notification) error {
	for start := 0; start < len(ns); start += maxBatchWrites {
		end := start + maxBatchWrites
		if end > len(ns) {
			end = len(ns)
		}
		batch := r.client.Batch()
		for _, n := range ns[start:end] {
			batch.Set(r.collection().NewDoc(), n)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("commit notification batch: %w", err)
		}
	}
	return nil
}

// FindUnreadMessage looks up the single unread newMessage record for a
// (recipient, conversation) pair.
func (r *FirestoreNotificationRepository) FindUnreadMessage(ctx context.Context, recipientID, conversationID string) (string, error) {
	iter := r.collection().
		Where("recipientProfileId", "==", recipientID).
		Where("type", "==", models.NotificationNewMessage).
		Where("data.conversationId", "==", conversationID).
		Where("read", "==", false).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return "", notifications.ErrNoUnreadMessage
	}
	if err != nil {
		return "", fmt.Errorf("query unread message notification: %w", err)
	}
	return snap.Ref.ID, nil
}

// MergeMessage folds a newer message into an existing unread record.
func (r *FirestoreNotificationRepository) MergeMessage(ctx context.Context, id, body, preview string, now, expiresAt time.Time) error {
	_, err := r.collection().Doc(id).Update(ctx, []firestore.Update{
		{Path: "body", Value: body},
		{Path: "data.messagePreview", Value: preview},
		{Path: "data.messageCount", Value: firestore.Increment(1)},
		{Path: "createdAt", Value: now},
		{Path: "expiresAt", Value: expiresAt},
	})
	if err != nil {
		return fmt.Errorf("merge message notification %s: %w", id, err)
	}
	return nil
}

// deletePage batch-deletes up to limit documents matched by the query and
// returns the count.
func (r *FirestoreNotificationRepository) deletePage(ctx context.Context, q firestore.Query, limit int) (int, error) {
	iter := q.Limit(limit).Documents(ctx)
	defer iter.Stop()

	batch := r.client.Batch()
	count := 0
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("iterate notifications: %w", err)
		}
		batch.Delete(snap.Ref)
		count++
	}
	if count == 0 {
		return 0, nil
	}
	if _, err := batch.Commit(ctx); err != nil {
		return 0, fmt.Errorf("delete notification page: %w", err)
	}
	return count, nil
}

// DeletePageByRecipient removes one page of records addressed to the profile.
func (r *FirestoreNotificationRepository) DeletePageByRecipient(ctx context.Context, profileID string, limit int) (int, error) {
	return r.deletePage(ctx, r.collection().Where("recipientProfileId", "==", profileID), limit)
}

// DeletePageBySender removes one page of records the profile caused.
func (r *FirestoreNotificationRepository) DeletePageBySender(ctx context.Context, profileID string, limit int) (int, error) {
	return r.deletePage(ctx, r.collection().Where("postAuthorProfileId", "==", profileID), limit)
}

// DeleteExpiredPage removes one page of records whose expiresAt has passed.
func (r *FirestoreNotificationRepository) DeleteExpiredPage(ctx context.Context, now time.Time, limit int) (int, error) {
	return r.deletePage(ctx, r.collection().Where("expiresAt", "<", now), limit)
}
