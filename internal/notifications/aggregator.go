// Package notifications builds and persists in-app notification records for
// the reactive handlers, collapsing bursts of same-conversation messages into
// a single unread record.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wegig/backend/internal/geo"
	"github.com/wegig/backend/internal/models"
)

// Retention per notification kind.
const (
	NearbyPostTTL = 7 * 24 * time.Hour
	InterestTTL   = 30 * 24 * time.Hour
	NewMessageTTL = 7 * 24 * time.Hour
)

// ErrNoUnreadMessage is returned by a Store when no unread newMessage record
// exists for a (recipient, conversation) pair.
var ErrNoUnreadMessage = errors.New("no unread message notification")

// Store persists notification records.
type Store interface {
	Create(ctx context.Context, n *models.Notification) (string, error)
	// CreateBatch writes the records in atomic batches of at most 500.
	CreateBatch(ctx context.Context, ns []*models.Notification) error
	// FindUnreadMessage returns the id of the single unread newMessage record
	// for the pair, or ErrNoUnreadMessage.
	FindUnreadMessage(ctx context.Context, recipientID, conversationID string) (string, error)
	// MergeMessage overwrites body and preview, increments messageCount and
	// refreshes createdAt/expiresAt on an existing record.
	MergeMessage(ctx context.Context, id, body, preview string, now, expiresAt time.Time) error
}

// Aggregator creates or merges notification records.
type Aggregator struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// New creates an Aggregator over the given store.
func New(store Store, logger *slog.Logger) *Aggregator {
	return &Aggregator{store: store, logger: logger, now: time.Now}
}

// NearbyPostBurst creates one nearbyPost record per matched subscriber. Each
// qualifying post yields a fresh record for every recipient; there is no
// dedup for this kind.
func (a *Aggregator) NearbyPostBurst(ctx context.Context, post *models.Post, matches []geo.Match) error {
	if len(matches) == 0 {
		return nil
	}
	now := a.now()

	records := make([]*models.Notification, 0, len(matches))
	for _, m := range matches {
		distance := geo.FormatKm(m.DistanceKm)
		records = append(records, &models.Notification{
			RecipientProfileID: m.ID,
			Type:               models.NotificationNearbyPost,
			Priority:           models.PriorityMedium,
			Title:              "New post nearby!",
			Body: fmt.Sprintf("%s is looking for %s %s km from you in %s",
				post.AuthorName, post.TypeLabel(), distance, post.City),
			ActionType: models.ActionViewPost,
			ActionData: &models.NearbyPostData{
				PostID:          post.ID,
				Distance:        distance,
				City:            post.City,
				PostType:        post.Type,
				AuthorName:      post.AuthorName,
				AuthorProfileID: post.AuthorProfileID,
			},
			SenderName:          post.AuthorName,
			SenderPhoto:         post.AuthorPhotoURL,
			PostAuthorProfileID: post.AuthorProfileID,
			CreatedAt:           now,
			Read:                false,
			ExpiresAt:           now.Add(NearbyPostTTL),
		})
	}

	if err := a.store.CreateBatch(ctx, records); err != nil {
		return fmt.Errorf("create nearby post notifications: %w", err)
	}
	a.logger.Info("nearby post notifications created", "post", post.ID, "count", len(records))
	return nil
}

// Interest creates one interest record for the post author.
func (a *Aggregator) Interest(ctx context.Context, interest *models.Interest) (string, error) {
	now := a.now()
	id, err := a.store.Create(ctx, &models.Notification{
		RecipientProfileID: interest.PostAuthorProfileID,
		Type:               models.NotificationInterest,
		Priority:           models.PriorityHigh,
		Title:              "New interest!",
		Body:               fmt.Sprintf("%s showed interest in your post", interest.InterestedProfileName),
		ActionType:         models.ActionViewPost,
		ActionData: &models.InterestData{
			PostID:                interest.PostID,
			InterestedProfileID:   interest.InterestedProfileID,
			InterestedProfileName: interest.InterestedProfileName,
		},
		SenderName:          interest.InterestedProfileName,
		SenderPhoto:         interest.InterestedProfilePhotoURL,
		PostAuthorProfileID: interest.PostAuthorProfileID,
		CreatedAt:           now,
		Read:                false,
		ExpiresAt:           now.Add(InterestTTL),
	})
	if err != nil {
		return "", fmt.Errorf("create interest notification: %w", err)
	}
	return id, nil
}

// Message creates the unread newMessage record for a conversation, or merges
// into the existing one: latest text wins, messageCount is incremented and
// the record's timestamps are refreshed.
//
// The lookup and the write are separate steps, so two concurrent messages can
// race into two records. The duplicate collapses on the recipient's next read
// and is tolerated; a deterministic document key would close the race at the
// cost of changing the record IDs clients already rely on.
func (a *Aggregator) Message(ctx context.Context, recipientID, conversationID, senderProfileID, senderName, text string) (string, error) {
	now := a.now()
	body := fmt.Sprintf("%s: %s", senderName, text)

	id, err := a.store.FindUnreadMessage(ctx, recipientID, conversationID)
	switch {
	case err == nil:
		if err := a.store.MergeMessage(ctx, id, body, text, now, now.Add(NewMessageTTL)); err != nil {
			return "", fmt.Errorf("merge message notification: %w", err)
		}
		a.logger.Info("message notification merged", "recipient", recipientID, "conversation", conversationID)
		return id, nil
	case !errors.Is(err, ErrNoUnreadMessage):
		return "", fmt.Errorf("find unread message notification: %w", err)
	}

	id, err = a.store.Create(ctx, &models.Notification{
		RecipientProfileID: recipientID,
		Type:               models.NotificationNewMessage,
		Priority:           models.PriorityHigh,
		Title:              "New message",
		Body:               body,
		ActionType:         models.ActionOpenConversation,
		Data: &models.MessageData{
			ConversationID:  conversationID,
			MessagePreview:  text,
			MessageCount:    1,
			SenderName:      senderName,
			SenderProfileID: senderProfileID,
		},
		SenderName: senderName,
		CreatedAt:  now,
		Read:       false,
		ExpiresAt:  now.Add(NewMessageTTL),
	})
	if err != nil {
		return "", fmt.Errorf("create message notification: %w", err)
	}
	return id, nil
}
