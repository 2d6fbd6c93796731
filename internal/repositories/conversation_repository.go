package repositories

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/wegig/backend/internal/models"
)

const conversationsCollection = "conversations"

// ErrConversationNotFound is returned when a message event references a
// conversation document that no longer exists.
var ErrConversationNotFound = errors.New("conversation not found")

// FirestoreConversationRepository reads conversation documents to resolve
// message recipients.
type FirestoreConversationRepository struct {
	client *firestore.Client
}

// NewFirestoreConversationRepository creates a new FirestoreConversationRepository.
func NewFirestoreConversationRepository(client *firestore.Client) *FirestoreConversationRepository {
	return &FirestoreConversationRepository{client: client}
}

// Get loads one conversation by id.
func (r *FirestoreConversationRepository) Get(ctx context.Context, id string) (*models.Conversation, error) {
	snap, err := r.client.Collection(conversationsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("get conversation %s: %w", id, err)
	}

	var c models.Conversation
	if err := snap.DataTo(&c); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	c.ID = snap.Ref.ID
	return &c, nil
}
