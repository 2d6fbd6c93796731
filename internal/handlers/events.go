// Package handlers exposes the reactive trigger surface: each handler decodes
// a platform-delivered document event, validates it, and runs the pipeline
// for that event kind. Handlers are safe to re-run; triggers are delivered
// at least once.
package handlers

import (
	"context"
	"time"

	"google.golang.org/genproto/googleapis/type/latlng"

	"github.com/wegig/backend/internal/geo"
	"github.com/wegig/backend/internal/models"
	"github.com/wegig/backend/internal/ratelimit"
)

// QuotaChecker is the slice of *ratelimit.Limiter the handlers consume.
type QuotaChecker interface {
	Check(ctx context.Context, subjectID, action string, limit int64, window time.Duration) (ratelimit.Result, error)
}

// Per-subject quotas for notification fan-out. The triggering write is never
// blocked; an exhausted quota only suppresses the downstream notification.
const (
	postLimit     = 20
	interestLimit = 50
	messageLimit  = 500

	quotaWindow = 24 * time.Hour
)

// Rate-limit action kinds.
const (
	actionPosts     = "posts"
	actionInterests = "interests"
	actionMessages  = "messages"
)

// fallbackName is used when an event arrives without a display name.
const fallbackName = "Someone"

// PostCreatedEvent is delivered once per new post document.
type PostCreatedEvent struct {
	PostID string      `json:"postId" validate:"required"`
	Post   models.Post `json:"post"`
}

// InterestCreatedEvent is delivered once per new interest document.
type InterestCreatedEvent struct {
	InterestID string          `json:"interestId" validate:"required"`
	Interest   models.Interest `json:"interest"`
}

// MessageCreatedEvent is delivered once per new message document, nested
// under its conversation.
type MessageCreatedEvent struct {
	ConversationID string         `json:"conversationId" validate:"required"`
	MessageID      string         `json:"messageId" validate:"required"`
	Message        models.Message `json:"message"`
}

// ProfileDeletedEvent is delivered once per profile deletion, carrying the
// last snapshot of the deleted document.
type ProfileDeletedEvent struct {
	ProfileID string         `json:"profileId" validate:"required"`
	Profile   models.Profile `json:"profile"`
}

// pointFrom converts a Firestore GeoPoint into a matcher point.
func pointFrom(l *latlng.LatLng) *geo.Point {
	if l == nil {
		return nil
	}
	return &geo.Point{Lat: l.Latitude, Lng: l.Longitude}
}

func nameOrFallback(name string) string {
	if name == "" {
		return fallbackName
	}
	return name
}
