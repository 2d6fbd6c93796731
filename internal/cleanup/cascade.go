// Package cleanup removes dependent records: the profile-deletion cascade and
// the scheduled purge of expired notifications.
package cleanup

import (
	"context"
	"log/slog"

	"github.com/wegig/backend/internal/models"
)

// pageSize is the provider's maximum atomic-write-batch size, also used as
// the query page cap so each loop iteration stays bounded.
const pageSize = 500

// PostStore pages and deletes a profile's posts.
type PostStore interface {
	// PageByAuthor returns up to limit posts authored by the profile.
	PageByAuthor(ctx context.Context, authorProfileID string, limit int) ([]models.Post, error)
	// DeleteByIDs removes the post documents in one atomic batch.
	DeleteByIDs(ctx context.Context, ids []string) error
}

// BlobStore deletes uploaded attachments by their download URL.
type BlobStore interface {
	DeleteByURL(ctx context.Context, url string) error
}

// NotificationStore deletes notification pages by either side of the record.
type NotificationStore interface {
	DeletePageByRecipient(ctx context.Context, profileID string, limit int) (int, error)
	DeletePageBySender(ctx context.Context, profileID string, limit int) (int, error)
}

// InterestStore deletes interest pages authored by a profile.
type InterestStore interface {
	DeletePageByProfile(ctx context.Context, profileID string, limit int) (int, error)
}

// TokenStore deletes a profile's push-token sub-collection.
type TokenStore interface {
	DeleteAllForProfile(ctx context.Context, profileID string) (int, error)
}

// Stats counts what one cascade run removed.
type Stats struct {
	Posts         int `json:"posts"`
	Images        int `json:"images"`
	Notifications int `json:"notifications"`
	Interests     int `json:"interests"`
	Tokens        int `json:"tokens"`
}

// Cascade deletes every dependent record of a deleted profile. Phases run
// sequentially and each guards its own failures: the profile document is
// already gone, so partial cleanup beats no cleanup and nothing is rolled
// back or re-thrown.
type Cascade struct {
	posts         PostStore
	blobs         BlobStore
	notifications NotificationStore
	interests     InterestStore
	tokens        TokenStore
	logger        *slog.Logger
}

// NewCascade wires a Cascade over the given stores.
func NewCascade(posts PostStore, blobs BlobStore, notifications NotificationStore, interests InterestStore, tokens TokenStore, logger *slog.Logger) *Cascade {
	return &Cascade{
		posts:         posts,
		blobs:         blobs,
		notifications: notifications,
		interests:     interests,
		tokens:        tokens,
		logger:        logger,
	}
}

// Run executes the cascade for one deleted profile and reports what it
// removed. It never returns an error; an orphan left behind by a failed phase
// is an accepted residual.
func (c *Cascade) Run(ctx context.Context, profileID string) Stats {
	log := c.logger.With("profile", profileID)
	log.Info("profile cascade cleanup started")

	var stats Stats
	c.deletePosts(ctx, profileID, &stats, log)
	c.deleteNotifications(ctx, profileID, &stats, log)
	c.deleteInterests(ctx, profileID, &stats, log)
	c.deleteTokens(ctx, profileID, &stats, log)

	log.Info("profile cascade cleanup finished",
		"posts", stats.Posts, "images", stats.Images,
		"notifications", stats.Notifications, "interests", stats.Interests, "tokens", stats.Tokens)
	return stats
}

// deletePosts removes the profile's posts page by page, then best-effort
// deletes each page's attachment blobs. Blob failures are logged and skipped;
// the document deletion is authoritative.
func (c *Cascade) deletePosts(ctx context.Context, profileID string, stats *Stats, log *slog.Logger) {
	for {
		page, err := c.posts.PageByAuthor(ctx, profileID, pageSize)
		if err != nil {
			log.Error("posts phase failed", "error", err)
			return
		}
		if len(page) == 0 {
			return
		}

		ids := make([]string, 0, len(page))
		var images []string
		for _, p := range page {
			ids = append(ids, p.ID)
			images = append(images, p.Images...)
		}

		if err := c.posts.DeleteByIDs(ctx, ids); err != nil {
			log.Error("posts phase failed", "error", err)
			return
		}
		stats.Posts += len(ids)

		for _, url := range images {
			if err := c.blobs.DeleteByURL(ctx, url); err != nil {
				log.Warn("could not delete attachment", "url", url, "error", err)
				continue
			}
			stats.Images++
		}
	}
}

// deleteNotifications runs the paginated delete twice: once for records where
// the profile is the recipient, once where it is the sender.
func (c *Cascade) deleteNotifications(ctx context.Context, profileID string, stats *Stats, log *slog.Logger) {
	for {
		n, err := c.notifications.DeletePageByRecipient(ctx, profileID, pageSize)
		if err != nil {
			log.Error("notifications phase failed", "side", "recipient", "error", err)
			break
		}
		if n == 0 {
			break
		}
		stats.Notifications += n
	}
	for {
		n, err := c.notifications.DeletePageBySender(ctx, profileID, pageSize)
		if err != nil {
			log.Error("notifications phase failed", "side", "sender", "error", err)
			return
		}
		if n == 0 {
			return
		}
		stats.Notifications += n
	}
}

func (c *Cascade) deleteInterests(ctx context.Context, profileID string, stats *Stats, log *slog.Logger) {
	for {
		n, err := c.interests.DeletePageByProfile(ctx, profileID, pageSize)
		if err != nil {
			log.Error("interests phase failed", "error", err)
			return
		}
		if n == 0 {
			return
		}
		stats.Interests += n
	}
}

// deleteTokens clears the fcmTokens sub-collection. Small enough for a single
// batch, no pagination.
func (c *Cascade) deleteTokens(ctx context.Context, profileID string, stats *Stats, log *slog.Logger) {
	n, err := c.tokens.DeleteAllForProfile(ctx, profileID)
	if err != nil {
		log.Error("tokens phase failed", "error", err)
		return
	}
	stats.Tokens = n
}
