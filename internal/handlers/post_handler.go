package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wegig/backend/internal/geo"
	"github.com/wegig/backend/internal/models"
	"github.com/wegig/backend/internal/push"
)

// SubscriberSource lists the profiles opted into proximity notifications.
type SubscriberSource interface {
	ProximitySubscribers(ctx context.Context) ([]models.Profile, error)
}

// NearbyAggregator creates the in-app records for a matched post.
type NearbyAggregator interface {
	NearbyPostBurst(ctx context.Context, post *models.Post, matches []geo.Match) error
}

// Dispatcher is the push fan-out used by all trigger handlers.
type Dispatcher interface {
	Dispatch(ctx context.Context, recipientIDs []string, n push.Notification, data map[string]string) push.Report
}

// PostHandler reacts to post creation: rate limit, proximity match, in-app
// records, push fan-out.
type PostHandler struct {
	limiter     QuotaChecker
	subscribers SubscriberSource
	aggregator  NearbyAggregator
	dispatcher  Dispatcher
	logger      *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(limiter QuotaChecker, subscribers SubscriberSource, aggregator NearbyAggregator, dispatcher Dispatcher, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		limiter:     limiter,
		subscribers: subscribers,
		aggregator:  aggregator,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// HandleHTTP decodes and validates the trigger payload, then runs Handle.
func (h *PostHandler) HandleHTTP(c echo.Context) error {
	var ev PostCreatedEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event payload")
	}
	if err := c.Validate(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.Handle(c.Request().Context(), &ev); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Handle runs the nearby-post pipeline for one created post. A returned error
// means a primary read/write failed and the platform should redeliver.
func (h *PostHandler) Handle(ctx context.Context, ev *PostCreatedEvent) error {
	post := ev.Post
	post.ID = ev.PostID

	eventPoint := pointFrom(post.Location)
	if eventPoint == nil {
		h.logger.Info("post skipped: no location", "post", post.ID)
		return nil
	}

	if post.AuthorUID != "" {
		res, err := h.limiter.Check(ctx, post.AuthorUID, actionPosts, postLimit, quotaWindow)
		if err != nil {
			return fmt.Errorf("rate limit check: %w", err)
		}
		if !res.Allowed {
			h.logger.Warn("post notifications suppressed: daily limit reached",
				"author", post.AuthorUID, "reset_at", res.ResetAt)
			return nil
		}
	}

	profiles, err := h.subscribers.ProximitySubscribers(ctx)
	if err != nil {
		return fmt.Errorf("load proximity subscribers: %w", err)
	}

	candidates := make([]geo.Candidate, 0, len(profiles))
	for _, p := range profiles {
		candidates = append(candidates, geo.Candidate{
			ID:       p.ID,
			Point:    pointFrom(p.Location),
			RadiusKm: p.RadiusKm(),
		})
	}

	matches := geo.InRange(*eventPoint, post.AuthorProfileID, candidates)
	if len(matches) == 0 {
		h.logger.Info("no nearby profiles to notify", "post", post.ID, "subscribers", len(profiles))
		return nil
	}
	h.logger.Info("nearby profiles matched", "post", post.ID, "matches", len(matches))

	post.AuthorName = nameOrFallback(post.AuthorName)
	if err := h.aggregator.NearbyPostBurst(ctx, &post, matches); err != nil {
		return err
	}

	recipients := make([]string, len(matches))
	for i, m := range matches {
		recipients[i] = m.ID
	}

	// Best-effort: the post and the in-app records are already persisted.
	h.dispatcher.Dispatch(ctx, recipients, push.Notification{
		Title: "New post nearby!",
		Body:  fmt.Sprintf("%s is looking for %s in %s", post.AuthorName, post.TypeLabel(), post.City),
	}, map[string]string{
		"type":       models.NotificationNearbyPost,
		"postId":     post.ID,
		"authorName": post.AuthorName,
		"city":       post.City,
	})
	return nil
}
