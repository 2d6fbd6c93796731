package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wegig/backend/internal/models"
	"github.com/wegig/backend/internal/push"
)

// InterestAggregator creates the in-app record for an interest event.
type InterestAggregator interface {
	Interest(ctx context.Context, interest *models.Interest) (string, error)
}

// InterestHandler reacts to interest creation: rate limit, in-app record,
// push to the post author.
type InterestHandler struct {
	limiter    QuotaChecker
	aggregator InterestAggregator
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewInterestHandler creates a new InterestHandler.
func NewInterestHandler(limiter QuotaChecker, aggregator InterestAggregator, dispatcher Dispatcher, logger *slog.Logger) *InterestHandler {
	return &InterestHandler{limiter: limiter, aggregator: aggregator, dispatcher: dispatcher, logger: logger}
}

// HandleHTTP decodes and validates the trigger payload, then runs Handle.
func (h *InterestHandler) HandleHTTP(c echo.Context) error {
	var ev InterestCreatedEvent
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

// Handle runs the interest pipeline. The interest document is already
// persisted; exceeding the quota only suppresses its notification.
func (h *InterestHandler) Handle(ctx context.Context, ev *InterestCreatedEvent) error {
	interest := ev.Interest
	interest.ID = ev.InterestID
	interest.InterestedProfileName = nameOrFallback(interest.InterestedProfileName)

	if interest.InterestedProfileID != "" {
		res, err := h.limiter.Check(ctx, interest.InterestedProfileID, actionInterests, interestLimit, quotaWindow)
		if err != nil {
			return fmt.Errorf("rate limit check: %w", err)
		}
		if !res.Allowed {
			h.logger.Warn("interest notification suppressed: daily limit reached",
				"profile", interest.InterestedProfileID, "reset_at", res.ResetAt)
			return nil
		}
	}

	if _, err := h.aggregator.Interest(ctx, &interest); err != nil {
		return err
	}
	h.logger.Info("interest notification created",
		"interest", interest.ID, "post", interest.PostID, "author", interest.PostAuthorProfileID)

	h.dispatcher.Dispatch(ctx, []string{interest.PostAuthorProfileID}, push.Notification{
		Title: "New interest!",
		Body:  fmt.Sprintf("%s showed interest in your post", interest.InterestedProfileName),
	}, map[string]string{
		"type":                models.NotificationInterest,
		"postId":              interest.PostID,
		"interestedProfileId": interest.InterestedProfileID,
	})
	return nil
}
