package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wegig/backend/internal/cleanup"
)

// CascadeRunner runs the dependent-record cleanup for a deleted profile.
type CascadeRunner interface {
	Run(ctx context.Context, profileID string) cleanup.Stats
}

// ProfileHandler reacts to profile deletion by cascading the cleanup of the
// profile's posts, notifications, interests and tokens.
type ProfileHandler struct {
	cascade CascadeRunner
	logger  *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(cascade CascadeRunner, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{cascade: cascade, logger: logger}
}

// HandleHTTP decodes and validates the trigger payload, then runs Handle.
// The cascade is best-effort; a failed phase is logged, never re-thrown, so
// the platform does not retry deletes that partially completed.
func (h *ProfileHandler) HandleHTTP(c echo.Context) error {
	var ev ProfileDeletedEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event payload")
	}
	if err := c.Validate(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	stats := h.Handle(c.Request().Context(), &ev)
	return c.JSON(http.StatusOK, stats)
}

// Handle runs the cascade for one deleted profile.
func (h *ProfileHandler) Handle(ctx context.Context, ev *ProfileDeletedEvent) cleanup.Stats {
	h.logger.Info("profile deleted", "profile", ev.ProfileID, "name", ev.Profile.Name)
	return h.cascade.Run(ctx, ev.ProfileID)
}
