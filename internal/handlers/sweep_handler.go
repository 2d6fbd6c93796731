package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SweepRunner purges one page of expired notifications.
type SweepRunner interface {
	Run(ctx context.Context) (int, error)
}

// SweepHandler exposes the scheduled expiry sweep as a trigger endpoint for
// the platform scheduler.
type SweepHandler struct {
	sweep  SweepRunner
	logger *slog.Logger
}

// NewSweepHandler creates a new SweepHandler.
func NewSweepHandler(sweep SweepRunner, logger *slog.Logger) *SweepHandler {
	return &SweepHandler{sweep: sweep, logger: logger}
}

// HandleHTTP runs one sweep pass.
func (h *SweepHandler) HandleHTTP(c echo.Context) error {
	deleted, err := h.sweep.Run(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"deleted": deleted})
}
