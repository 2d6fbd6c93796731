package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegig/backend/internal/cleanup"
	"github.com/wegig/backend/validators"
)

type fakeCascade struct {
	profiles []string
	stats    cleanup.Stats
}

func (f *fakeCascade) Run(_ context.Context, profileID string) cleanup.Stats {
	f.profiles = append(f.profiles, profileID)
	return f.stats
}

func TestProfileHandle_RunsCascade(t *testing.T) {
	cascade := &fakeCascade{stats: cleanup.Stats{Posts: 3, Notifications: 7, Interests: 2, Tokens: 1}}
	h := NewProfileHandler(cascade, slog.Default())

	stats := h.Handle(context.Background(), &ProfileDeletedEvent{ProfileID: "p1"})
	assert.Equal(t, []string{"p1"}, cascade.profiles)
	assert.Equal(t, 3, stats.Posts)
	assert.Equal(t, 7, stats.Notifications)
}

func TestProfileHandleHTTP_AlwaysOK(t *testing.T) {
	cascade := &fakeCascade{stats: cleanup.Stats{Posts: 1}}
	h := NewProfileHandler(cascade, slog.Default())

	e := echo.New()
	e.Validator = validators.NewValidator()
	body := `{"profileId":"p1","profile":{"name":"Ana"}}`
	req := httptest.NewRequest(http.MethodPost, "/triggers/profile-deleted", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.HandleHTTP(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var stats cleanup.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Posts)
	assert.Equal(t, []string{"p1"}, cascade.profiles)
}

func TestProfileHandleHTTP_MissingProfileIDRejected(t *testing.T) {
	h := NewProfileHandler(&fakeCascade{}, slog.Default())

	e := echo.New()
	e.Validator = validators.NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/triggers/profile-deleted", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.HandleHTTP(e.NewContext(req, rec))
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
