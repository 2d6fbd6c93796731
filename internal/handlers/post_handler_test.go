package handlers

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/type/latlng"

	"github.com/wegig/backend/internal/geo"
	"github.com/wegig/backend/internal/models"
	"github.com/wegig/backend/internal/push"
	"github.com/wegig/backend/internal/ratelimit"
)

type fakeQuota struct {
	allowed bool
	err     error
	checks  int
}

func (f *fakeQuota) Check(_ context.Context, _, _ string, limit int64, _ time.Duration) (ratelimit.Result, error) {
	f.checks++
	if f.err != nil {
		return ratelimit.Result{}, f.err
	}
	if !f.allowed {
		return ratelimit.Result{Allowed: false}, nil
	}
	return ratelimit.Result{Allowed: true, Remaining: limit - 1}, nil
}

type fakeSubscribers struct {
	profiles []models.Profile
	err      error
}

func (f *fakeSubscribers) ProximitySubscribers(_ context.Context) ([]models.Profile, error) {
	return f.profiles, f.err
}

type fakeNearbyAggregator struct {
	posts   []*models.Post
	matches [][]geo.Match
}

func (f *fakeNearbyAggregator) NearbyPostBurst(_ context.Context, post *models.Post, matches []geo.Match) error {
	f.posts = append(f.posts, post)
	f.matches = append(f.matches, matches)
	return nil
}

type fakeDispatcher struct {
	recipients [][]string
	bodies     []push.Notification
	data       []map[string]string
}

func (f *fakeDispatcher) Dispatch(_ context.Context, recipientIDs []string, n push.Notification, data map[string]string) push.Report {
	f.recipients = append(f.recipients, recipientIDs)
	f.bodies = append(f.bodies, n)
	f.data = append(f.data, data)
	return push.Report{Success: len(recipientIDs)}
}

func geoPoint(lat, lng float64) *latlng.LatLng {
	return &latlng.LatLng{Latitude: lat, Longitude: lng}
}

func postEvent() *PostCreatedEvent {
	return &PostCreatedEvent{
		PostID: "post-1",
		Post: models.Post{
			AuthorUID:       "uid-1",
			AuthorProfileID: "author",
			AuthorName:      "Ana",
			Type:            models.PostTypeMusician,
			City:            "Campinas",
			Location:        geoPoint(-22.90, -47.06),
		},
	}
}

func TestPostHandle_NotifiesProfilesWithinRadius(t *testing.T) {
	quota := &fakeQuota{allowed: true}
	subs := &fakeSubscribers{profiles: []models.Profile{
		{ID: "near", Location: geoPoint(-22.91, -47.06), NotificationRadius: 20},
		{ID: "far", Location: geoPoint(-10.0, -40.0), NotificationRadius: 20},
		{ID: "author", Location: geoPoint(-22.90, -47.06), NotificationRadius: 20},
		{ID: "no-location"},
	}}
	agg := &fakeNearbyAggregator{}
	disp := &fakeDispatcher{}
	h := NewPostHandler(quota, subs, agg, disp, slog.Default())

	require.NoError(t, h.Handle(context.Background(), postEvent()))

	require.Len(t, agg.matches, 1)
	require.Len(t, agg.matches[0], 1)
	assert.Equal(t, "near", agg.matches[0][0].ID)
	assert.Equal(t, "post-1", agg.posts[0].ID)

	require.Len(t, disp.recipients, 1)
	assert.Equal(t, []string{"near"}, disp.recipients[0])
	assert.Equal(t, models.NotificationNearbyPost, disp.data[0]["type"])
}

func TestPostHandle_NoLocationSkips(t *testing.T) {
	quota := &fakeQuota{allowed: true}
	agg := &fakeNearbyAggregator{}
	disp := &fakeDispatcher{}
	h := NewPostHandler(quota, &fakeSubscribers{}, agg, disp, slog.Default())

	ev := postEvent()
	ev.Post.Location = nil
	require.NoError(t, h.Handle(context.Background(), ev))

	assert.Zero(t, quota.checks)
	assert.Empty(t, agg.posts)
	assert.Empty(t, disp.recipients)
}

func TestPostHandle_RateLimitSuppressesNotifications(t *testing.T) {
	quota := &fakeQuota{allowed: false}
	subs := &fakeSubscribers{profiles: []models.Profile{
		{ID: "near", Location: geoPoint(-22.91, -47.06), NotificationRadius: 20},
	}}
	agg := &fakeNearbyAggregator{}
	disp := &fakeDispatcher{}
	h := NewPostHandler(quota, subs, agg, disp, slog.Default())

	// Suppression is not a handler failure: the post itself is already stored.
	require.NoError(t, h.Handle(context.Background(), postEvent()))
	assert.Empty(t, agg.posts)
	assert.Empty(t, disp.recipients)
}

func TestPostHandle_SubscriberQueryFailurePropagates(t *testing.T) {
	quota := &fakeQuota{allowed: true}
	subs := &fakeSubscribers{err: errors.New("unavailable")}
	h := NewPostHandler(quota, subs, &fakeNearbyAggregator{}, &fakeDispatcher{}, slog.Default())

	assert.Error(t, h.Handle(context.Background(), postEvent()))
}

func TestPostHandle_DefaultRadiusApplied(t *testing.T) {
	quota := &fakeQuota{allowed: true}
	// ~1.1 km away, no radius configured: the 20 km default covers it.
	subs := &fakeSubscribers{profiles: []models.Profile{
		{ID: "near-default", Location: geoPoint(-22.91, -47.06)},
	}}
	agg := &fakeNearbyAggregator{}
	h := NewPostHandler(quota, subs, agg, &fakeDispatcher{}, slog.Default())

	require.NoError(t, h.Handle(context.Background(), postEvent()))
	require.Len(t, agg.matches, 1)
	assert.Len(t, agg.matches[0], 1)
}
