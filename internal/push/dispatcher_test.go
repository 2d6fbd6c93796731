package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegig/backend/internal/models"
)

var errUnregistered = errors.New("registration token not registered")

type fakeSender struct {
	calls []*messaging.MulticastMessage
	// failFor marks tokens that should come back as failed sends.
	failFor map[string]error
	// callErr fails the whole call for the given call index.
	callErr map[int]error
}

func (s *fakeSender) SendEachForMulticast(_ context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	idx := len(s.calls)
	s.calls = append(s.calls, msg)
	if err, ok := s.callErr[idx]; ok {
		return nil, err
	}

	resp := &messaging.BatchResponse{}
	for _, token := range msg.Tokens {
		if err, ok := s.failFor[token]; ok {
			resp.FailureCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: false, Error: err})
		} else {
			resp.SuccessCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true, MessageID: "mid-" + token})
		}
	}
	return resp, nil
}

type fakeTokenStore struct {
	tokens  map[string][]string
	deleted []models.TokenRef
}

func (s *fakeTokenStore) Tokens(_ context.Context, profileID string) ([]string, error) {
	return s.tokens[profileID], nil
}

func (s *fakeTokenStore) DeleteTokens(_ context.Context, refs []models.TokenRef) error {
	s.deleted = append(s.deleted, refs...)
	return nil
}

func newTestDispatcher(sender *fakeSender, store *fakeTokenStore) *Dispatcher {
	d := NewDispatcher(sender, store, slog.Default())
	d.isInvalidToken = func(err error) bool { return errors.Is(err, errUnregistered) }
	return d
}

func TestDispatch_MulticastsAllRecipientTokens(t *testing.T) {
	sender := &fakeSender{}
	store := &fakeTokenStore{tokens: map[string][]string{
		"p1": {"t1", "t2"},
		"p2": {"t3"},
	}}
	d := newTestDispatcher(sender, store)

	report := d.Dispatch(context.Background(), []string{"p1", "p2"}, Notification{Title: "hi", Body: "there"}, map[string]string{"type": "interest"})

	assert.Equal(t, Report{Success: 3}, report)
	require.Len(t, sender.calls, 1)
	msg := sender.calls[0]
	assert.Len(t, msg.Tokens, 3)
	assert.Equal(t, "hi", msg.Notification.Title)
	assert.Equal(t, "FLUTTER_NOTIFICATION_CLICK", msg.Data["click_action"])
	assert.Equal(t, "interest", msg.Data["type"])
	assert.Equal(t, "high", msg.Android.Priority)
	assert.Equal(t, "high_importance_channel", msg.Android.Notification.ChannelID)
}

func TestDispatch_NoTokensIsNoop(t *testing.T) {
	sender := &fakeSender{}
	store := &fakeTokenStore{tokens: map[string][]string{}}
	d := newTestDispatcher(sender, store)

	report := d.Dispatch(context.Background(), []string{"p1"}, Notification{}, nil)
	assert.Equal(t, Report{}, report)
	assert.Empty(t, sender.calls)
}

func TestDispatch_SplitsBatchesAt500(t *testing.T) {
	tokens := make([]string, 1200)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("t%d", i)
	}
	sender := &fakeSender{}
	store := &fakeTokenStore{tokens: map[string][]string{"p1": tokens}}
	d := newTestDispatcher(sender, store)

	report := d.Dispatch(context.Background(), []string{"p1"}, Notification{}, nil)

	require.Len(t, sender.calls, 3)
	assert.Len(t, sender.calls[0].Tokens, 500)
	assert.Len(t, sender.calls[1].Tokens, 500)
	assert.Len(t, sender.calls[2].Tokens, 200)
	assert.Equal(t, 1200, report.Success)
}

func TestDispatch_InvalidTokensAreDeleted(t *testing.T) {
	sender := &fakeSender{failFor: map[string]error{
		"dead":      errUnregistered,
		"transient": errors.New("internal error"),
	}}
	store := &fakeTokenStore{tokens: map[string][]string{"p1": {"ok", "dead", "transient"}}}
	d := newTestDispatcher(sender, store)

	report := d.Dispatch(context.Background(), []string{"p1"}, Notification{}, nil)

	assert.Equal(t, 1, report.Success)
	assert.Equal(t, 2, report.Failure)
	assert.Equal(t, 1, report.InvalidTokens)
	// Only the dead token is removed; the transient failure leaves its token intact.
	require.Len(t, store.deleted, 1)
	assert.Equal(t, models.TokenRef{ProfileID: "p1", Token: "dead"}, store.deleted[0])
}

func TestDispatch_FailedBatchDoesNotAbortRemaining(t *testing.T) {
	tokens := make([]string, 600)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("t%d", i)
	}
	sender := &fakeSender{callErr: map[int]error{0: errors.New("unavailable")}}
	store := &fakeTokenStore{tokens: map[string][]string{"p1": tokens}}
	d := newTestDispatcher(sender, store)

	report := d.Dispatch(context.Background(), []string{"p1"}, Notification{}, nil)

	require.Len(t, sender.calls, 2)
	assert.Equal(t, 500, report.Failure)
	assert.Equal(t, 100, report.Success)
}
