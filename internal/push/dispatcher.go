// Package push delivers multicast FCM notifications and garbage-collects
// device tokens that the provider reports as dead. Delivery is best-effort:
// the triggering document write has already succeeded, so every failure here
// is logged and swallowed.
package push

import (
	"context"
	"log/slog"

	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"

	"github.com/wegig/backend/internal/models"
)

// maxTokensPerCall is the FCM multicast limit per network call.
const maxTokensPerCall = 500

// clickAction routes the tap to the right screen in the Flutter client.
const clickAction = "FLUTTER_NOTIFICATION_CLICK"

// MulticastSender is the slice of *messaging.Client the dispatcher uses.
type MulticastSender interface {
	SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// TokenStore resolves and removes per-profile device tokens.
type TokenStore interface {
	Tokens(ctx context.Context, profileID string) ([]string, error)
	// DeleteTokens removes token documents in a single batched delete.
	DeleteTokens(ctx context.Context, refs []models.TokenRef) error
}

// Notification is the visible part of a push message.
type Notification struct {
	Title string
	Body  string
}

// Report summarizes one dispatch across all batches.
type Report struct {
	Success       int
	Failure       int
	InvalidTokens int
}

// Dispatcher fans a notification out to every device token of a recipient set.
type Dispatcher struct {
	sender MulticastSender
	tokens TokenStore
	logger *slog.Logger

	// isInvalidToken classifies a per-token send error as dead-token
	// (unregistered or malformed registration token). Other errors are
	// transient and leave the token in place.
	isInvalidToken func(error) bool
}

// NewDispatcher creates a Dispatcher with the FCM error classification.
func NewDispatcher(sender MulticastSender, tokens TokenStore, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		tokens: tokens,
		logger: logger,
		isInvalidToken: func(err error) bool {
			return messaging.IsRegistrationTokenNotRegistered(err) || errorutils.IsInvalidArgument(err)
		},
	}
}

// Dispatch resolves all tokens for the recipients and sends the notification
// in multicast batches of at most 500 tokens. A failed batch does not abort
// the remaining batches. Tokens classified as invalid are deleted after each
// batch.
func (d *Dispatcher) Dispatch(ctx context.Context, recipientIDs []string, n Notification, data map[string]string) Report {
	var report Report

	var tokens []string
	owner := make(map[string]string)
	for _, profileID := range recipientIDs {
		ts, err := d.tokens.Tokens(ctx, profileID)
		if err != nil {
			d.logger.Warn("failed to load push tokens", "profile", profileID, "error", err)
			continue
		}
		for _, t := range ts {
			tokens = append(tokens, t)
			owner[t] = profileID
		}
	}
	if len(tokens) == 0 {
		d.logger.Info("no push tokens for recipients", "recipients", len(recipientIDs))
		return report
	}

	payload := make(map[string]string, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["click_action"] = clickAction

	for start := 0; start < len(tokens); start += maxTokensPerCall {
		end := start + maxTokensPerCall
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		resp, err := d.sender.SendEachForMulticast(ctx, d.buildMessage(batch, n, payload))
		if err != nil {
			d.logger.Error("push batch failed", "tokens", len(batch), "error", err)
			report.Failure += len(batch)
			continue
		}

		report.Success += resp.SuccessCount
		report.Failure += resp.FailureCount

		if resp.FailureCount > 0 {
			report.InvalidTokens += d.cleanupInvalid(ctx, batch, resp.Responses, owner)
		}
	}

	d.logger.Info("push dispatched",
		"success", report.Success, "failure", report.Failure, "invalid_tokens", report.InvalidTokens)
	return report
}

func (d *Dispatcher) buildMessage(tokens []string, n Notification, data map[string]string) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_importance_channel",
				Priority:  messaging.PriorityHigh,
				Color:     "#E47911",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: n.Title,
						Body:  n.Body,
					},
					Sound: "default",
					Badge: intPtr(1),
				},
			},
		},
	}
}

// cleanupInvalid deletes the tokens of this batch that FCM reported as dead
// and returns how many were removed.
func (d *Dispatcher) cleanupInvalid(ctx context.Context, batch []string, responses []*messaging.SendResponse, owner map[string]string) int {
	var refs []models.TokenRef
	for i, resp := range responses {
		if i >= len(batch) || resp.Success {
			continue
		}
		if !d.isInvalidToken(resp.Error) {
			d.logger.Warn("push send failed", "error", resp.Error)
			continue
		}
		refs = append(refs, models.TokenRef{ProfileID: owner[batch[i]], Token: batch[i]})
	}
	if len(refs) == 0 {
		return 0
	}
	if err := d.tokens.DeleteTokens(ctx, refs); err != nil {
		d.logger.Warn("failed to delete invalid tokens", "count", len(refs), "error", err)
		return 0
	}
	d.logger.Info("invalid push tokens removed", "count", len(refs))
	return len(refs)
}

func intPtr(v int) *int { return &v }
