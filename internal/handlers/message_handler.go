package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wegig/backend/internal/models"
	"github.com/wegig/backend/internal/push"
	"github.com/wegig/backend/internal/repositories"
)

// ConversationSource resolves the conversation a message belongs to.
type ConversationSource interface {
	Get(ctx context.Context, id string) (*models.Conversation, error)
}

// MessageAggregator creates or merges the unread record for a conversation.
type MessageAggregator interface {
	Message(ctx context.Context, recipientID, conversationID, senderProfileID, senderName, text string) (string, error)
}

// MessageHandler reacts to message creation: rate limit, recipient
// resolution, merge-aware in-app record, push to the recipient.
type MessageHandler struct {
	limiter       QuotaChecker
	conversations ConversationSource
	aggregator    MessageAggregator
	dispatcher    Dispatcher
	logger        *slog.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(limiter QuotaChecker, conversations ConversationSource, aggregator MessageAggregator, dispatcher Dispatcher, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		limiter:       limiter,
		conversations: conversations,
		aggregator:    aggregator,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// HandleHTTP decodes and validates the trigger payload, then runs Handle.
func (h *MessageHandler) HandleHTTP(c echo.Context) error {
	var ev MessageCreatedEvent
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

// Handle runs the message-notification pipeline for one created message.
func (h *MessageHandler) Handle(ctx context.Context, ev *MessageCreatedEvent) error {
	sender := ev.Message.SenderProfileID
	senderName := nameOrFallback(ev.Message.SenderName)
	text := ev.Message.Text
	if text == "" {
		text = "Sent a message"
	}

	if sender != "" {
		res, err := h.limiter.Check(ctx, sender, actionMessages, messageLimit, quotaWindow)
		if err != nil {
			return fmt.Errorf("rate limit check: %w", err)
		}
		if !res.Allowed {
			h.logger.Warn("message notification suppressed: daily limit reached",
				"sender", sender, "reset_at", res.ResetAt)
			return nil
		}
	}

	conv, err := h.conversations.Get(ctx, ev.ConversationID)
	if errors.Is(err, repositories.ErrConversationNotFound) {
		h.logger.Warn("conversation not found", "conversation", ev.ConversationID)
		return nil
	}
	if err != nil {
		return err
	}

	recipient := conv.Recipient(sender)
	if recipient == "" {
		h.logger.Warn("no recipient in conversation", "conversation", ev.ConversationID)
		return nil
	}

	if _, err := h.aggregator.Message(ctx, recipient, ev.ConversationID, sender, senderName, text); err != nil {
		return err
	}

	h.dispatcher.Dispatch(ctx, []string{recipient}, push.Notification{
		Title: senderName,
		Body:  text,
	}, map[string]string{
		"type":            models.NotificationNewMessage,
		"conversationId":  ev.ConversationID,
		"senderProfileId": sender,
	})
	return nil
}
