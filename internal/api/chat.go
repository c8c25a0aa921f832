package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"loopwise-go/internal/models"
	"loopwise-go/internal/state"

	"go.uber.org/zap"
)

var ErrEmptyMessage = errors.New("message text is empty")

// SendMessage appends the user's message, asks the assistant for a reply
// and dispatches any action the reply carries.
func (c *Controller) SendMessage(ctx context.Context, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	c.state.Messages = append(c.state.Messages, models.Message{
		Id:        state.NewId("msg"),
		Text:      text,
		Sender:    models.SenderUser,
		Timestamp: c.now(),
	})
	history := append([]models.Message(nil), c.state.Messages...)
	subs := append([]models.Subscription(nil), c.state.Subscriptions...)
	c.mu.Unlock()

	reply, err := c.backend.GetChatResponse(ctx, subs, history)
	if err != nil {
		return nil, fmt.Errorf("chat response failed: %w", err)
	}

	c.mu.Lock()
	c.state.Messages = append(c.state.Messages, reply)
	c.mu.Unlock()

	if reply.Action != nil {
		c.Dispatch(ctx, *reply.Action)
	}
	return &reply, nil
}

// Dispatch executes an assistant command. It is the only way assistant
// output changes state. Unknown commands and unknown subscriptions are
// logged and ignored.
func (c *Controller) Dispatch(ctx context.Context, action models.Action) {
	switch action.Type {
	case models.ActionNavigate:
		view := action.Payload.View
		if !view.Valid() {
			zap.L().Warn("Ignoring navigation to unknown view", zap.String("view", string(view)))
			return
		}
		c.SetView(view)
		c.mu.Lock()
		c.notify(fmt.Sprintf("AI is navigating to %s.", view), models.NotificationSuggestion)
		c.mu.Unlock()

	case models.ActionChangeStatus:
		id, status := action.Payload.SubscriptionId, action.Payload.Status
		if id == "" || !validStatus(status) {
			zap.L().Warn("Ignoring incomplete status change",
				zap.String("subscription_id", id),
				zap.String("status", string(status)))
			return
		}

		c.mu.Lock()
		change, err := c.changeStatusLocked(id, status)
		if err != nil {
			c.mu.Unlock()
			return
		}
		message := fmt.Sprintf("AI has %s your %s subscription.", status, change.Subscription.Name)
		c.toast(message, models.ToastInfo)
		c.notify(message, models.NotificationSubscription)
		userId := c.userId()
		c.mu.Unlock()

		if change.Reactivation != nil {
			c.mirrorTransactions(ctx, userId, *change.Reactivation)
		}

	default:
		zap.L().Warn("Unknown AI action type", zap.String("type", string(action.Type)))
	}
}
