package api

import (
	"context"
	"errors"
	"fmt"

	"loopwise-go/internal/models"
	"loopwise-go/internal/state"

	"go.uber.org/zap"
)

var ErrInvalidStatus = errors.New("invalid subscription status")

func validStatus(s models.SubscriptionStatus) bool {
	switch s {
	case models.SubscriptionActive, models.SubscriptionPaused, models.SubscriptionCancelled:
		return true
	}
	return false
}

// ChangeSubscriptionStatus is the single status path shared by the UI and
// the assistant.
func (c *Controller) ChangeSubscriptionStatus(ctx context.Context, id string, status models.SubscriptionStatus) (*state.StatusChange, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	c.mu.Lock()
	change, err := c.changeStatusLocked(id, status)
	userId := c.userId()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if change.Reactivation != nil {
		c.mirrorTransactions(ctx, userId, *change.Reactivation)
	}
	return change, nil
}

func (c *Controller) changeStatusLocked(id string, status models.SubscriptionStatus) (*state.StatusChange, error) {
	change, err := state.ChangeStatus(c.state, id, status, c.now())
	if err != nil {
		zap.L().Warn("Status change for unknown subscription ignored",
			zap.String("subscription_id", id),
			zap.String("status", string(status)))
		return nil, err
	}
	if change.Message != "" {
		c.notify(change.Message, models.NotificationSubscription)
	}
	zap.L().Info("Subscription status changed",
		zap.String("subscription_id", id),
		zap.String("from", string(change.Previous)),
		zap.String("to", string(status)))
	return change, nil
}

// ChangePlan moves a subscription to another of its plans. A plan the
// subscription does not offer is rejected without any state change.
func (c *Controller) ChangePlan(ctx context.Context, id, planId string) (*state.PlanChange, error) {
	c.mu.Lock()
	change, err := state.ChangePlan(c.state, id, planId, c.now())
	if err != nil {
		if errors.Is(err, state.ErrUnknownPlan) {
			c.toast("That plan is not available for this subscription.", models.ToastError)
		}
		c.mu.Unlock()
		zap.L().Warn("Plan change rejected",
			zap.String("subscription_id", id),
			zap.String("plan_id", planId),
			zap.Error(err))
		return nil, err
	}
	if change.Record != nil {
		c.notify(fmt.Sprintf("Plan for '%s' changed to %s.", change.Subscription.Name, change.NewPlan.Name),
			models.NotificationSubscription)
	}
	c.toast("Subscription plan updated!", models.ToastSuccess)
	userId := c.userId()
	c.mu.Unlock()

	zap.L().Info("Subscription plan changed",
		zap.String("subscription_id", id),
		zap.String("plan_id", planId))
	if change.Record != nil {
		c.mirrorTransactions(ctx, userId, *change.Record)
	}
	return change, nil
}

// ApplySuggestion resolves a suggestion and performs its effect.
func (c *Controller) ApplySuggestion(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sug *models.AiSuggestion
	for i := range c.state.Suggestions {
		if c.state.Suggestions[i].Id == id {
			s := c.state.Suggestions[i]
			sug = &s
			break
		}
	}
	if sug == nil {
		return fmt.Errorf("%w: %s", ErrSuggestionNotFound, id)
	}

	if state.ApplySuggestion(c.state, *sug) {
		c.notify("Cancelled subscription based on AI suggestion.", models.NotificationSuggestion)
	}
	c.toast("AI suggestion applied!", models.ToastSuccess)
	zap.L().Info("AI suggestion applied",
		zap.String("suggestion_id", id),
		zap.String("type", string(sug.Type)),
		zap.String("subscription_id", sug.SubscriptionId))
	return nil
}

// DismissSuggestion drops a suggestion for good: a refresh will not bring it back.
func (c *Controller) DismissSuggestion(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := state.ResolveSuggestion(c.state, id); !ok {
		return fmt.Errorf("%w: %s", ErrSuggestionNotFound, id)
	}
	c.toast("Suggestion dismissed.", models.ToastInfo)
	return nil
}

func (c *Controller) RefreshSuggestions(ctx context.Context) error {
	suggestions, err := c.backend.GetSuggestions(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		zap.L().Error("Error fetching AI suggestions", zap.Error(err))
		c.state.Suggestions = nil
		c.toast("Could not fetch AI suggestions.", models.ToastError)
		return fmt.Errorf("failed to refresh suggestions: %w", err)
	}
	state.SetSuggestions(c.state, suggestions)
	return nil
}
