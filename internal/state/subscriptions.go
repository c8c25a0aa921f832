package state

import (
	"errors"
	"fmt"
	"time"

	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrUnknownPlan          = errors.New("plan not offered by subscription")
)

// StatusChange describes what ChangeStatus did.
type StatusChange struct {
	Subscription models.Subscription
	Previous     models.SubscriptionStatus
	// Message is the notification text, empty when nothing user-visible changed.
	Message string
	// Reactivation is the zero-amount payment recorded when a cancelled
	// subscription comes back.
	Reactivation *models.Transaction
}

// FindSubscription returns a pointer into the list, or nil.
func FindSubscription(s *models.AppState, id string) *models.Subscription {
	for i := range s.Subscriptions {
		if s.Subscriptions[i].Id == id {
			return &s.Subscriptions[i]
		}
	}
	return nil
}

// ChangeStatus sets a subscription's status. Unknown ids are a no-op that
// returns ErrSubscriptionNotFound.
func ChangeStatus(s *models.AppState, id string, status models.SubscriptionStatus, now time.Time) (*StatusChange, error) {
	sub := FindSubscription(s, id)
	if sub == nil {
		return nil, fmt.Errorf("%w: %s", ErrSubscriptionNotFound, id)
	}

	prev := sub.Status
	change := &StatusChange{Previous: prev}
	sub.Status = status
	switch {
	case status == models.SubscriptionCancelled:
		change.Message = fmt.Sprintf("Cancelled '%s'.", sub.Name)
	case status == models.SubscriptionPaused:
		change.Message = fmt.Sprintf("Paused '%s'.", sub.Name)
	case status == models.SubscriptionActive && prev == models.SubscriptionPaused:
		change.Message = fmt.Sprintf("Resumed '%s'.", sub.Name)
	case status == models.SubscriptionActive && prev == models.SubscriptionCancelled:
		change.Message = fmt.Sprintf("Reactivated '%s'.", sub.Name)
		sub.NextPayment = now.AddDate(0, 1, 0)
		tx := AddTransaction(s, models.TransactionDraft{
			Type:        models.TransactionPayment,
			Status:      models.StatusCompleted,
			Amount:      decimal.Zero,
			Currency:    models.DefaultCurrency,
			Description: "Reactivated " + sub.Name,
			Category:    sub.Category,
		}, time.Time{}, now)
		change.Reactivation = &tx
	}

	change.Subscription = *sub
	return change, nil
}

// PlanChange describes what ChangePlan did.
type PlanChange struct {
	Subscription models.Subscription
	OldPlan      *models.Plan
	NewPlan      models.Plan
	// Record is the zero-amount payment marking the change; nil when the
	// previous plan could not be resolved.
	Record *models.Transaction
}

// ChangePlan switches a subscription to one of its own plans.
func ChangePlan(s *models.AppState, id, planId string, now time.Time) (*PlanChange, error) {
	sub := FindSubscription(s, id)
	if sub == nil {
		return nil, fmt.Errorf("%w: %s", ErrSubscriptionNotFound, id)
	}
	newPlan := sub.Plan(planId)
	if newPlan == nil {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownPlan, planId, sub.Name)
	}

	change := &PlanChange{NewPlan: *newPlan}
	if old := sub.CurrentPlan(); old != nil {
		oldCopy := *old
		change.OldPlan = &oldCopy
	}
	sub.CurrentPlanId = planId
	name, category := sub.Name, sub.Category

	if change.OldPlan != nil {
		tx := AddTransaction(s, models.TransactionDraft{
			Type:        models.TransactionPayment,
			Status:      models.StatusCompleted,
			Amount:      decimal.Zero,
			Currency:    models.DefaultCurrency,
			Description: fmt.Sprintf("Changed %s to %s plan", name, newPlan.Name),
			Category:    category,
		}, time.Time{}, now)
		change.Record = &tx
	}

	change.Subscription = *FindSubscription(s, id)
	return change, nil
}
