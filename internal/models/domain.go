/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger row. Deposits and refunds credit the
// balance, payments and transfers debit it.
type TransactionType string

const (
	TransactionPayment  TransactionType = "payment"
	TransactionRefund   TransactionType = "refund"
	TransactionTransfer TransactionType = "transfer"
	TransactionDeposit  TransactionType = "deposit"
)

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusPending   TransactionStatus = "pending"
	StatusFailed    TransactionStatus = "failed"
)

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

const DefaultCurrency = "USDC"

// User is the signed-in account. Balances is a cache derived from the
// transaction history and must never be adjusted on its own.
type User struct {
	Id          string                     `json:"id"`
	Address     string                     `json:"address"`
	Username    string                     `json:"username"`
	DisplayName string                     `json:"displayName"`
	Email       string                     `json:"email"`
	Phone       string                     `json:"phone"`
	Bio         string                     `json:"bio"`
	AvatarUrl   string                     `json:"avatarUrl,omitempty"`
	Balances    map[string]decimal.Decimal `json:"balances"`
	WalletId    string                     `json:"walletId,omitempty"`
}

// Balance returns the cached balance for a currency, zero when absent.
func (u *User) Balance(currency string) decimal.Decimal {
	if u == nil || u.Balances == nil {
		return decimal.Zero
	}
	return u.Balances[currency]
}

type Plan struct {
	Id          string          `json:"id"`
	Name        string          `json:"name"`
	MonthlyCost decimal.Decimal `json:"monthlyCost"`
	Features    []string        `json:"features,omitempty"`
}

// Subscription is a recurring service. A zero LastPayment or NextPayment
// means the date is not applicable.
type Subscription struct {
	Id             string             `json:"id"`
	Name           string             `json:"name"`
	Provider       string             `json:"provider"`
	Category       string             `json:"category"`
	Status         SubscriptionStatus `json:"status"`
	CurrentPlanId  string             `json:"currentPlanId"`
	AvailablePlans []Plan             `json:"availablePlans"`
	Usage          float64            `json:"usageScore"`
	LastPayment    time.Time          `json:"lastPayment"`
	NextPayment    time.Time          `json:"nextPayment"`
	ImageUrl       string             `json:"imageUrl,omitempty"`
}

// CurrentPlan returns the plan referenced by CurrentPlanId, or nil.
func (s Subscription) CurrentPlan() *Plan {
	return s.Plan(s.CurrentPlanId)
}

// Plan looks up one of the subscription's own plans by id.
func (s Subscription) Plan(planId string) *Plan {
	for i := range s.AvailablePlans {
		if s.AvailablePlans[i].Id == planId {
			return &s.AvailablePlans[i]
		}
	}
	return nil
}

// MonthlyCost is the cost of the current plan, zero when the plan is unknown.
func (s Subscription) MonthlyCost() decimal.Decimal {
	if p := s.CurrentPlan(); p != nil {
		return p.MonthlyCost
	}
	return decimal.Zero
}

// Transaction is immutable once recorded, apart from Notes, TxId and the
// settlement of a pending row.
type Transaction struct {
	Id          string            `json:"id"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Timestamp   time.Time         `json:"timestamp"`
	TxId        string            `json:"txId"`
	Category    string            `json:"category"`
	Notes       string            `json:"notes,omitempty"`
	TransferId  string            `json:"transferId,omitempty"`
}

// TransactionDraft carries the caller-supplied fields of a new transaction.
type TransactionDraft struct {
	Type        TransactionType   `json:"type" validate:"required,oneof=payment refund transfer deposit"`
	Status      TransactionStatus `json:"status" validate:"required,oneof=completed pending failed"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description" validate:"required"`
	Category    string            `json:"category"`
	Notes       string            `json:"notes,omitempty"`
	TransferId  string            `json:"transferId,omitempty"`
	// Timestamp is only honoured by bulk imports; zero means "now".
	Timestamp time.Time `json:"timestamp,omitempty"`
}

type SuggestionType string

const (
	SuggestionCancelLowUsage SuggestionType = "cancel_low_usage"
	SuggestionMerge          SuggestionType = "merge_subscriptions"
	SuggestionChangePlan     SuggestionType = "change_plan"
)

// AiSuggestion is advisory and never persisted.
type AiSuggestion struct {
	Id               string          `json:"id"`
	Type             SuggestionType  `json:"type"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Confidence       float64         `json:"confidence"`
	EstimatedSavings decimal.Decimal `json:"estimatedSavings"`
	SubscriptionId   string          `json:"subscriptionId,omitempty"`
}
