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

// TransferStatus is the rail-side state of an outgoing transfer
type TransferStatus string

const (
	TransferPending  TransferStatus = "PENDING"
	TransferRunning  TransferStatus = "RUNNING"
	TransferComplete TransferStatus = "COMPLETE"
	TransferFailed   TransferStatus = "FAILED"
)

// TransferRequest is what the controller asks a rail to move
type TransferRequest struct {
	IdempotencyKey      string
	SourceWalletId      string
	DestinationWalletId string
	Amount              decimal.Decimal
	Currency            string
}

// Transfer is a rail's view of a transfer
type Transfer struct {
	Id                  string          `json:"id"`
	SourceWalletId      string          `json:"sourceWalletId"`
	DestinationWalletId string          `json:"destinationWalletId"`
	Amount              decimal.Decimal `json:"amount"`
	Currency            string          `json:"currency"`
	TxHash              string          `json:"txHash"`
	Status              TransferStatus  `json:"status"`
	CreateDate          time.Time       `json:"createDate"`
}

// TransferResult represents the result of a send-funds request
type TransferResult struct {
	Success       bool            `json:"success"`
	TransactionId string          `json:"transactionId,omitempty"`
	TransferId    string          `json:"transferId,omitempty"`
	Status        TransferStatus  `json:"status,omitempty"`
	TxHash        string          `json:"txHash,omitempty"`
	Amount        decimal.Decimal `json:"amount,omitempty"`
	NewBalance    decimal.Decimal `json:"newBalance,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// ImportResult represents the result of a CSV import
type ImportResult struct {
	Success  bool   `json:"success"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	FileHash string `json:"fileHash,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SpendingPoint is one month of completed outgoing spend
type SpendingPoint struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// Summary holds the figures shown on the dashboard and audit screens
type Summary struct {
	ActiveSubscriptions int                        `json:"activeSubscriptions"`
	TotalMonthlyCost    decimal.Decimal            `json:"totalMonthlyCost"`
	UpcomingPayment     *Subscription              `json:"upcomingPayment,omitempty"`
	CategorySpending    map[string]decimal.Decimal `json:"categorySpending"`
	TotalIncome         decimal.Decimal            `json:"totalIncome"`
	TotalExpense        decimal.Decimal            `json:"totalExpense"`
	SpendingTrend       []SpendingPoint            `json:"spendingTrend"`
}

// ProfileUpdate carries the editable profile fields. Profile setup leaves
// empty fields unchanged. A settings update replaces all of them.
type ProfileUpdate struct {
	DisplayName string `json:"displayName" validate:"omitempty,max=64"`
	Username    string `json:"username" validate:"omitempty,min=3,max=32"`
	Bio         string `json:"bio" validate:"omitempty,max=280"`
}

// ScheduledPayment is a future payment entered by the user
type ScheduledPayment struct {
	SubscriptionName string          `json:"subscriptionName" validate:"required,max=128"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentDate      time.Time       `json:"paymentDate" validate:"required"`
	Notes            string          `json:"notes" validate:"max=500"`
}

// SendFundsRequest asks for a wallet-to-wallet transfer
type SendFundsRequest struct {
	RecipientId string          `json:"recipientId" validate:"required,max=128"`
	Amount      decimal.Decimal `json:"amount"`
	Notes       string          `json:"notes" validate:"max=500"`
}
