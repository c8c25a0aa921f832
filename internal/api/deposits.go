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

package api

import (
	"context"
	"fmt"

	"loopwise-go/internal/models"
	"loopwise-go/internal/state"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AddFunds records a completed deposit.
func (c *Controller) AddFunds(ctx context.Context, amount decimal.Decimal) (*models.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	c.mu.Lock()
	if c.state.User == nil {
		c.mu.Unlock()
		return nil, ErrNotSignedIn
	}
	tx := state.AddTransaction(c.state, models.TransactionDraft{
		Type:        models.TransactionDeposit,
		Status:      models.StatusCompleted,
		Amount:      amount,
		Currency:    models.DefaultCurrency,
		Description: "User Deposit",
		Category:    "Income",
	}, c.now(), c.now())
	c.notify(fmt.Sprintf("Added $%s to your balance.", amount.StringFixed(2)), models.NotificationPayment)
	c.toast("Funds added successfully!", models.ToastSuccess)
	userId := c.userId()
	newBalance := c.state.User.Balance(models.DefaultCurrency)
	c.mu.Unlock()

	zap.L().Info("Deposit recorded",
		zap.String("user_id", userId),
		zap.String("transaction_id", tx.Id),
		zap.String("amount", amount.String()),
		zap.String("new_balance", newBalance.String()))

	c.mirrorTransactions(ctx, userId, tx)
	return &tx, nil
}

// SchedulePayment records a pending payment dated at the payment date. It
// completes once the date has passed (see SettleDuePayments).
func (c *Controller) SchedulePayment(details models.ScheduledPayment) (*models.Transaction, error) {
	if details.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.User == nil {
		return nil, ErrNotSignedIn
	}
	tx := state.AddTransaction(c.state, models.TransactionDraft{
		Type:        models.TransactionPayment,
		Status:      models.StatusPending,
		Amount:      details.Amount,
		Currency:    models.DefaultCurrency,
		Description: details.SubscriptionName,
		Category:    "General",
		Notes:       details.Notes,
	}, details.PaymentDate, c.now())
	c.notify(fmt.Sprintf("Scheduled payment for %s.", details.SubscriptionName), models.NotificationPayment)
	c.toast("Payment scheduled!", models.ToastSuccess)

	zap.L().Info("Payment scheduled",
		zap.String("transaction_id", tx.Id),
		zap.String("description", details.SubscriptionName),
		zap.String("amount", details.Amount.String()),
		zap.Time("payment_date", tx.Timestamp))
	return &tx, nil
}

// SettleDuePayments completes scheduled payments whose date has passed and
// returns how many were settled.
func (c *Controller) SettleDuePayments(ctx context.Context) int {
	c.mu.Lock()
	due := state.DuePayments(c.state, c.now())
	settled := make([]models.Transaction, 0, len(due))
	for _, tx := range due {
		if !state.SettleTransaction(c.state, tx.Id, models.StatusCompleted) {
			continue
		}
		tx.Status = models.StatusCompleted
		settled = append(settled, tx)
		c.notify(fmt.Sprintf("Scheduled payment for %s completed.", tx.Description), models.NotificationPayment)
		zap.L().Info("Scheduled payment settled",
			zap.String("transaction_id", tx.Id),
			zap.String("amount", tx.Amount.String()))
	}
	userId := c.userId()
	c.mu.Unlock()

	c.mirrorTransactions(ctx, userId, settled...)
	return len(settled)
}

// SetTransactionNotes replaces the notes of a transaction.
func (c *Controller) SetTransactionNotes(id, notes string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !state.SetNotes(c.state, id, notes) {
		return fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	return nil
}
