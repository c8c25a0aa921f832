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

// Balance returns the derived balance of the signed-in user.
func (c *Controller) Balance(currency string) (decimal.Decimal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.User == nil {
		return decimal.Zero, ErrNotSignedIn
	}
	return c.state.User.Balance(currency), nil
}

// Summary computes the dashboard and audit figures.
func (c *Controller) Summary() models.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return state.Summarize(c.state, c.now())
}

// LedgerBalance is the balance held by the ledger mirror. The mirror only
// sees activity posted during sessions, so it matches the derived balance
// minus the opening balance.
func (c *Controller) LedgerBalance(ctx context.Context, currency string) (decimal.Decimal, error) {
	if c.mirror == nil {
		return decimal.Zero, fmt.Errorf("ledger mirror not configured")
	}
	c.mu.Lock()
	userId := c.userId()
	c.mu.Unlock()
	if userId == "" {
		return decimal.Zero, ErrNotSignedIn
	}

	bal, err := c.mirror.GetUserBalance(ctx, userId, currency)
	if err != nil {
		zap.L().Error("Ledger balance lookup failed",
			zap.String("user_id", userId),
			zap.String("currency", currency),
			zap.Error(err))
		return decimal.Zero, fmt.Errorf("ledger balance lookup failed: %w", err)
	}
	return bal, nil
}
