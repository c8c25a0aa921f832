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

package listener

import (
	"context"
	"errors"
	"time"

	"loopwise-go/internal/models"

	"go.uber.org/zap"
)

// Start runs a first pass immediately and then one per polling interval.
func (l *SettlementListener) Start(ctx context.Context) error {
	l.mutex.Lock()
	if l.started {
		l.mutex.Unlock()
		return errors.New("settlement listener already started")
	}
	l.started = true
	l.mutex.Unlock()

	zap.L().Info("Starting settlement listener", zap.Duration("polling_interval", l.pollingInterval))
	go l.pollLoop(ctx)
	return nil
}

// Stop gracefully stops the settlement listener. It is safe to call more
// than once.
func (l *SettlementListener) Stop() {
	l.stopOnce.Do(func() {
		zap.L().Info("Stopping settlement listener")
		close(l.stopChan)
		l.mutex.Lock()
		started := l.started
		l.mutex.Unlock()
		if started {
			<-l.doneChan
		}
		zap.L().Info("Settlement listener stopped")
	})
}

// pollLoop runs the main polling loop
func (l *SettlementListener) pollLoop(ctx context.Context) {
	defer close(l.doneChan)

	ticker := time.NewTicker(l.pollingInterval)
	defer ticker.Stop()

	l.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			l.RunOnce(ctx)
		case <-l.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce performs a single settlement pass. Errors are logged, never returned.
func (l *SettlementListener) RunOnce(ctx context.Context) models.SettlementReport {
	report := models.SettlementReport{
		DuePaymentsSettled: l.settler.SettleDuePayments(ctx),
	}

	transfers, err := l.settler.ReconcilePendingTransfers(ctx)
	if err != nil {
		zap.L().Error("Failed to reconcile pending transfers", zap.Error(err))
	}
	report.TransfersCompleted = transfers.TransfersCompleted
	report.TransfersFailed = transfers.TransfersFailed
	report.TransfersPending = transfers.TransfersPending

	l.mutex.Lock()
	l.lastReport = report
	l.lastRun = time.Now()
	l.runs++
	l.mutex.Unlock()

	if report.DuePaymentsSettled+report.TransfersCompleted+report.TransfersFailed > 0 {
		zap.L().Info("Settlement pass completed",
			zap.Int("due_payments_settled", report.DuePaymentsSettled),
			zap.Int("transfers_completed", report.TransfersCompleted),
			zap.Int("transfers_failed", report.TransfersFailed),
			zap.Int("transfers_pending", report.TransfersPending))
	} else {
		zap.L().Debug("Settlement pass found nothing to settle",
			zap.Int("transfers_pending", report.TransfersPending))
	}
	return report
}
