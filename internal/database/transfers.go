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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"loopwise-go/internal/models"
	"loopwise-go/internal/store"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordTransfer journals a transfer returned by a rail. The idempotency key
// is unique, so replaying the same request is reported as a duplicate.
func (s *Service) RecordTransfer(ctx context.Context, rec models.TransferRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	_, err := s.db.ExecContext(ctx, queryInsertTransfer,
		rec.Id, rec.TransactionId, rec.Rail, rec.IdempotencyKey, rec.SourceWalletId,
		rec.DestinationWalletId, rec.Recipient, rec.Amount.String(), rec.Currency,
		string(rec.Status), rec.TxHash, rec.CreatedAt, now)
	if err != nil {
		if isUniqueViolation(err) {
			zap.L().Warn("Duplicate transfer detected",
				zap.String("transfer_id", rec.Id),
				zap.String("idempotency_key", rec.IdempotencyKey))
			return fmt.Errorf("%w: idempotency key %s already recorded", store.ErrDuplicateTransfer, rec.IdempotencyKey)
		}
		return fmt.Errorf("failed to insert transfer: %w", err)
	}

	zap.L().Info("Transfer journaled",
		zap.String("transfer_id", rec.Id),
		zap.String("transaction_id", rec.TransactionId),
		zap.String("rail", rec.Rail),
		zap.String("amount", rec.Amount.String()),
		zap.String("status", string(rec.Status)))
	return nil
}

func (s *Service) UpdateTransferStatus(ctx context.Context, id string, status models.TransferStatus, txHash string) error {
	result, err := s.db.ExecContext(ctx, queryUpdateTransferStatus, string(status), txHash, txHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update transfer %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Service) GetTransfer(ctx context.Context, id string) (*models.TransferRecord, error) {
	rec, err := scanTransfer(s.db.QueryRowContext(ctx, queryGetTransfer, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer %s: %w", id, err)
	}
	return rec, nil
}

func (s *Service) GetPendingTransfers(ctx context.Context) ([]models.TransferRecord, error) {
	rows, err := s.db.QueryContext(ctx, queryGetPendingTransfers)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending transfers: %w", err)
	}
	defer rows.Close()

	var pending []models.TransferRecord
	for rows.Next() {
		rec, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		pending = append(pending, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfers: %w", err)
	}
	return pending, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (*models.TransferRecord, error) {
	var rec models.TransferRecord
	var amountStr, status string
	err := row.Scan(&rec.Id, &rec.TransactionId, &rec.Rail, &rec.IdempotencyKey, &rec.SourceWalletId,
		&rec.DestinationWalletId, &rec.Recipient, &amountStr, &rec.Currency, &status, &rec.TxHash,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	rec.Status = models.TransferStatus(status)
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
