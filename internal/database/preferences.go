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

	"loopwise-go/internal/store"

	"go.uber.org/zap"
)

func (s *Service) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, queryGetPreference, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, nil
}

func (s *Service) PutValue(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, queryUpsertPreference, s.namespace, key, value); err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	zap.L().Debug("Preference stored",
		zap.String("namespace", s.namespace),
		zap.String("key", key))
	return nil
}

func (s *Service) DeleteValue(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, queryDeletePreference, s.namespace, key); err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}
