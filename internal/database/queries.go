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

const schema = `
	-- Per-namespace settings (preferences, notification toggles, import hash)
	CREATE TABLE IF NOT EXISTS preferences (
		namespace TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (namespace, key)
	);

	-- Outgoing transfers sent through a payment rail
	CREATE TABLE IF NOT EXISTS transfers (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		rail TEXT NOT NULL,
		idempotency_key TEXT NOT NULL UNIQUE,
		source_wallet_id TEXT NOT NULL,
		destination_wallet_id TEXT NOT NULL,
		recipient TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		tx_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transfers_status ON transfers(status);
	CREATE INDEX IF NOT EXISTS idx_transfers_created_at ON transfers(created_at);
`

const (
	// Preference queries
	queryGetPreference = `
		SELECT value FROM preferences
		WHERE namespace = ? AND key = ?`

	queryUpsertPreference = `
		INSERT INTO preferences (namespace, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP`

	queryDeletePreference = `
		DELETE FROM preferences WHERE namespace = ? AND key = ?`

	// Transfer queries
	queryInsertTransfer = `
		INSERT INTO transfers (
			id, transaction_id, rail, idempotency_key, source_wallet_id,
			destination_wallet_id, recipient, amount, currency, status, tx_hash,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryUpdateTransferStatus = `
		UPDATE transfers
		SET status = ?, tx_hash = CASE WHEN ? = '' THEN tx_hash ELSE ? END, updated_at = ?
		WHERE id = ?`

	queryGetTransfer = `
		SELECT id, transaction_id, rail, idempotency_key, source_wallet_id,
			destination_wallet_id, recipient, amount, currency, status, tx_hash,
			created_at, updated_at
		FROM transfers
		WHERE id = ?`

	queryGetPendingTransfers = `
		SELECT id, transaction_id, rail, idempotency_key, source_wallet_id,
			destination_wallet_id, recipient, amount, currency, status, tx_hash,
			created_at, updated_at
		FROM transfers
		WHERE status NOT IN ('COMPLETE', 'FAILED')
		ORDER BY created_at ASC`
)
