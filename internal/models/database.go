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

// TransferRecord is a journaled outgoing transfer
type TransferRecord struct {
	Id                  string          `db:"id"`
	TransactionId       string          `db:"transaction_id"`
	Rail                string          `db:"rail"`
	IdempotencyKey      string          `db:"idempotency_key"`
	SourceWalletId      string          `db:"source_wallet_id"`
	DestinationWalletId string          `db:"destination_wallet_id"`
	Recipient           string          `db:"recipient"`
	Amount              decimal.Decimal `db:"amount"`
	Currency            string          `db:"currency"`
	Status              TransferStatus  `db:"status"`
	TxHash              string          `db:"tx_hash"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

// Settled reports whether the rail has reached a final state
func (r TransferRecord) Settled() bool {
	return r.Status == TransferComplete || r.Status == TransferFailed
}
