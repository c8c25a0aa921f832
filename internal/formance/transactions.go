package formance

import (
	"context"
	"fmt"

	"loopwise-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Numscript templates. Metadata is set inside the script via set_tx_meta() so
// each Formance transaction is self-describing.
// ---------------------------------------------------------------------------

// numscriptCredit moves funds into a user account (deposits, refunds).
const numscriptCredit = `vars {
  asset $asset
  number $amount
  account $user_id
  account $counterparty
  string $event_type
  string $app_tx_id
  string $description
  string $category
  string $tx_hash
  string $amount_human
  string $rail
  string $transfer_id
}

send [$asset $amount] (
  source = @world
  destination = @users:$user_id
)

set_tx_meta("event_type", $event_type)
set_tx_meta("app_tx_id", $app_tx_id)
set_tx_meta("counterparty", $counterparty)
set_tx_meta("description", $description)
set_tx_meta("category", $category)
set_tx_meta("tx_hash", $tx_hash)
set_tx_meta("amount_human", $amount_human)
set_tx_meta("rail", $rail)
set_tx_meta("transfer_id", $transfer_id)
`

// numscriptDebit moves funds out of a user account (payments, transfers).
// The opening balance is never posted, so the user account may overdraw.
const numscriptDebit = `vars {
  asset $asset
  number $amount
  account $user_id
  account $counterparty
  string $event_type
  string $app_tx_id
  string $description
  string $category
  string $tx_hash
  string $amount_human
  string $rail
  string $transfer_id
}

send [$asset $amount] (
  source = @users:$user_id allowing unbounded overdraft
  destination = @$counterparty
)

set_tx_meta("event_type", $event_type)
set_tx_meta("app_tx_id", $app_tx_id)
set_tx_meta("description", $description)
set_tx_meta("category", $category)
set_tx_meta("tx_hash", $tx_hash)
set_tx_meta("amount_human", $amount_human)
set_tx_meta("rail", $rail)
set_tx_meta("transfer_id", $transfer_id)
`

// scriptFor picks the template and counterparty account for a transaction
// type. ok is false for types that do not move funds.
func scriptFor(t models.TransactionType) (script, counterparty string, ok bool) {
	switch t {
	case models.TransactionDeposit:
		return numscriptCredit, "deposits", true
	case models.TransactionRefund:
		return numscriptCredit, "refunds", true
	case models.TransactionPayment:
		return numscriptDebit, "payments", true
	case models.TransactionTransfer:
		return numscriptDebit, "transfers:outgoing", true
	}
	return "", "", false
}

// RecordTransaction posts a completed transaction once, keyed by its id.
// Re-posting the same id is a no-op. Pending, failed and zero-amount
// transactions are skipped.
func (s *Service) RecordTransaction(ctx context.Context, userId string, tx models.Transaction) error {
	if tx.Status != models.StatusCompleted || tx.Amount.IsZero() {
		zap.L().Debug("Skipping transaction for ledger mirror",
			zap.String("transaction_id", tx.Id),
			zap.String("status", string(tx.Status)),
			zap.String("amount", tx.Amount.String()))
		return nil
	}
	script, counterparty, ok := scriptFor(tx.Type)
	if !ok {
		return fmt.Errorf("unsupported transaction type %q", tx.Type)
	}

	currency := tx.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	smallAmt := tx.Amount.Abs().Shift(int32(precisionFor(currency))).BigInt().String()

	vars := map[string]string{
		"asset":        formanceAsset(currency),
		"amount":       smallAmt,
		"user_id":      userId,
		"counterparty": counterparty,
		"event_type":   string(tx.Type),
		"app_tx_id":    tx.Id,
		"description":  tx.Description,
		"category":     tx.Category,
		"tx_hash":      tx.TxId,
		"amount_human": tx.Amount.String(),
		"rail":         "",
		"transfer_id":  tx.TransferId,
	}
	timestamp := tx.Timestamp
	if tc := models.GetTransferContext(ctx); tc != nil {
		vars["rail"] = tc.Rail
		if tc.TransferId != "" {
			vars["transfer_id"] = tc.TransferId
		}
		if tc.TxHash != "" {
			vars["tx_hash"] = tc.TxHash
		}
		if !tc.SettledAt.IsZero() {
			timestamp = tc.SettledAt
		}
	}

	postTx := shared.V2PostTransaction{
		Reference: strPtr(tx.Id),
		Script: &shared.V2PostTransactionScript{
			Plain: script,
			Vars:  vars,
		},
	}
	if !timestamp.IsZero() {
		postTx.Timestamp = &timestamp
	}

	_, err := s.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            s.ledger,
		V2PostTransaction: postTx,
	})
	if err != nil {
		if isConflictError(err) {
			zap.L().Debug("Transaction already mirrored", zap.String("transaction_id", tx.Id))
			return nil
		}
		return fmt.Errorf("error mirroring transaction %s: %w", tx.Id, err)
	}

	zap.L().Info("Transaction mirrored in Formance",
		zap.String("user_id", userId),
		zap.String("transaction_id", tx.Id),
		zap.String("type", string(tx.Type)),
		zap.String("amount", tx.Amount.String()))
	return nil
}
