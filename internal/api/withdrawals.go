package api

import (
	"context"
	"errors"
	"fmt"

	"loopwise-go/internal/models"
	"loopwise-go/internal/state"
	"loopwise-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (c *Controller) failTransfer(req models.SendFundsRequest, message string) *models.TransferResult {
	c.mu.Lock()
	c.toast(message, models.ToastError)
	c.mu.Unlock()
	zap.L().Warn("Transfer rejected",
		zap.String("recipient", req.RecipientId),
		zap.String("amount", req.Amount.String()),
		zap.String("reason", message))
	return &models.TransferResult{Success: false, Amount: req.Amount, Error: message}
}

// SendFunds transfers USDC from the user's wallet to a recipient wallet.
// Business failures come back as an unsuccessful result with nothing
// recorded; the returned error is reserved for programming errors.
func (c *Controller) SendFunds(ctx context.Context, req models.SendFundsRequest) (*models.TransferResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return c.failTransfer(req, "Amount must be greater than zero."), nil
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.mu.Lock()
	user := c.state.User
	if user == nil || user.WalletId == "" {
		c.mu.Unlock()
		return c.failTransfer(req, "User wallet not configured."), nil
	}
	if user.Balance(models.DefaultCurrency).LessThan(req.Amount) {
		c.mu.Unlock()
		return c.failTransfer(req, "Insufficient funds."), nil
	}
	userId, walletId := user.Id, user.WalletId
	c.mu.Unlock()

	if c.rail == nil {
		return c.failTransfer(req, "Transfer failed: "+ErrNoTransferRail.Error()), nil
	}

	idempotencyKey := uuid.New().String()
	zap.L().Info("Sending funds",
		zap.String("user_id", userId),
		zap.String("rail", c.rail.Name()),
		zap.String("recipient", req.RecipientId),
		zap.String("amount", req.Amount.String()),
		zap.String("idempotency_key", idempotencyKey))

	transfer, err := c.rail.SendFunds(ctx, models.TransferRequest{
		IdempotencyKey:      idempotencyKey,
		SourceWalletId:      walletId,
		DestinationWalletId: req.RecipientId,
		Amount:              req.Amount,
		Currency:            models.DefaultCurrency,
	})
	if err != nil {
		zap.L().Error("Transfer failed", zap.String("idempotency_key", idempotencyKey), zap.Error(err))
		return c.failTransfer(req, "Transfer failed: "+err.Error()), nil
	}

	status := models.StatusPending
	if transfer.Status == models.TransferComplete {
		status = models.StatusCompleted
	}

	c.mu.Lock()
	tx := state.AddTransaction(c.state, models.TransactionDraft{
		Type:        models.TransactionTransfer,
		Status:      status,
		Amount:      req.Amount,
		Currency:    models.DefaultCurrency,
		Description: "Transfer to " + req.RecipientId,
		Category:    "Transfers",
		Notes:       req.Notes,
		TransferId:  transfer.Id,
	}, transfer.CreateDate, c.now())
	if state.PatchTxHash(c.state, tx.Id, transfer.TxHash) {
		tx.TxId = transfer.TxHash
	}
	failure := ""
	// A transfer the rail already reports as failed never moves funds.
	if transfer.Status == models.TransferFailed {
		if state.SettleTransaction(c.state, tx.Id, models.StatusFailed) {
			tx.Status = models.StatusFailed
		}
		failure = fmt.Sprintf("Transfer to %s failed.", req.RecipientId)
		c.notify(failure, models.NotificationTransfer)
		c.toast(failure, models.ToastError)
	} else {
		c.notify(fmt.Sprintf("Sent $%s to %s.", req.Amount.StringFixed(2), req.RecipientId), models.NotificationTransfer)
		c.toast("Funds sent successfully!", models.ToastSuccess)
	}
	newBalance := c.state.User.Balance(models.DefaultCurrency)
	c.mu.Unlock()

	rec := models.TransferRecord{
		Id:                  transfer.Id,
		TransactionId:       tx.Id,
		Rail:                c.rail.Name(),
		IdempotencyKey:      idempotencyKey,
		SourceWalletId:      walletId,
		DestinationWalletId: req.RecipientId,
		Recipient:           req.RecipientId,
		Amount:              req.Amount,
		Currency:            models.DefaultCurrency,
		Status:              transfer.Status,
		TxHash:              transfer.TxHash,
		CreatedAt:           tx.Timestamp,
	}
	if err := c.journal.RecordTransfer(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicateTransfer) {
			zap.L().Info("Transfer already journaled", zap.String("transfer_id", transfer.Id))
		} else {
			zap.L().Error("Failed to journal transfer",
				zap.String("transfer_id", transfer.Id),
				zap.Error(err))
		}
	}

	if tx.Status == models.StatusCompleted {
		c.mirrorTransactions(models.WithTransferContext(ctx, transferContext(rec)), userId, tx)
	}

	zap.L().Info("Transfer recorded",
		zap.String("user_id", userId),
		zap.String("transaction_id", tx.Id),
		zap.String("transfer_id", transfer.Id),
		zap.String("status", string(transfer.Status)),
		zap.String("new_balance", newBalance.String()))

	return &models.TransferResult{
		Success:       failure == "",
		Error:         failure,
		TransactionId: tx.Id,
		TransferId:    transfer.Id,
		Status:        transfer.Status,
		TxHash:        tx.TxId,
		Amount:        req.Amount,
		NewBalance:    newBalance,
	}, nil
}

// ReconcilePendingTransfers polls the rail for every journaled transfer
// that has not reached a final state and settles the matching transaction.
func (c *Controller) ReconcilePendingTransfers(ctx context.Context) (models.SettlementReport, error) {
	var report models.SettlementReport
	if c.rail == nil {
		return report, nil
	}

	pending, err := c.journal.GetPendingTransfers(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list pending transfers: %w", err)
	}

	for _, rec := range pending {
		if rec.Rail != c.rail.Name() {
			continue
		}
		transfer, err := c.rail.GetTransfer(ctx, rec.Id)
		if err != nil {
			if errors.Is(err, store.ErrNotSupported) {
				zap.L().Debug("Rail cannot be polled", zap.String("rail", rec.Rail))
				return report, nil
			}
			zap.L().Warn("Failed to poll transfer",
				zap.String("transfer_id", rec.Id),
				zap.Error(err))
			report.TransfersPending++
			continue
		}

		switch transfer.Status {
		case models.TransferComplete:
			c.settleTransfer(ctx, rec, transfer, models.StatusCompleted)
			report.TransfersCompleted++
		case models.TransferFailed:
			c.settleTransfer(ctx, rec, transfer, models.StatusFailed)
			report.TransfersFailed++
		default:
			report.TransfersPending++
		}
	}
	return report, nil
}

func (c *Controller) settleTransfer(ctx context.Context, rec models.TransferRecord, transfer *models.Transfer, status models.TransactionStatus) {
	if err := c.journal.UpdateTransferStatus(ctx, rec.Id, transfer.Status, transfer.TxHash); err != nil {
		zap.L().Error("Failed to update journaled transfer",
			zap.String("transfer_id", rec.Id),
			zap.Error(err))
		return
	}
	rec.Status = transfer.Status
	if transfer.TxHash != "" {
		rec.TxHash = transfer.TxHash
	}

	c.mu.Lock()
	settled := state.SettleTransaction(c.state, rec.TransactionId, status)
	state.PatchTxHash(c.state, rec.TransactionId, transfer.TxHash)
	var tx models.Transaction
	if found := state.FindTransaction(c.state, rec.TransactionId); found != nil {
		tx = *found
	}
	if settled {
		if status == models.StatusCompleted {
			c.notify(fmt.Sprintf("Transfer to %s completed.", rec.Recipient), models.NotificationTransfer)
		} else {
			c.notify(fmt.Sprintf("Transfer to %s failed.", rec.Recipient), models.NotificationTransfer)
			c.toast(fmt.Sprintf("Transfer to %s failed.", rec.Recipient), models.ToastError)
		}
	}
	userId := c.userId()
	c.mu.Unlock()

	zap.L().Info("Transfer settled",
		zap.String("transfer_id", rec.Id),
		zap.String("transaction_id", rec.TransactionId),
		zap.String("status", string(status)),
		zap.Bool("transaction_updated", settled))

	if settled && status == models.StatusCompleted {
		c.mirrorTransactions(models.WithTransferContext(ctx, transferContext(rec)), userId, tx)
	}
}

func transferContext(rec models.TransferRecord) *models.TransferContext {
	return &models.TransferContext{
		Rail:           rec.Rail,
		TransferId:     rec.Id,
		IdempotencyKey: rec.IdempotencyKey,
		Destination:    rec.DestinationWalletId,
		TxHash:         rec.TxHash,
	}
}
