package api

import (
	"context"
	"errors"
	"fmt"
	"io"

	"loopwise-go/internal/audit"
	"loopwise-go/internal/models"
	"loopwise-go/internal/state"

	"go.uber.org/zap"
)

// ExportCSV writes the full history as CSV, newest first.
func (c *Controller) ExportCSV(w io.Writer) error {
	c.mu.Lock()
	txs := append([]models.Transaction(nil), c.state.Transactions...)
	if len(txs) == 0 {
		c.toast(audit.UserMessage(audit.ErrNothingToExport), models.ToastError)
		c.mu.Unlock()
		return audit.ErrNothingToExport
	}
	c.toast("Exporting transactions...", models.ToastInfo)
	c.mu.Unlock()

	if err := audit.Export(w, txs); err != nil {
		zap.L().Error("Transaction export failed", zap.Error(err))
		return err
	}
	zap.L().Info("Transactions exported", zap.Int("count", len(txs)))
	return nil
}

// ImportCSV appends the transactions of a CSV file. The same file is never
// imported twice in a row; its hash is stored only after a successful import.
func (c *Controller) ImportCSV(ctx context.Context, data []byte) (*models.ImportResult, error) {
	c.mu.Lock()
	signedIn := c.state.User != nil
	c.mu.Unlock()
	if !signedIn {
		return nil, ErrNotSignedIn
	}

	hash := audit.Hash(data)
	last, err := c.prefs.LastImportHash(ctx)
	if err != nil {
		// An unreadable hash only disables duplicate detection.
		zap.L().Warn("Could not read last import hash", zap.Error(err))
	}
	if last != "" && last == hash {
		return c.failImport(hash, audit.ErrDuplicateFile), nil
	}

	c.mu.Lock()
	c.toast("New file detected, importing transactions...", models.ToastInfo)
	c.mu.Unlock()

	drafts, skipped, err := audit.Parse(data)
	if err != nil {
		return c.failImport(hash, err), nil
	}

	c.mu.Lock()
	added := state.ImportTransactions(c.state, drafts, c.now())
	c.notify(fmt.Sprintf("Imported %d transactions.", len(added)), models.NotificationPayment)
	userId := c.userId()
	newBalance := c.state.User.Balance(models.DefaultCurrency)
	c.mu.Unlock()

	if err := c.prefs.SetLastImportHash(ctx, hash); err != nil {
		zap.L().Error("Failed to store import hash", zap.Error(err))
	}

	zap.L().Info("Transactions imported",
		zap.Int("imported", len(added)),
		zap.Int("skipped", skipped),
		zap.String("file_hash", hash),
		zap.String("new_balance", newBalance.String()))

	c.mirrorTransactions(ctx, userId, added...)
	return &models.ImportResult{
		Success:  true,
		Imported: len(added),
		Skipped:  skipped,
		FileHash: hash,
	}, nil
}

func (c *Controller) failImport(hash string, err error) *models.ImportResult {
	msg := audit.UserMessage(err)
	c.mu.Lock()
	c.toast(msg, models.ToastError)
	c.mu.Unlock()

	if errors.Is(err, audit.ErrDuplicateFile) {
		zap.L().Info("Duplicate import rejected", zap.String("file_hash", hash))
	} else {
		zap.L().Warn("Import failed", zap.String("file_hash", hash), zap.Error(err))
	}
	return &models.ImportResult{Success: false, FileHash: hash, Error: msg}
}
