package store

import (
	"context"
	"errors"

	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound          = errors.New("not found")
	ErrNotSupported      = errors.New("operation not supported by this backend")
	ErrDuplicateTransfer = errors.New("duplicate transfer")
)

// Preference keys used by the controller.
const (
	KeyPreferences          = "preferences"
	KeyNotificationSettings = "notificationSettings"
	KeyLastImportedFileHash = "lastImportedFileHash"
)

// PreferenceStore is a small string key/value store for per-user settings
// (SQLite, Redis, memory).
type PreferenceStore interface {
	// GetValue returns ErrNotFound when the key has never been written.
	GetValue(ctx context.Context, key string) (string, error)
	PutValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error
	Close()
}

// TransferJournal records outgoing transfers so pending ones can be
// reconciled against the rail later.
type TransferJournal interface {
	// RecordTransfer returns ErrDuplicateTransfer when the idempotency key
	// was already journaled.
	RecordTransfer(ctx context.Context, rec models.TransferRecord) error
	UpdateTransferStatus(ctx context.Context, id string, status models.TransferStatus, txHash string) error
	GetTransfer(ctx context.Context, id string) (*models.TransferRecord, error)
	GetPendingTransfers(ctx context.Context) ([]models.TransferRecord, error)
	Close()
}

// TransferRail moves funds between wallets on an external payments API.
type TransferRail interface {
	Name() string
	SendFunds(ctx context.Context, req models.TransferRequest) (*models.Transfer, error)
	// GetTransfer returns ErrNotSupported when the rail cannot be polled.
	GetTransfer(ctx context.Context, id string) (*models.Transfer, error)
}

// LedgerMirror keeps an external double-entry copy of completed transactions.
type LedgerMirror interface {
	RecordTransaction(ctx context.Context, userId string, tx models.Transaction) error
	GetUserBalance(ctx context.Context, userId, currency string) (decimal.Decimal, error)
	Close()
}
