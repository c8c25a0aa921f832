package models

import (
	"context"
	"time"
)

type transferContextKey struct{}

// TransferContext carries rail details of a transfer through context so the
// ledger mirror can record them as metadata without widening its interface.
type TransferContext struct {
	Rail           string // "circle" or "prime"
	TransferId     string
	IdempotencyKey string
	Destination    string
	TxHash         string
	SettledAt      time.Time // effective time for the ledger entry
}

// WithTransferContext attaches transfer data to a context.
func WithTransferContext(ctx context.Context, tc *TransferContext) context.Context {
	return context.WithValue(ctx, transferContextKey{}, tc)
}

// GetTransferContext retrieves transfer data from context, or nil if absent.
func GetTransferContext(ctx context.Context) *TransferContext {
	tc, _ := ctx.Value(transferContextKey{}).(*TransferContext)
	return tc
}
