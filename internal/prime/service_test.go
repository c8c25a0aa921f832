package prime

import (
	"context"
	"errors"
	"testing"
	"time"

	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
)

func TestTransferStatus(t *testing.T) {
	tests := []struct {
		in   string
		want models.TransferStatus
	}{
		{"TRANSACTION_DONE", models.TransferComplete},
		{"TRANSACTION_FAILED", models.TransferFailed},
		{"TRANSACTION_REJECTED", models.TransferFailed},
		{"TRANSACTION_CANCELLED", models.TransferFailed},
		{"TRANSACTION_BROADCASTING", models.TransferRunning},
		{"TRANSACTION_CREATED", models.TransferRunning},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := transferStatus(tt.in); got != tt.want {
				t.Errorf("transferStatus(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransferIdRoundTrip(t *testing.T) {
	id := encodeTransferId("wallet-1", "3f1c2d4e-key")
	walletId, key, err := decodeTransferId(id)
	if err != nil {
		t.Fatalf("decodeTransferId: %v", err)
	}
	if walletId != "wallet-1" || key != "3f1c2d4e-key" {
		t.Errorf("decoded %q, %q", walletId, key)
	}

	for _, bad := range []string{"", "no-separator", ":key", "wallet:"} {
		if _, _, err := decodeTransferId(bad); !errors.Is(err, ErrInvalidTransferId) {
			t.Errorf("decodeTransferId(%q) error = %v", bad, err)
		}
	}
}

func TestFindByIdempotencyKey(t *testing.T) {
	created := time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)
	txs := []walletTransaction{
		{Id: "a", IdempotencyKey: "other", Status: "TRANSACTION_DONE"},
		{Id: "b", IdempotencyKey: "mine", Status: "TRANSACTION_DONE", Symbol: "USDC", Amount: "-25.5", Created: created, BlockchainIds: []string{"0xhash"}},
	}

	match, ok := findByIdempotencyKey(txs, "mine")
	if !ok || match.Id != "b" {
		t.Fatalf("match = %+v, %v", match, ok)
	}

	transfer := &models.Transfer{}
	match.fill(transfer)
	if transfer.Status != models.TransferComplete || transfer.TxHash != "0xhash" || transfer.Currency != "USDC" {
		t.Errorf("unexpected transfer %+v", transfer)
	}
	if !transfer.Amount.Equal(decimal.RequireFromString("25.5")) || !transfer.CreateDate.Equal(created) {
		t.Errorf("unexpected amount or date %+v", transfer)
	}

	if _, ok := findByIdempotencyKey(txs, "missing"); ok {
		t.Error("unexpected match")
	}
}

func TestNewServiceRequiresCredentials(t *testing.T) {
	_, err := NewService(context.Background(), models.PrimeConfig{AccessKey: "only-key"}, nil)
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("error = %v, want ErrMissingCredentials", err)
	}
}
