package store

import (
	"context"
	"errors"
	"testing"

	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
)

func TestMemoryPreferenceStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryPreferenceStore()

	if _, err := s.GetValue(ctx, KeyPreferences); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	if err := s.PutValue(ctx, KeyPreferences, `{"theme":"dark"}`); err != nil {
		t.Fatalf("PutValue failed: %v", err)
	}
	v, err := s.GetValue(ctx, KeyPreferences)
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if v != `{"theme":"dark"}` {
		t.Errorf("Unexpected value %q", v)
	}

	if err := s.DeleteValue(ctx, KeyPreferences); err != nil {
		t.Fatalf("DeleteValue failed: %v", err)
	}
	if _, err := s.GetValue(ctx, KeyPreferences); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryTransferJournal(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryTransferJournal()

	rec := models.TransferRecord{
		Id:             "tr_1",
		TransactionId:  "txn_1",
		Rail:           "circle",
		IdempotencyKey: "key-1",
		Amount:         decimal.NewFromInt(50),
		Currency:       "USDC",
		Status:         models.TransferPending,
	}
	if err := j.RecordTransfer(ctx, rec); err != nil {
		t.Fatalf("RecordTransfer failed: %v", err)
	}

	dup := rec
	dup.Id = "tr_2"
	if err := j.RecordTransfer(ctx, dup); !errors.Is(err, ErrDuplicateTransfer) {
		t.Errorf("Expected ErrDuplicateTransfer, got %v", err)
	}

	pending, err := j.GetPendingTransfers(ctx)
	if err != nil {
		t.Fatalf("GetPendingTransfers failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending transfer, got %d", len(pending))
	}

	if err := j.UpdateTransferStatus(ctx, "tr_1", models.TransferComplete, "0xabc"); err != nil {
		t.Fatalf("UpdateTransferStatus failed: %v", err)
	}
	got, err := j.GetTransfer(ctx, "tr_1")
	if err != nil {
		t.Fatalf("GetTransfer failed: %v", err)
	}
	if got.Status != models.TransferComplete || got.TxHash != "0xabc" {
		t.Errorf("Unexpected record after update: %+v", got)
	}

	pending, _ = j.GetPendingTransfers(ctx)
	if len(pending) != 0 {
		t.Errorf("Expected no pending transfers, got %d", len(pending))
	}

	if err := j.UpdateTransferStatus(ctx, "missing", models.TransferFailed, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
