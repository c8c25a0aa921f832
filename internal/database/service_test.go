package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"loopwise-go/internal/models"
	"loopwise-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Every pooled connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)

	service := newService(db, "test")
	if err := service.initSchema(context.Background()); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return service, cleanup
}

func TestNewService_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.DatabaseConfig
	}{
		{"empty path", models.DatabaseConfig{MaxOpenConns: 1, PingTimeout: time.Second}},
		{"zero open conns", models.DatabaseConfig{Path: "x.db", PingTimeout: time.Second}},
		{"negative idle conns", models.DatabaseConfig{Path: "x.db", MaxOpenConns: 1, MaxIdleConns: -1, PingTimeout: time.Second}},
		{"zero ping timeout", models.DatabaseConfig{Path: "x.db", MaxOpenConns: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewService(context.Background(), tt.cfg, "test"); err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
		})
	}
}

func TestPreferences_RoundTrip(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := service.GetValue(ctx, store.KeyPreferences); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	if err := service.PutValue(ctx, store.KeyPreferences, `{"theme":"dark"}`); err != nil {
		t.Fatalf("PutValue failed: %v", err)
	}
	if err := service.PutValue(ctx, store.KeyPreferences, `{"theme":"light"}`); err != nil {
		t.Fatalf("PutValue overwrite failed: %v", err)
	}

	value, err := service.GetValue(ctx, store.KeyPreferences)
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if value != `{"theme":"light"}` {
		t.Errorf("Expected overwritten value, got %q", value)
	}

	if err := service.DeleteValue(ctx, store.KeyPreferences); err != nil {
		t.Fatalf("DeleteValue failed: %v", err)
	}
	if _, err := service.GetValue(ctx, store.KeyPreferences); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestPreferences_NamespaceIsolation(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	other := newService(service.db, "other")

	if err := service.PutValue(ctx, store.KeyLastImportedFileHash, "abc"); err != nil {
		t.Fatalf("PutValue failed: %v", err)
	}
	if _, err := other.GetValue(ctx, store.KeyLastImportedFileHash); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected other namespace to be empty, got %v", err)
	}
}

func testTransfer(id, key string) models.TransferRecord {
	return models.TransferRecord{
		Id:                  id,
		TransactionId:       "txn_" + id,
		Rail:                "circle",
		IdempotencyKey:      key,
		SourceWalletId:      "wallet-src",
		DestinationWalletId: "wallet-dst",
		Recipient:           "jordan_lee",
		Amount:              decimal.RequireFromString("50.00"),
		Currency:            "USDC",
		Status:              models.TransferPending,
		CreatedAt:           time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestTransfers_RecordAndSettle(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	if err := service.RecordTransfer(ctx, testTransfer("tr1", "key1")); err != nil {
		t.Fatalf("RecordTransfer failed: %v", err)
	}
	if err := service.RecordTransfer(ctx, testTransfer("tr2", "key2")); err != nil {
		t.Fatalf("RecordTransfer failed: %v", err)
	}

	pending, err := service.GetPendingTransfers(ctx)
	if err != nil {
		t.Fatalf("GetPendingTransfers failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending transfers, got %d", len(pending))
	}
	if !pending[0].Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected amount 50, got %s", pending[0].Amount)
	}

	if err := service.UpdateTransferStatus(ctx, "tr1", models.TransferComplete, "0xhash"); err != nil {
		t.Fatalf("UpdateTransferStatus failed: %v", err)
	}
	// An empty hash must not erase the stored one.
	if err := service.UpdateTransferStatus(ctx, "tr1", models.TransferComplete, ""); err != nil {
		t.Fatalf("UpdateTransferStatus failed: %v", err)
	}

	rec, err := service.GetTransfer(ctx, "tr1")
	if err != nil {
		t.Fatalf("GetTransfer failed: %v", err)
	}
	if rec.Status != models.TransferComplete {
		t.Errorf("Expected COMPLETE, got %s", rec.Status)
	}
	if rec.TxHash != "0xhash" {
		t.Errorf("Expected hash 0xhash, got %q", rec.TxHash)
	}

	pending, err = service.GetPendingTransfers(ctx)
	if err != nil {
		t.Fatalf("GetPendingTransfers failed: %v", err)
	}
	if len(pending) != 1 || pending[0].Id != "tr2" {
		t.Errorf("Expected only tr2 pending, got %+v", pending)
	}
}

func TestTransfers_DuplicateIdempotencyKey(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	if err := service.RecordTransfer(ctx, testTransfer("tr1", "same-key")); err != nil {
		t.Fatalf("RecordTransfer failed: %v", err)
	}
	err := service.RecordTransfer(ctx, testTransfer("tr2", "same-key"))
	if !errors.Is(err, store.ErrDuplicateTransfer) {
		t.Errorf("Expected ErrDuplicateTransfer, got %v", err)
	}
}

func TestTransfers_NotFound(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := service.GetTransfer(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := service.UpdateTransferStatus(ctx, "missing", models.TransferFailed, ""); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
