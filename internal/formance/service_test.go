package formance

import (
	"context"
	"strings"
	"testing"

	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
)

// ---------- Unit tests for pure helpers (no Formance stack needed) ----------

func TestFormanceAsset(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"USDC", "USDC/6"},
		{"USD", "USD/2"},
		{"EURC", "EURC/6"},
		{"UNKNOWN", "UNKNOWN/6"}, // default precision
	}
	for _, tt := range tests {
		if got := formanceAsset(tt.symbol); got != tt.want {
			t.Errorf("formanceAsset(%q) = %q, want %q", tt.symbol, got, tt.want)
		}
	}
}

func TestAssetSymbol(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"USDC/6", "USDC"},
		{"USD/2", "USD"},
		{"PLAIN", "PLAIN"},
	}
	for _, tt := range tests {
		if got := assetSymbol(tt.input); got != tt.want {
			t.Errorf("assetSymbol(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestUserAccount(t *testing.T) {
	if got := userAccount("user_123"); got != "users:user_123" {
		t.Errorf("userAccount = %q, want users:user_123", got)
	}
}

func TestBigIntToDecimal(t *testing.T) {
	// 1_000_000 smallest units of USDC (precision 6) = 1.0
	d := decimal.NewFromInt(1_000_000)
	result := bigIntToDecimal(d.BigInt(), "USDC")
	if !result.Equal(decimal.NewFromFloat(1.0)) {
		t.Errorf("expected 1.0, got %s", result.String())
	}

	// 150 cents = 1.5
	d = decimal.NewFromInt(150)
	result = bigIntToDecimal(d.BigInt(), "USD")
	if !result.Equal(decimal.NewFromFloat(1.5)) {
		t.Errorf("expected 1.5, got %s", result.String())
	}

	// nil should return zero
	result = bigIntToDecimal(nil, "USDC")
	if !result.IsZero() {
		t.Errorf("expected 0, got %s", result.String())
	}
}

func TestIsConflictError(t *testing.T) {
	if isConflictError(nil) {
		t.Error("nil should not be a conflict error")
	}
}

func TestScriptFor(t *testing.T) {
	tests := []struct {
		txType       models.TransactionType
		credit       bool
		counterparty string
	}{
		{models.TransactionDeposit, true, "deposits"},
		{models.TransactionRefund, true, "refunds"},
		{models.TransactionPayment, false, "payments"},
		{models.TransactionTransfer, false, "transfers:outgoing"},
	}
	for _, tt := range tests {
		script, counterparty, ok := scriptFor(tt.txType)
		if !ok {
			t.Fatalf("scriptFor(%q) not ok", tt.txType)
		}
		if counterparty != tt.counterparty {
			t.Errorf("scriptFor(%q) counterparty = %q, want %q", tt.txType, counterparty, tt.counterparty)
		}
		if fromWorld := strings.Contains(script, "source = @world"); fromWorld != tt.credit {
			t.Errorf("scriptFor(%q) credit = %v, want %v", tt.txType, fromWorld, tt.credit)
		}
	}

	if _, _, ok := scriptFor("airdrop"); ok {
		t.Error("unknown type should not map to a script")
	}
}

func TestRecordTransaction_SkipsUnsettled(t *testing.T) {
	// No client: skipped transactions never reach the stack.
	svc := &Service{ledger: "test"}

	pending := models.Transaction{
		Id:     "tx_1",
		Type:   models.TransactionTransfer,
		Status: models.StatusPending,
		Amount: decimal.NewFromInt(-10),
	}
	if err := svc.RecordTransaction(context.Background(), "user_1", pending); err != nil {
		t.Fatalf("pending transaction: %v", err)
	}

	zero := models.Transaction{
		Id:     "tx_2",
		Type:   models.TransactionPayment,
		Status: models.StatusCompleted,
		Amount: decimal.Zero,
	}
	if err := svc.RecordTransaction(context.Background(), "user_1", zero); err != nil {
		t.Fatalf("zero-amount transaction: %v", err)
	}
}

func TestNewService_RequiresCredentials(t *testing.T) {
	_, err := NewService(context.Background(), models.FormanceConfig{StackURL: "http://localhost"})
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
}
