package common

import (
	"testing"

	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
)

func TestShortId(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "none"},
		{"tx_123", "tx_123"},
		{"0x4f1c9a2b7e8d", "0x4f1c9a2b..."},
	}
	for _, tt := range tests {
		if got := ShortId(tt.in); got != tt.want {
			t.Errorf("ShortId(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSignedAmount(t *testing.T) {
	amount := decimal.RequireFromString("12.5")
	tests := []struct {
		txType models.TransactionType
		want   string
	}{
		{models.TransactionDeposit, "+12.50"},
		{models.TransactionRefund, "+12.50"},
		{models.TransactionPayment, "-12.50"},
		{models.TransactionTransfer, "-12.50"},
	}
	for _, tt := range tests {
		got := SignedAmount(models.Transaction{Type: tt.txType, Amount: amount})
		if got != tt.want {
			t.Errorf("SignedAmount(%s) = %q, want %q", tt.txType, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate kept = %q", got)
	}
	if got := truncate("Streaming Plus monthly", 10); got != "Streaming…" {
		t.Errorf("truncate = %q", got)
	}
}
