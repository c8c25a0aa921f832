package audit

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
)

func TestExport(t *testing.T) {
	txs := []models.Transaction{
		{
			Id: "txn_1", Type: models.TransactionPayment, Status: models.StatusCompleted,
			Amount: decimal.RequireFromString("9.99"), Currency: "USDC",
			Description: "Streaming Plus", Category: "Entertainment",
			Timestamp: time.Date(2025, 10, 12, 14, 0, 0, 0, time.UTC), TxId: "0xabc",
		},
		{
			Id: "txn_2", Type: models.TransactionTransfer, Status: models.StatusCompleted,
			Amount: decimal.NewFromInt(50), Currency: "USDC",
			Description: "Dinner, drinks", Category: "Transfers", Notes: "said \"thanks\"\nlater",
			Timestamp: time.Date(2025, 10, 13, 9, 30, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	if err := Export(&buf, txs); err != nil {
		t.Fatalf("Export: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "id,timestamp,type,description,amount,currency,status,category,txId,notes\n") {
		t.Errorf("unexpected header in %q", out)
	}
	if strings.Index(out, "txn_2") > strings.Index(out, "txn_1") {
		t.Error("export should list newest first")
	}
	if !strings.Contains(out, `"Dinner, drinks"`) {
		t.Error("field with comma should be quoted")
	}
	if !strings.Contains(out, "\"said \"\"thanks\"\"\nlater\"") {
		t.Error("field with quote and newline should be escaped")
	}
	if !strings.Contains(out, "2025-10-12T14:00:00.000Z") {
		t.Error("timestamp should be ISO 8601 UTC")
	}
}

func TestExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, nil); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("Export(nil) error = %v, want ErrNothingToExport", err)
	}
}

func TestExportParseRoundTrip(t *testing.T) {
	txs := []models.Transaction{{
		Id: "txn_1", Type: models.TransactionRefund, Status: models.StatusPending,
		Amount: decimal.RequireFromString("12.50"), Currency: "USDC",
		Description: "Cloud, refund", Category: "Utilities", Notes: "partial",
		Timestamp: time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC),
	}}
	var buf bytes.Buffer
	if err := Export(&buf, txs); err != nil {
		t.Fatalf("Export: %v", err)
	}

	drafts, skipped, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if skipped != 0 || len(drafts) != 1 {
		t.Fatalf("Parse() = %d drafts, %d skipped", len(drafts), skipped)
	}
	d := drafts[0]
	if d.Type != models.TransactionRefund || d.Status != models.StatusPending || d.Description != "Cloud, refund" ||
		!d.Amount.Equal(decimal.RequireFromString("12.5")) || !d.Timestamp.Equal(txs[0].Timestamp) || d.Notes != "partial" {
		t.Errorf("round trip mismatch: %+v", d)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantErr     error
		wantDrafts  int
		wantSkipped int
	}{
		{
			name:    "missing headers",
			input:   "timestamp,description,amount\n2025-10-01,Coffee,3\n",
			wantErr: ErrMissingHeaders,
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: ErrMissingHeaders,
		},
		{
			name:        "only bad rows",
			input:       "timestamp,description,amount,type,category\nnot-a-date,Coffee,3,payment,Food\n2025-10-01,Tea,abc,payment,Food\n",
			wantErr:     ErrNoValidRows,
			wantSkipped: 2,
		},
		{
			name:        "mixed rows with defaults",
			input:       "timestamp,description,amount,type,category\n2025-10-01,Coffee,3.5,,Food\n\n2025-10-02T10:00:00Z,Salary,1000,deposit,Income\nbad,Row,1,payment,Food\n",
			wantDrafts:  2,
			wantSkipped: 1,
		},
		{
			name:        "unknown type skipped",
			input:       "timestamp,description,amount,type,category\n2025-10-01,Coffee,3.5,gift,Food\n2025-10-01,Tea,2,payment,Food\n",
			wantDrafts:  1,
			wantSkipped: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drafts, skipped, err := Parse([]byte(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			if len(drafts) != tt.wantDrafts || skipped != tt.wantSkipped {
				t.Errorf("Parse() = %d drafts, %d skipped; want %d, %d", len(drafts), skipped, tt.wantDrafts, tt.wantSkipped)
			}
		})
	}
}

func TestParseDefaults(t *testing.T) {
	drafts, _, err := Parse([]byte("category,type,amount,description,timestamp\nFood,,3.5,Coffee,2025-10-01\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	d := drafts[0]
	if d.Type != models.TransactionPayment || d.Status != models.StatusCompleted || d.Currency != models.DefaultCurrency {
		t.Errorf("defaults not applied: %+v", d)
	}
	if d.Category != "Food" || d.Description != "Coffee" {
		t.Errorf("columns mapped by name incorrectly: %+v", d)
	}
}

func TestHash(t *testing.T) {
	a := Hash([]byte("same"))
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64", len(a))
	}
	if a != Hash([]byte("same")) || a == Hash([]byte("other")) {
		t.Error("hash must be deterministic and content dependent")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(ErrDuplicateFile); got != "This seems to be the same file you imported last." {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("boom")); got != "Failed to parse CSV file." {
		t.Errorf("UserMessage() = %q", got)
	}
}
