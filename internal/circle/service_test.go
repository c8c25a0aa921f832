package circle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
)

const sampleResponse = `{"data":{"id":"tr_123","source":{"type":"wallet","id":"src"},"destination":{"type":"wallet","id":"dst"},"amount":{"amount":"12.50","currency":"USDC"},"txHash":"0xfeed","status":"COMPLETE","createDate":"2025-10-20T10:00:00Z"}}`

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewService(models.CircleConfig{BaseURL: server.URL + "/", APIKey: "test-key"}, server.Client())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestSendFunds(t *testing.T) {
	var got transferRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/transfers" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	})

	transfer, err := svc.SendFunds(context.Background(), models.TransferRequest{
		IdempotencyKey:      "key-1",
		SourceWalletId:      "src",
		DestinationWalletId: "dst",
		Amount:              decimal.RequireFromString("12.5"),
	})
	if err != nil {
		t.Fatalf("SendFunds: %v", err)
	}

	if got.IdempotencyKey != "key-1" || got.Source != (endpoint{Type: "wallet", Id: "src"}) || got.Destination != (endpoint{Type: "wallet", Id: "dst"}) {
		t.Errorf("unexpected request body %+v", got)
	}
	if got.Amount != (money{Amount: "12.50", Currency: "USDC"}) {
		t.Errorf("amount = %+v, want 12.50 USDC", got.Amount)
	}
	if transfer.Id != "tr_123" || transfer.Status != models.TransferComplete || transfer.TxHash != "0xfeed" {
		t.Errorf("unexpected transfer %+v", transfer)
	}
	if !transfer.Amount.Equal(decimal.RequireFromString("12.5")) || transfer.CreateDate.IsZero() {
		t.Errorf("unexpected amount or date %+v", transfer)
	}
}

func TestSendFundsErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"message from body", http.StatusBadRequest, `{"code":2,"message":"Insufficient wallet balance"}`, "Insufficient wallet balance"},
		{"no message", http.StatusInternalServerError, `{}`, "Failed to initiate transfer."},
		{"non json body", http.StatusBadGateway, `<html>bad gateway</html>`, "Failed to initiate transfer."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := svc.SendFunds(context.Background(), models.TransferRequest{Amount: decimal.NewFromInt(1)})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Message != tt.wantMsg {
				t.Errorf("APIError = %+v, want %d %q", apiErr, tt.status, tt.wantMsg)
			}
		})
	}
}

func TestGetTransfer(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/transfers/tr_123" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(sampleResponse))
	})

	transfer, err := svc.GetTransfer(context.Background(), "tr_123")
	if err != nil {
		t.Fatalf("GetTransfer: %v", err)
	}
	if transfer.Status != models.TransferComplete {
		t.Errorf("status = %s", transfer.Status)
	}
}

func TestNewServiceRequiresKey(t *testing.T) {
	if _, err := NewService(models.CircleConfig{BaseURL: "http://example"}, nil); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
}
