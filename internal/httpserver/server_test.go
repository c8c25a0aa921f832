package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"loopwise-go/internal/api"
	"loopwise-go/internal/mockapi"
	"loopwise-go/internal/models"
	"loopwise-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, signIn bool) (*Server, http.Handler) {
	t.Helper()
	mock, err := mockapi.NewService(models.MockConfig{}, nil)
	require.NoError(t, err)
	controller, err := api.NewController(context.Background(), api.Deps{
		Backend:     mock,
		Preferences: store.NewMemoryPreferenceStore(),
	})
	require.NoError(t, err)
	if signIn {
		require.NoError(t, controller.LoadAppData(context.Background(), "Welcome back!"))
	}
	srv := NewServer(models.ServerConfig{Addr: ":0"}, controller)
	return srv, srv.Router(nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(into))
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t, false)
	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestLoginLoadsState(t *testing.T) {
	_, h := newTestServer(t, false)

	w := do(t, h, http.MethodPost, "/api/v1/session/login", `{"email":"alex@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var snap models.AppState
	decode(t, w, &snap)
	assert.Equal(t, models.PageApp, snap.Page)
	require.NotNil(t, snap.User)
	assert.Equal(t, "user_123", snap.User.Id)
}

func TestRequestValidation(t *testing.T) {
	_, h := newTestServer(t, true)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"invalid json", http.MethodPost, "/api/v1/session/login", `{`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/v1/funds/deposit", `{"amount":"5","extra":1}`, http.StatusBadRequest},
		{"two objects", http.MethodPost, "/api/v1/funds/deposit", `{"amount":"5"}{"amount":"6"}`, http.StatusBadRequest},
		{"bad email", http.MethodPost, "/api/v1/team/invite", `{"email":"nope","role":"Member"}`, http.StatusBadRequest},
		{"bad status", http.MethodPut, "/api/v1/subscriptions/sub_001/status", `{"status":"archived"}`, http.StatusBadRequest},
		{"unknown view", http.MethodPut, "/api/v1/view", `{"view":"casino"}`, http.StatusBadRequest},
		{"zero deposit", http.MethodPost, "/api/v1/funds/deposit", `{"amount":"0"}`, http.StatusBadRequest},
		{"unknown subscription", http.MethodPut, "/api/v1/subscriptions/sub_missing/status", `{"status":"paused"}`, http.StatusNotFound},
		{"unknown plan", http.MethodPut, "/api/v1/subscriptions/sub_001/plan", `{"planId":"plan_nope"}`, http.StatusBadRequest},
		{"unknown suggestion", http.MethodPost, "/api/v1/suggestions/sug_999/apply", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestValidationDetails(t *testing.T) {
	_, h := newTestServer(t, true)
	w := do(t, h, http.MethodPost, "/api/v1/team/invite", `{"email":"dana@example.com","role":"Owner"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Contains(t, resp.Details, "Role")
}

func TestDepositAndBalance(t *testing.T) {
	_, h := newTestServer(t, true)

	w := do(t, h, http.MethodPost, "/api/v1/funds/deposit", `{"amount":"250.50"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/api/v1/balance", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Currency string `json:"currency"`
		Balance  string `json:"balance"`
	}
	decode(t, w, &body)
	assert.Equal(t, "USDC", body.Currency)
	assert.Equal(t, "10250.5", body.Balance)

	w = do(t, h, http.MethodGet, "/api/v1/events?kind=toast&limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Funds added successfully!")
}

func TestSendFundsWithoutRail(t *testing.T) {
	_, h := newTestServer(t, true)
	w := do(t, h, http.MethodPost, "/api/v1/funds/send", `{"recipientId":"wallet_bob","amount":"5"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var res models.TransferResult
	decode(t, w, &res)
	assert.False(t, res.Success)
	assert.Equal(t, "Transfer failed: no transfer rail configured", res.Error)
}

func TestSignedOutEndpoints(t *testing.T) {
	_, h := newTestServer(t, false)

	w := do(t, h, http.MethodGet, "/api/v1/balance", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/audit/export", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No transactions to export.")
}

func TestAuditRoundTrip(t *testing.T) {
	_, h := newTestServer(t, true)

	w := do(t, h, http.MethodGet, "/api/v1/audit/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	exported := w.Body.String()
	assert.True(t, strings.HasPrefix(exported, "id,timestamp,type,description"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/audit/import", strings.NewReader(exported))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/audit/import", strings.NewReader(exported)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "This seems to be the same file you imported last.")

	w = do(t, h, http.MethodGet, "/api/v1/audit/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sum models.Summary
	decode(t, w, &sum)
	assert.Len(t, sum.SpendingTrend, 6)
}

func TestThemeToggleAndView(t *testing.T) {
	_, h := newTestServer(t, true)

	w := do(t, h, http.MethodPost, "/api/v1/settings/theme/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"dark"`)

	w = do(t, h, http.MethodPut, "/api/v1/view", `{"view":"payments"}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/state", "")
	var snap models.AppState
	decode(t, w, &snap)
	assert.Equal(t, models.ViewPayments, snap.View)
	assert.Equal(t, models.ThemeDark, snap.Preferences.Theme)
}

func TestChatOffline(t *testing.T) {
	_, h := newTestServer(t, true)
	w := do(t, h, http.MethodPost, "/api/v1/chat/messages", `{"text":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var msg models.Message
	decode(t, w, &msg)
	assert.Equal(t, models.SenderAi, msg.Sender)
	assert.Contains(t, msg.Text, "offline")
}
