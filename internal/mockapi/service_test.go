package mockapi

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(models.MockConfig{LatencyScale: 0}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestFixturesDecode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.GetUser(ctx)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Id != "user_123" || !user.Balance("USDC").Equal(decimal.NewFromInt(10000)) {
		t.Errorf("unexpected user %+v", user)
	}

	subs, _ := svc.GetSubscriptions(ctx)
	if len(subs) != 46 {
		t.Fatalf("subscriptions = %d, want 46", len(subs))
	}
	first := subs[0]
	if first.Id != "sub_001" || first.CurrentPlan() == nil || !first.MonthlyCost().Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("unexpected first subscription %+v", first)
	}
	for _, s := range subs {
		if s.CurrentPlan() == nil {
			t.Errorf("%s references unknown plan %s", s.Id, s.CurrentPlanId)
		}
		if s.Status != models.SubscriptionActive && !s.NextPayment.IsZero() {
			t.Errorf("%s is %s but has a next payment", s.Id, s.Status)
		}
	}

	txs, _ := svc.GetTransactions(ctx)
	if len(txs) != 11 {
		t.Fatalf("transactions = %d, want 11", len(txs))
	}
	for _, tx := range txs {
		if len(tx.TxId) != 66 {
			t.Errorf("%s has tx hash %q", tx.Id, tx.TxId)
		}
	}

	sugs, _ := svc.GetSuggestions(ctx)
	if len(sugs) != 2 || sugs[0].Type != models.SuggestionCancelLowUsage || sugs[0].SubscriptionId != "sub_001" {
		t.Errorf("unexpected suggestions %+v", sugs)
	}

	msgs, _ := svc.GetMessages(ctx)
	if len(msgs) != 1 || msgs[0].Sender != models.SenderAi || len(msgs[0].Suggestions) != 3 || msgs[0].Timestamp.IsZero() {
		t.Errorf("unexpected messages %+v", msgs)
	}

	team, _ := svc.GetTeam(ctx)
	sessions, _ := svc.GetSessions(ctx)
	referrals, _ := svc.GetReferrals(ctx)
	if len(team) != 3 || len(sessions) != 3 || len(referrals) != 3 {
		t.Errorf("team/sessions/referrals = %d/%d/%d", len(team), len(sessions), len(referrals))
	}
	if !sessions[0].IsCurrent || !referrals[0].RewardAmount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("unexpected session/referral fixtures")
	}
}

func TestResultsAreCopies(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	subs, _ := svc.GetSubscriptions(ctx)
	subs[0].Status = models.SubscriptionCancelled
	subs[0].AvailablePlans[0].Name = "changed"

	again, _ := svc.GetSubscriptions(ctx)
	if again[0].Status != models.SubscriptionActive || again[0].AvailablePlans[0].Name != "Basic HD" {
		t.Error("caller mutation leaked into fixtures")
	}

	user, _ := svc.GetUser(ctx)
	user.Balances["USDC"] = decimal.Zero
	user2, _ := svc.GetUser(ctx)
	if user2.Balance("USDC").IsZero() {
		t.Error("balance mutation leaked into fixtures")
	}
}

func TestSignup(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Signup(context.Background(), "new@example.com", "secret")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if !strings.HasPrefix(user.Id, "user_") || !strings.HasPrefix(user.WalletId, "wallet_") {
		t.Errorf("unexpected ids %+v", user)
	}
	if user.DisplayName != "New User" || user.Address != "0xCD...34" || !user.Balance("USDC").IsZero() {
		t.Errorf("unexpected new user %+v", user)
	}
}

func TestCheckUsernameAndProfileUpdate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		username  string
		available bool
	}{
		{"alex_rivera", false},
		{"ADMIN", false},
		{"sam_new", true},
	}
	for _, tt := range tests {
		got, err := svc.CheckUsername(ctx, tt.username)
		if err != nil || got != tt.available {
			t.Errorf("CheckUsername(%q) = %v, %v; want %v", tt.username, got, err, tt.available)
		}
	}

	user, err := svc.UpdateUserProfile(ctx, "user_123", models.ProfileUpdate{DisplayName: "Sam", Username: "Sam_New"})
	if err != nil {
		t.Fatalf("UpdateUserProfile: %v", err)
	}
	if user.DisplayName != "Sam" || user.Username != "Sam_New" || user.Email != "alex@example.com" {
		t.Errorf("profile not merged: %+v", user)
	}
	if free, _ := svc.CheckUsername(ctx, "sam_new"); free {
		t.Error("updated username should now be taken")
	}
	if again, _ := svc.GetUser(ctx); again.DisplayName != "Sam" {
		t.Error("update should persist for later calls")
	}
}

func TestLatencyHonoursContext(t *testing.T) {
	svc, err := NewService(models.MockConfig{LatencyScale: 100}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = svc.GetSuggestions(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("cancelled call did not return promptly")
	}
}

func TestGetChatResponseOffline(t *testing.T) {
	svc := newTestService(t)
	history := []models.Message{{Text: "hi", Sender: models.SenderUser}}

	msg, err := svc.GetChatResponse(context.Background(), nil, history)
	if err != nil {
		t.Fatalf("GetChatResponse: %v", err)
	}
	if msg.Sender != models.SenderAi || msg.Action != nil || msg.Text == "" {
		t.Errorf("unexpected reply %+v", msg)
	}
	if _, err := svc.GetChatResponse(context.Background(), nil, nil); err == nil {
		t.Error("expected error for empty history")
	}
}
