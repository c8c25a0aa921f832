package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"loopwise-go/internal/models"
)

type fakeCompleter struct {
	content string
	err     error
	turns   []Turn
}

func (f *fakeCompleter) Complete(_ context.Context, turns []Turn) (string, error) {
	f.turns = turns
	return f.content, f.err
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantText    string
		wantAction  models.ActionType
		wantSuggest int
	}{
		{
			name:        "plain json with navigate",
			content:     `{"message":"Taking you there.","suggestions":["Thanks"],"action":{"type":"navigate","payload":{"view":"payments"}}}`,
			wantText:    "Taking you there.",
			wantAction:  models.ActionNavigate,
			wantSuggest: 1,
		},
		{
			name:       "fenced json",
			content:    "```json\n{\"message\":\"Done.\",\"suggestions\":[],\"action\":{\"type\":\"change_status\",\"payload\":{\"subscriptionId\":\"sub_001\",\"status\":\"paused\"}}}\n```",
			wantText:   "Done.",
			wantAction: models.ActionChangeStatus,
		},
		{
			name:       "fenced json after preamble",
			content:    "Sure, here you go:\n```json\n{\"message\":\"Navigating\",\"suggestions\":[],\"action\":{\"type\":\"navigate\",\"payload\":{\"view\":\"audit\"}}}\n```",
			wantText:   "Navigating",
			wantAction: models.ActionNavigate,
		},
		{
			name:     "not json",
			content:  "Hello there, plain text.",
			wantText: "Hello there, plain text.",
		},
		{
			name:     "null action",
			content:  `{"message":"Are you sure?","suggestions":["Yes, cancel it","No, don't cancel"],"action":null}`,
			wantText: "Are you sure?", wantSuggest: 2,
		},
		{
			name:     "missing message",
			content:  `{"suggestions":[]}`,
			wantText: "I'm not sure how to respond to that.",
		},
		{
			name:     "unknown view dropped",
			content:  `{"message":"Going.","action":{"type":"navigate","payload":{"view":"billing"}}}`,
			wantText: "Going.",
		},
		{
			name:     "unknown action type dropped",
			content:  `{"message":"Deleting.","action":{"type":"delete_account","payload":{}}}`,
			wantText: "Deleting.",
		},
		{
			name:     "change status without id dropped",
			content:  `{"message":"Paused.","action":{"type":"change_status","payload":{"status":"paused"}}}`,
			wantText: "Paused.",
		},
		{
			name:     "malformed action dropped",
			content:  `{"message":"Hm.","action":"navigate"}`,
			wantText: "Hm.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseReply(tt.content)
			if r.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", r.Text, tt.wantText)
			}
			if tt.wantAction == "" && r.Action != nil {
				t.Errorf("expected no action, got %+v", r.Action)
			}
			if tt.wantAction != "" && (r.Action == nil || r.Action.Type != tt.wantAction) {
				t.Errorf("Action = %+v, want type %s", r.Action, tt.wantAction)
			}
			if len(r.Suggestions) != tt.wantSuggest {
				t.Errorf("Suggestions = %v, want %d", r.Suggestions, tt.wantSuggest)
			}
		})
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt([]models.Subscription{
		{Id: "sub_001", Name: "Streaming Plus", Status: models.SubscriptionActive},
		{Id: "sub_003", Name: "Cloud Storage 1TB", Status: models.SubscriptionPaused},
	})
	for _, want := range []string{
		`"Streaming Plus" (ID: sub_001, Status: active), "Cloud Storage 1TB" (ID: sub_003, Status: paused)`,
		"dashboard, subscriptions, payments, audit, team, referrals, help, settings",
		`"Yes, cancel it"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestRespondOffline(t *testing.T) {
	msg := NewService(nil).Respond(context.Background(), nil, nil)
	if msg.Text != OfflineText || msg.Sender != models.SenderAi || msg.Action != nil {
		t.Errorf("unexpected offline reply %+v", msg)
	}
}

func TestRespondBuildsTranscript(t *testing.T) {
	fake := &fakeCompleter{content: `{"message":"Hi!","suggestions":["More"]}`}
	svc := NewService(fake)

	history := []models.Message{
		{Text: "Hello! I am your Loopwise assistant.", Sender: models.SenderAi},
		{Text: "Show my subscriptions", Sender: models.SenderUser},
	}
	msg := svc.Respond(context.Background(), nil, history)

	if msg.Text != "Hi!" || !strings.HasPrefix(msg.Id, "msg_") {
		t.Errorf("unexpected reply %+v", msg)
	}
	if len(fake.turns) != 3 {
		t.Fatalf("turns = %d, want 3", len(fake.turns))
	}
	if fake.turns[0].Role != "system" || fake.turns[1].Role != "assistant" || fake.turns[2].Role != "user" {
		t.Errorf("unexpected roles %+v", fake.turns)
	}
	if fake.turns[2].Content != "Show my subscriptions" {
		t.Errorf("last turn should be the new user message")
	}
}

func TestRespondFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"transport error", errors.New("connection refused"), UnavailableText},
		{"empty content", ErrEmptyResponse, EmptyText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NewService(&fakeCompleter{err: tt.err}).Respond(context.Background(), nil, nil)
			if msg.Text != tt.want || msg.Action != nil {
				t.Errorf("Respond() = %+v, want text %q", msg, tt.want)
			}
		})
	}
}

func TestNewOpenAICompleterRequiresKey(t *testing.T) {
	if _, err := NewOpenAICompleter(models.AssistantConfig{}, nil); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("error = %v, want ErrNoAPIKey", err)
	}
}
