package assistant

import (
	"encoding/json"
	"regexp"
	"strings"

	"loopwise-go/internal/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const emptyMessageText = "I'm not sure how to respond to that."

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)\\n?```")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateAction, models.Action{})
	return v
}

// validateAction enforces the per-type required payload fields.
func validateAction(sl validator.StructLevel) {
	a := sl.Current().Interface().(models.Action)
	switch a.Type {
	case models.ActionNavigate:
		if a.Payload.View == "" {
			sl.ReportError(a.Payload.View, "View", "view", "required", "")
		}
	case models.ActionChangeStatus:
		if a.Payload.SubscriptionId == "" {
			sl.ReportError(a.Payload.SubscriptionId, "SubscriptionId", "subscriptionId", "required", "")
		}
		if a.Payload.Status == "" {
			sl.ReportError(a.Payload.Status, "Status", "status", "required", "")
		}
	}
}

// Reply is the structured content of an assistant turn.
type Reply struct {
	Text        string
	Suggestions []string
	Action      *models.Action
}

type rawReply struct {
	Message     *string         `json:"message"`
	Suggestions []string        `json:"suggestions"`
	Action      json.RawMessage `json:"action"`
}

// ParseReply interprets model output. Content that is not a JSON object is
// returned verbatim as the reply text. An action that fails validation is
// dropped and the message text kept.
func ParseReply(content string) Reply {
	body := content
	if m := fencePattern.FindStringSubmatch(content); m != nil {
		body = m[1]
	}

	var raw rawReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &raw); err != nil {
		return Reply{Text: content}
	}

	reply := Reply{Text: emptyMessageText, Suggestions: raw.Suggestions}
	if raw.Message != nil && *raw.Message != "" {
		reply.Text = *raw.Message
	}
	if reply.Suggestions == nil {
		reply.Suggestions = []string{}
	}

	action, ok := decodeAction(raw.Action)
	if ok {
		reply.Action = action
	}
	return reply
}

func decodeAction(raw json.RawMessage) (*models.Action, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, false
	}
	var action models.Action
	if err := json.Unmarshal(raw, &action); err != nil {
		zap.L().Warn("Dropping undecodable assistant action", zap.String("action", trimmed), zap.Error(err))
		return nil, false
	}
	if err := validate.Struct(action); err != nil {
		zap.L().Warn("Dropping invalid assistant action", zap.String("action", trimmed), zap.Error(err))
		return nil, false
	}
	return &action, true
}
