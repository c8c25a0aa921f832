/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package assistant turns a chat transcript into a structured reply from an
// OpenAI-compatible chat-completion endpoint.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"loopwise-go/internal/models"
	"loopwise-go/internal/state"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	OfflineText     = "The AI Assistant is currently offline. Please configure your API key."
	UnavailableText = "The AI model is currently being updated. Please try again later."
	EmptyText       = "I'm not sure how to help with that."
)

var (
	ErrNoAPIKey      = errors.New("assistant api key not configured")
	ErrEmptyResponse = errors.New("assistant returned no content")
)

// Turn is one entry of the transcript sent to the model.
type Turn struct {
	Role    string
	Content string
}

// Completer performs a single chat completion.
type Completer interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

// OpenAICompleter calls an OpenAI-compatible endpoint (Groq by default).
type OpenAICompleter struct {
	client *openai.Client
	cfg    models.AssistantConfig
}

var _ Completer = (*OpenAICompleter)(nil)

func NewOpenAICompleter(cfg models.AssistantConfig, httpClient *http.Client) (*OpenAICompleter, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}
	return &OpenAICompleter{client: openai.NewClientWithConfig(clientCfg), cfg: cfg}, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, turns []Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, openai.ChatCompletionMessage{Role: t.Role, Content: t.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: float32(c.cfg.Temperature),
		TopP:        float32(c.cfg.TopP),
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Service builds prompts and interprets replies. A nil completer means the
// assistant is offline.
type Service struct {
	completer Completer
	now       func() time.Time
}

func NewService(completer Completer) *Service {
	return &Service{completer: completer, now: time.Now}
}

// Online reports whether a completion backend is configured.
func (s *Service) Online() bool {
	return s.completer != nil
}

// Respond produces the assistant message for a transcript whose last entry
// is the user's new message. It never fails: transport problems become a
// fixed apology with no action.
func (s *Service) Respond(ctx context.Context, subs []models.Subscription, history []models.Message) models.Message {
	if s.completer == nil {
		return s.message(Reply{Text: OfflineText})
	}

	turns := make([]Turn, 0, len(history)+1)
	turns = append(turns, Turn{Role: openai.ChatMessageRoleSystem, Content: BuildSystemPrompt(subs)})
	for _, m := range history {
		role := openai.ChatMessageRoleAssistant
		if m.Sender == models.SenderUser {
			role = openai.ChatMessageRoleUser
		}
		turns = append(turns, Turn{Role: role, Content: m.Text})
	}

	content, err := s.completer.Complete(ctx, turns)
	if errors.Is(err, ErrEmptyResponse) {
		return s.message(Reply{Text: EmptyText})
	}
	if err != nil {
		zap.L().Error("Assistant completion failed", zap.Error(err))
		return s.message(Reply{Text: UnavailableText})
	}

	reply := ParseReply(content)
	if reply.Action != nil {
		zap.L().Info("Assistant proposed action",
			zap.String("type", string(reply.Action.Type)),
			zap.String("view", string(reply.Action.Payload.View)),
			zap.String("subscription_id", reply.Action.Payload.SubscriptionId))
	}
	return s.message(reply)
}

func (s *Service) message(r Reply) models.Message {
	return models.Message{
		Id:          state.NewId("msg"),
		Text:        r.Text,
		Sender:      models.SenderAi,
		Timestamp:   s.now(),
		Suggestions: r.Suggestions,
		Action:      r.Action,
	}
}
