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

// Package mockapi is the fixture-backed stand-in for the account backend.
// Every call waits a fixed, scaled latency and returns copies of the data.
package mockapi

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"loopwise-go/internal/assistant"
	"loopwise-go/internal/models"
	"loopwise-go/internal/state"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Simulated latencies, before scaling.
const (
	delayUser          = 500 * time.Millisecond
	delaySubscriptions = 800 * time.Millisecond
	delaySuggestions   = 1200 * time.Millisecond
	delayTransactions  = 300 * time.Millisecond
	delayMessages      = 100 * time.Millisecond
	delayTeam          = 400 * time.Millisecond
	delaySessions      = 450 * time.Millisecond
	delayReferrals     = 600 * time.Millisecond
	delayLogin         = 1000 * time.Millisecond
	delaySignup        = 1500 * time.Millisecond
	delayCheckUsername = 500 * time.Millisecond
	delayUpdateProfile = 800 * time.Millisecond
)

const (
	signupAddress     = "0xCD...34"
	signupDisplayName = "New User"
)

// Service serves fixtures. It is safe for concurrent use.
type Service struct {
	mu    sync.Mutex
	data  *dataset
	user  models.User
	taken map[string]bool

	latencyScale float64
	assistant    *assistant.Service
	now          func() time.Time
}

// NewService decodes the embedded fixtures. A nil assistant answers every
// chat message with the offline reply.
func NewService(cfg models.MockConfig, asst *assistant.Service) (*Service, error) {
	data, err := loadDataset(fixtureData)
	if err != nil {
		return nil, err
	}
	for i := range data.transactions {
		data.transactions[i].TxId = state.NewTxHash()
	}
	if asst == nil {
		asst = assistant.NewService(nil)
	}

	taken := make(map[string]bool, len(data.takenUsernames))
	for _, u := range data.takenUsernames {
		taken[strings.ToLower(u)] = true
	}

	zap.L().Debug("Loaded mock fixtures",
		zap.Int("subscriptions", len(data.subscriptions)),
		zap.Int("transactions", len(data.transactions)),
		zap.Float64("latency_scale", cfg.LatencyScale))

	return &Service{
		data:         data,
		user:         cloneUser(data.user),
		taken:        taken,
		latencyScale: cfg.LatencyScale,
		assistant:    asst,
		now:          time.Now,
	}, nil
}

func (s *Service) wait(ctx context.Context, d time.Duration) error {
	if s.latencyScale <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(float64(d) * s.latencyScale))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) GetUser(ctx context.Context) (*models.User, error) {
	if err := s.wait(ctx, delayUser); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := cloneUser(s.user)
	return &u, nil
}

func (s *Service) GetSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	if err := s.wait(ctx, delaySubscriptions); err != nil {
		return nil, err
	}
	out := make([]models.Subscription, len(s.data.subscriptions))
	for i, sub := range s.data.subscriptions {
		sub.AvailablePlans = append([]models.Plan(nil), sub.AvailablePlans...)
		out[i] = sub
	}
	return out, nil
}

func (s *Service) GetSuggestions(ctx context.Context) ([]models.AiSuggestion, error) {
	if err := s.wait(ctx, delaySuggestions); err != nil {
		return nil, err
	}
	return append([]models.AiSuggestion(nil), s.data.suggestions...), nil
}

func (s *Service) GetTransactions(ctx context.Context) ([]models.Transaction, error) {
	if err := s.wait(ctx, delayTransactions); err != nil {
		return nil, err
	}
	return append([]models.Transaction(nil), s.data.transactions...), nil
}

// GetMessages returns the opening transcript stamped with the current time.
func (s *Service) GetMessages(ctx context.Context) ([]models.Message, error) {
	if err := s.wait(ctx, delayMessages); err != nil {
		return nil, err
	}
	out := make([]models.Message, len(s.data.messages))
	for i, m := range s.data.messages {
		m.Timestamp = s.now()
		m.Suggestions = append([]string(nil), m.Suggestions...)
		out[i] = m
	}
	return out, nil
}

func (s *Service) GetTeam(ctx context.Context) ([]models.TeamMember, error) {
	if err := s.wait(ctx, delayTeam); err != nil {
		return nil, err
	}
	return append([]models.TeamMember(nil), s.data.team...), nil
}

func (s *Service) GetSessions(ctx context.Context) ([]models.Session, error) {
	if err := s.wait(ctx, delaySessions); err != nil {
		return nil, err
	}
	return append([]models.Session(nil), s.data.sessions...), nil
}

func (s *Service) GetReferrals(ctx context.Context) ([]models.Referral, error) {
	if err := s.wait(ctx, delayReferrals); err != nil {
		return nil, err
	}
	return append([]models.Referral(nil), s.data.referrals...), nil
}

// Login accepts any credentials and returns the fixture user.
func (s *Service) Login(ctx context.Context, email, _ string) (*models.User, error) {
	zap.L().Info("Mock login", zap.String("email", email))
	if err := s.wait(ctx, delayLogin); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := cloneUser(s.user)
	return &u, nil
}

// Signup creates a fresh, unfunded user. Nothing is persisted.
func (s *Service) Signup(ctx context.Context, email, _ string) (*models.User, error) {
	zap.L().Info("Mock signup", zap.String("email", email))
	if err := s.wait(ctx, delaySignup); err != nil {
		return nil, err
	}
	return &models.User{
		Id:          state.NewId("user"),
		Address:     signupAddress,
		DisplayName: signupDisplayName,
		Email:       email,
		Balances:    map[string]decimal.Decimal{models.DefaultCurrency: decimal.Zero},
		WalletId:    state.NewId("wallet"),
	}, nil
}

// CheckUsername reports whether a username is free, ignoring case.
func (s *Service) CheckUsername(ctx context.Context, username string) (bool, error) {
	if err := s.wait(ctx, delayCheckUsername); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.taken[strings.ToLower(username)], nil
}

// UpdateUserProfile merges the update into the stored user and reserves
// the username.
func (s *Service) UpdateUserProfile(ctx context.Context, userId string, update models.ProfileUpdate) (*models.User, error) {
	if err := s.wait(ctx, delayUpdateProfile); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if update.DisplayName != "" {
		s.user.DisplayName = update.DisplayName
	}
	if update.Username != "" {
		s.user.Username = update.Username
		s.taken[strings.ToLower(update.Username)] = true
	}
	if update.Bio != "" {
		s.user.Bio = update.Bio
	}
	zap.L().Info("Updated mock profile", zap.String("user_id", userId), zap.String("username", s.user.Username))
	u := cloneUser(s.user)
	return &u, nil
}

// GetChatResponse asks the assistant to answer the last message of history.
func (s *Service) GetChatResponse(ctx context.Context, subs []models.Subscription, history []models.Message) (models.Message, error) {
	if len(history) == 0 {
		return models.Message{}, fmt.Errorf("chat history is empty")
	}
	return s.assistant.Respond(ctx, subs, history), nil
}

func cloneUser(u models.User) models.User {
	balances := make(map[string]decimal.Decimal, len(u.Balances))
	for k, v := range u.Balances {
		balances[k] = v
	}
	u.Balances = balances
	return u
}
