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

package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"loopwise-go/internal/eventbus"
	"loopwise-go/internal/models"
	"loopwise-go/internal/prefs"
	"loopwise-go/internal/state"
	"loopwise-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrNotSignedIn         = errors.New("no user signed in")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrWalletNotConfigured = errors.New("user wallet not configured")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrNoTransferRail      = errors.New("no transfer rail configured")
	ErrSuggestionNotFound  = errors.New("suggestion not found")
	ErrMemberNotFound      = errors.New("team member not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Backend is the remote data source behind a session.
type Backend interface {
	GetUser(ctx context.Context) (*models.User, error)
	GetSubscriptions(ctx context.Context) ([]models.Subscription, error)
	GetSuggestions(ctx context.Context) ([]models.AiSuggestion, error)
	GetTransactions(ctx context.Context) ([]models.Transaction, error)
	GetMessages(ctx context.Context) ([]models.Message, error)
	GetTeam(ctx context.Context) ([]models.TeamMember, error)
	GetSessions(ctx context.Context) ([]models.Session, error)
	GetReferrals(ctx context.Context) ([]models.Referral, error)

	Login(ctx context.Context, email, password string) (*models.User, error)
	Signup(ctx context.Context, email, password string) (*models.User, error)
	CheckUsername(ctx context.Context, username string) (bool, error)
	UpdateUserProfile(ctx context.Context, userId string, update models.ProfileUpdate) (*models.User, error)
	GetChatResponse(ctx context.Context, subs []models.Subscription, history []models.Message) (models.Message, error)
}

// Deps wires a Controller. Backend and Preferences are required; a nil
// Rail disables transfers, a nil Journal keeps transfers in memory and a
// nil Mirror skips ledger mirroring.
type Deps struct {
	Backend     Backend
	Preferences store.PreferenceStore
	Rail        store.TransferRail
	Journal     store.TransferJournal
	Mirror      store.LedgerMirror
	Bus         *eventbus.Bus
}

// Controller owns the state of a single client session. All mutations are
// serialized behind mu; remote calls run without it and re-acquire it to
// commit.
type Controller struct {
	mu    sync.Mutex
	state *models.AppState

	// sendMu serializes transfers so a balance check and its commit cannot
	// interleave with another transfer.
	sendMu sync.Mutex

	backend Backend
	prefs   *prefs.Store
	rail    store.TransferRail
	journal store.TransferJournal
	mirror  store.LedgerMirror
	bus     *eventbus.Bus
	now     func() time.Time
}

func NewController(ctx context.Context, deps Deps) (*Controller, error) {
	if deps.Backend == nil {
		return nil, errors.New("controller requires a backend")
	}
	if deps.Preferences == nil {
		return nil, errors.New("controller requires a preference store")
	}
	if deps.Journal == nil {
		deps.Journal = store.NewMemoryTransferJournal()
	}
	if deps.Bus == nil {
		deps.Bus = eventbus.New(0)
	}

	p := prefs.New(deps.Preferences)
	c := &Controller{
		state:   state.New(p.LoadNotificationSettings(ctx), p.LoadPreferences(ctx)),
		backend: deps.Backend,
		prefs:   p,
		rail:    deps.Rail,
		journal: deps.Journal,
		mirror:  deps.Mirror,
		bus:     deps.Bus,
		now:     time.Now,
	}

	railName := "none"
	if c.rail != nil {
		railName = c.rail.Name()
	}
	zap.L().Info("Controller initialized",
		zap.String("rail", railName),
		zap.Bool("ledger_mirror", c.mirror != nil),
		zap.String("theme", string(c.state.Preferences.Theme)))
	return c, nil
}

func (c *Controller) Bus() *eventbus.Bus {
	return c.bus
}

// Snapshot returns a deep copy of the session state, safe to render or
// serialize while the controller keeps mutating.
func (c *Controller) Snapshot() models.AppState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneState(c.state)
}

// HealthCheck verifies the preference store answers.
func (c *Controller) HealthCheck(ctx context.Context) error {
	if _, err := c.prefs.LastImportHash(ctx); err != nil {
		return err
	}
	return nil
}

// toast and notify must be called with mu held.
func (c *Controller) toast(message string, kind models.ToastKind) {
	c.bus.Toast(message, kind)
}

func (c *Controller) notify(message string, t models.NotificationType) {
	if n := state.PushNotification(c.state, message, t, c.now()); n != nil {
		c.bus.Notify(*n)
	}
}

func (c *Controller) userId() string {
	if c.state.User == nil {
		return ""
	}
	return c.state.User.Id
}

// mirrorTransactions posts completed transactions to the ledger mirror.
// Call it without mu held. Failures are logged only: the mirror is an
// audit copy and never blocks the session.
func (c *Controller) mirrorTransactions(ctx context.Context, userId string, txs ...models.Transaction) {
	if c.mirror == nil || userId == "" {
		return
	}
	for _, tx := range txs {
		if tx.Status != models.StatusCompleted {
			continue
		}
		if err := c.mirror.RecordTransaction(ctx, userId, tx); err != nil {
			zap.L().Warn("Failed to mirror transaction",
				zap.String("user_id", userId),
				zap.String("transaction_id", tx.Id),
				zap.Error(err))
		}
	}
}

func cloneState(s *models.AppState) models.AppState {
	out := *s
	if s.User != nil {
		u := *s.User
		u.Balances = make(map[string]decimal.Decimal, len(s.User.Balances))
		for k, v := range s.User.Balances {
			u.Balances[k] = v
		}
		out.User = &u
	}
	out.OpeningBalances = make(map[string]decimal.Decimal, len(s.OpeningBalances))
	for k, v := range s.OpeningBalances {
		out.OpeningBalances[k] = v
	}
	out.Subscriptions = make([]models.Subscription, len(s.Subscriptions))
	for i, sub := range s.Subscriptions {
		sub.AvailablePlans = append([]models.Plan(nil), sub.AvailablePlans...)
		out.Subscriptions[i] = sub
	}
	out.Transactions = append([]models.Transaction(nil), s.Transactions...)
	out.Suggestions = append([]models.AiSuggestion(nil), s.Suggestions...)
	out.Messages = append([]models.Message(nil), s.Messages...)
	out.Notifications = append([]models.Notification(nil), s.Notifications...)
	out.Team = append([]models.TeamMember(nil), s.Team...)
	out.Sessions = append([]models.Session(nil), s.Sessions...)
	out.Referrals = append([]models.Referral(nil), s.Referrals...)
	out.ResolvedSuggestions = nil
	return out
}
