package api

import (
	"context"
	"fmt"

	"loopwise-go/internal/models"
	"loopwise-go/internal/state"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	loadFailedText = "Failed to load your data. Please try again."
	welcomeBack    = "Welcome back!"
)

// LoadAppData fetches every session collection in parallel and opens the
// dashboard. The first failure cancels the remaining fetches and sends the
// user back to the login page.
func (c *Controller) LoadAppData(ctx context.Context, welcome string) error {
	var (
		user        *models.User
		subs        []models.Subscription
		suggestions []models.AiSuggestion
		txs         []models.Transaction
		messages    []models.Message
		team        []models.TeamMember
		sessions    []models.Session
		referrals   []models.Referral
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { user, err = c.backend.GetUser(gctx); return })
	g.Go(func() (err error) { subs, err = c.backend.GetSubscriptions(gctx); return })
	g.Go(func() (err error) { suggestions, err = c.backend.GetSuggestions(gctx); return })
	g.Go(func() (err error) { txs, err = c.backend.GetTransactions(gctx); return })
	g.Go(func() (err error) { messages, err = c.backend.GetMessages(gctx); return })
	g.Go(func() (err error) { team, err = c.backend.GetTeam(gctx); return })
	g.Go(func() (err error) { sessions, err = c.backend.GetSessions(gctx); return })
	g.Go(func() (err error) { referrals, err = c.backend.GetReferrals(gctx); return })

	if err := g.Wait(); err != nil {
		zap.L().Error("Failed to load app data", zap.Error(err))
		c.mu.Lock()
		c.state.Page = models.PageLogin
		c.toast(loadFailedText, models.ToastError)
		c.mu.Unlock()
		return fmt.Errorf("failed to load app data: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	state.LoadHistory(c.state, user, txs)
	c.state.Subscriptions = subs
	state.SetSuggestions(c.state, suggestions)
	c.state.Messages = messages
	c.state.Team = team
	c.state.Sessions = sessions
	c.state.Referrals = referrals
	c.state.Page = models.PageApp
	c.state.View = models.ViewDashboard
	c.toast(welcome, models.ToastSuccess)

	zap.L().Info("App data loaded",
		zap.String("user_id", user.Id),
		zap.Int("subscriptions", len(subs)),
		zap.Int("transactions", len(txs)),
		zap.String("balance", user.Balance(models.DefaultCurrency).String()))
	return nil
}

func (c *Controller) Login(ctx context.Context, email, password string) error {
	if _, err := c.backend.Login(ctx, email, password); err != nil {
		c.mu.Lock()
		c.toast("Login failed. Please try again.", models.ToastError)
		c.mu.Unlock()
		return fmt.Errorf("login failed: %w", err)
	}
	return c.LoadAppData(ctx, welcomeBack)
}

// Signup creates the account and moves to profile setup. Data is loaded
// once the profile is complete.
func (c *Controller) Signup(ctx context.Context, email, password string) (*models.User, error) {
	user, err := c.backend.Signup(ctx, email, password)
	if err != nil {
		c.mu.Lock()
		c.toast("Sign up failed. Please try again.", models.ToastError)
		c.mu.Unlock()
		return nil, fmt.Errorf("signup failed: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.User = user
	state.RecomputeBalances(c.state)
	c.state.Page = models.PageProfileSetup
	zap.L().Info("User signed up", zap.String("user_id", user.Id), zap.String("email", user.Email))
	u := *user
	return &u, nil
}

// CheckUsername reports whether the username is still free.
func (c *Controller) CheckUsername(ctx context.Context, username string) (bool, error) {
	return c.backend.CheckUsername(ctx, username)
}

func (c *Controller) CompleteProfileSetup(ctx context.Context, update models.ProfileUpdate) error {
	c.mu.Lock()
	userId := c.userId()
	c.mu.Unlock()
	if userId == "" {
		return ErrNotSignedIn
	}

	user, err := c.backend.UpdateUserProfile(ctx, userId, update)
	if err != nil {
		c.mu.Lock()
		c.toast("Could not save your profile.", models.ToastError)
		c.mu.Unlock()
		return fmt.Errorf("profile setup failed: %w", err)
	}

	c.mu.Lock()
	c.state.User = user
	c.mu.Unlock()
	return c.LoadAppData(ctx, fmt.Sprintf("Welcome, %s! Your setup is complete.", user.DisplayName))
}

// Logout discards every session entity. Settings and preferences survive.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	zap.L().Info("User logged out", zap.String("user_id", c.userId()))
	state.Reset(c.state)
	c.toast("You have been logged out.", models.ToastInfo)
}
