package main

import (
	"context"
	"testing"
	"time"

	"loopwise-go/internal/api"
	"loopwise-go/internal/mockapi"
	"loopwise-go/internal/models"
	"loopwise-go/internal/store"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) *model {
	t.Helper()
	mock, err := mockapi.NewService(models.MockConfig{LatencyScale: 0}, nil)
	require.NoError(t, err)
	controller, err := api.NewController(context.Background(), api.Deps{
		Backend:     mock,
		Preferences: store.NewMemoryPreferenceStore(),
	})
	require.NoError(t, err)

	m := newModel(context.Background(), controller, time.Minute)
	t.Cleanup(m.unsubscribe)
	return m
}

// runDone executes a batched command and feeds its doneMsg back into the model.
func runDone(t *testing.T, m *model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	msgs := []tea.Msg{cmd()}
	if batch, ok := msgs[0].(tea.BatchMsg); ok {
		msgs = msgs[:0]
		for _, c := range batch {
			if c != nil {
				msgs = append(msgs, c())
			}
		}
	}
	for _, msg := range msgs {
		if done, ok := msg.(doneMsg); ok {
			m.Update(done)
			return
		}
	}
	t.Fatal("command produced no doneMsg")
}

func TestModelStartsAtLogin(t *testing.T) {
	m := newTestModel(t)

	assert.False(t, m.signedIn())
	assert.Equal(t, modeEmail, m.mode)
	assert.Contains(t, m.View(), "Sign in to continue.")

	_, _ = m.submit(modeEmail, "jane@example.com")
	assert.Equal(t, modePassword, m.mode)
	assert.Equal(t, textinput.EchoPassword, m.input.EchoMode)
}

func TestModelLoginFlow(t *testing.T) {
	m := newTestModel(t)

	m.stopInput()
	_, cmd := m.submit(modePassword, "secret")
	runDone(t, m, cmd)

	require.True(t, m.signedIn())
	assert.Equal(t, models.ViewDashboard, m.snapshot.View)
	assert.Contains(t, m.View(), "Balance: 10000.00 USDC")
}

func TestModelNavigationAndStatusChange(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.controller.Login(context.Background(), "jane@example.com", "secret"))
	m.stopInput()
	m.refresh()

	m.moveView(1)
	assert.Equal(t, models.ViewSubscriptions, m.snapshot.View)
	require.Greater(t, m.listLen(), 1)

	m.moveView(-1)
	m.moveView(-1)
	assert.Equal(t, models.ViewSettings, m.snapshot.View, "navigation wraps around")

	m.controller.SetView(models.ViewSubscriptions)
	m.refresh()
	sub, ok := m.selectedSubscription()
	require.True(t, ok)
	require.Equal(t, models.SubscriptionActive, sub.Status)

	_, cmd := m.handleViewKey("p")
	runDone(t, m, cmd)
	assert.False(t, m.busy)
	assert.Equal(t, models.SubscriptionPaused, m.snapshot.Subscriptions[0].Status)
}

func TestModelDepositRejectsBadAmount(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.controller.Login(context.Background(), "jane@example.com", "secret"))
	m.refresh()

	_, cmd := m.submit(modeDeposit, "lots")
	assert.Nil(t, cmd)
	assert.Equal(t, "Enter a valid amount.", m.status)

	_, cmd = m.submit(modeDeposit, "25")
	runDone(t, m, cmd)
	assert.Equal(t, "10025.00", m.snapshot.User.Balance(models.DefaultCurrency).StringFixed(2))
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
