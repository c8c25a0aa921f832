package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"loopwise-go/internal/api"
	"loopwise-go/internal/eventbus"
	"loopwise-go/internal/models"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const exportFileName = "loopwise-transactions.csv"

type inputMode string

const (
	modeNone       inputMode = ""
	modeEmail      inputMode = "email"
	modePassword   inputMode = "password"
	modeChat       inputMode = "chat"
	modeDeposit    inputMode = "deposit"
	modeSendTo     inputMode = "sendTo"
	modeSendAmount inputMode = "sendAmount"
	modeImport     inputMode = "import"
	modeInvite     inputMode = "invite"
)

var inputPrompts = map[inputMode]string{
	modeEmail:      "Email: ",
	modePassword:   "Password: ",
	modeChat:       "Ask Loopwise: ",
	modeDeposit:    "Deposit amount (USDC): ",
	modeSendTo:     "Recipient wallet id: ",
	modeSendAmount: "Amount to send (USDC): ",
	modeImport:     "CSV file to import: ",
	modeInvite:     "Invite email: ",
}

// model is the bubbletea front end over a single Controller.
type model struct {
	ctx         context.Context
	controller  *api.Controller
	events      <-chan eventbus.Event
	unsubscribe func()
	settleEvery time.Duration

	snapshot   models.AppState
	cursor     int
	mode       inputMode
	input      textinput.Model
	spinner    spinner.Model
	busy       bool
	status     string
	statusKind models.ToastKind
	email      string
	sendTo     string
	width      int
	height     int
}

type eventMsg eventbus.Event

type doneMsg struct {
	action string
	err    error
}

type settleTickMsg time.Time

func newModel(ctx context.Context, controller *api.Controller, settleEvery time.Duration) *model {
	events, unsubscribe := controller.Bus().Subscribe()

	ti := textinput.New()
	ti.CharLimit = 256
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if settleEvery <= 0 {
		settleEvery = 30 * time.Second
	}

	m := &model{
		ctx:         ctx,
		controller:  controller,
		events:      events,
		unsubscribe: unsubscribe,
		settleEvery: settleEvery,
		input:       ti,
		spinner:     sp,
		snapshot:    controller.Snapshot(),
	}
	m.startInput(modeEmail, "")
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent(), m.scheduleSettle())
}

func (m *model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func (m *model) scheduleSettle() tea.Cmd {
	return tea.Tick(m.settleEvery, func(t time.Time) tea.Msg { return settleTickMsg(t) })
}

func (m *model) signedIn() bool {
	return m.snapshot.Page == models.PageApp && m.snapshot.User != nil
}

func (m *model) refresh() {
	m.snapshot = m.controller.Snapshot()
	if n := m.listLen(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode != modeNone {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)
	case eventMsg:
		if msg.Kind == eventbus.KindToast && msg.Toast != nil {
			m.status = msg.Toast.Message
			m.statusKind = msg.Toast.Kind
		}
		m.refresh()
		return m, m.waitForEvent()
	case doneMsg:
		m.busy = false
		if msg.err != nil {
			zap.L().Warn("UI action failed", zap.String("action", msg.action), zap.Error(msg.err))
			if m.status == "" {
				m.status = "error: " + msg.err.Error()
				m.statusKind = models.ToastError
			}
		}
		m.refresh()
		if !m.signedIn() && m.mode == modeNone {
			return m, m.startInput(modeEmail, "")
		}
	case settleTickMsg:
		if !m.signedIn() {
			return m, m.scheduleSettle()
		}
		return m, tea.Batch(m.settleCmd(), m.scheduleSettle())
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.signedIn() {
		if k.String() == "q" {
			return m, tea.Quit
		}
		return m, m.startInput(modeEmail, "")
	}

	switch k.String() {
	case "q":
		return m, tea.Quit
	case "tab", "right", "l":
		m.moveView(1)
	case "shift+tab", "left", "h":
		m.moveView(-1)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}
	case "c":
		return m, m.startInput(modeChat, "")
	case "t":
		return m.run("toggle theme", func() error {
			_, err := m.controller.ToggleTheme(m.ctx)
			return err
		})
	case "n":
		m.controller.MarkNotificationsRead()
		m.refresh()
	case "o":
		m.controller.Logout()
		m.refresh()
		return m, m.startInput(modeEmail, "")
	default:
		return m.handleViewKey(k.String())
	}
	return m, nil
}

// handleViewKey covers the keys that only mean something on one view.
func (m *model) handleViewKey(key string) (tea.Model, tea.Cmd) {
	switch m.snapshot.View {
	case models.ViewDashboard:
		s, ok := m.selectedSuggestion()
		if !ok {
			return m, nil
		}
		switch key {
		case "enter":
			return m.run("apply suggestion", func() error { return m.controller.ApplySuggestion(s.Id) })
		case "x":
			return m.run("dismiss suggestion", func() error { return m.controller.DismissSuggestion(s.Id) })
		}
	case models.ViewSubscriptions:
		sub, ok := m.selectedSubscription()
		if !ok {
			return m, nil
		}
		status := map[string]models.SubscriptionStatus{
			"a": models.SubscriptionActive,
			"p": models.SubscriptionPaused,
			"x": models.SubscriptionCancelled,
		}[key]
		if status != "" {
			return m.run("change status", func() error {
				_, err := m.controller.ChangeSubscriptionStatus(m.ctx, sub.Id, status)
				return err
			})
		}
	case models.ViewPayments:
		switch key {
		case "d":
			return m, m.startInput(modeDeposit, "")
		case "s":
			return m, m.startInput(modeSendTo, "")
		case "r":
			return m, m.settleCmd()
		}
	case models.ViewAudit:
		switch key {
		case "e":
			return m.run("export", m.exportTransactions)
		case "i":
			return m, m.startInput(modeImport, "")
		}
	case models.ViewTeam:
		switch key {
		case "i":
			return m, m.startInput(modeInvite, "")
		case "x":
			if m.cursor < len(m.snapshot.Team) {
				id := m.snapshot.Team[m.cursor].Id
				return m.run("remove member", func() error { return m.controller.RemoveMember(id) })
			}
		}
	case models.ViewSettings:
		if key == "x" && m.cursor < len(m.snapshot.Sessions) {
			id := m.snapshot.Sessions[m.cursor].Id
			return m.run("revoke session", func() error { return m.controller.RevokeSession(id) })
		}
	}
	return m, nil
}

func (m *model) handleInputKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyEsc:
		if m.signedIn() {
			m.stopInput()
		}
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.stopInput()
		return m.submit(mode, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	return m, cmd
}

func (m *model) submit(mode inputMode, value string) (tea.Model, tea.Cmd) {
	switch mode {
	case modeEmail:
		if value == "" {
			return m, m.startInput(modeEmail, "")
		}
		m.email = value
		return m, m.startInput(modePassword, "")
	case modePassword:
		email := m.email
		return m.run("login", func() error { return m.controller.Login(m.ctx, email, value) })
	case modeChat:
		if value == "" {
			return m, nil
		}
		return m.run("chat", func() error {
			_, err := m.controller.SendMessage(m.ctx, value)
			return err
		})
	case modeDeposit:
		amount, err := decimal.NewFromString(value)
		if err != nil {
			m.status, m.statusKind = "Enter a valid amount.", models.ToastError
			return m, nil
		}
		return m.run("deposit", func() error {
			_, err := m.controller.AddFunds(m.ctx, amount)
			return err
		})
	case modeSendTo:
		if value == "" {
			return m, nil
		}
		m.sendTo = value
		return m, m.startInput(modeSendAmount, "")
	case modeSendAmount:
		amount, err := decimal.NewFromString(value)
		if err != nil {
			m.status, m.statusKind = "Enter a valid amount.", models.ToastError
			return m, nil
		}
		req := models.SendFundsRequest{RecipientId: m.sendTo, Amount: amount}
		return m.run("send funds", func() error {
			_, err := m.controller.SendFunds(m.ctx, req)
			return err
		})
	case modeImport:
		if value == "" {
			return m, nil
		}
		return m.run("import", func() error {
			data, err := os.ReadFile(value)
			if err != nil {
				return fmt.Errorf("unable to read %s: %w", value, err)
			}
			_, err = m.controller.ImportCSV(m.ctx, data)
			return err
		})
	case modeInvite:
		if value == "" {
			return m, nil
		}
		m.controller.InviteMember(value, "Member")
		m.refresh()
	}
	return m, nil
}

func (m *model) startInput(mode inputMode, value string) tea.Cmd {
	m.mode = mode
	m.input.Reset()
	m.input.SetValue(value)
	m.input.Prompt = inputPrompts[mode]
	m.input.EchoMode = textinput.EchoNormal
	if mode == modePassword {
		m.input.EchoMode = textinput.EchoPassword
	}
	return m.input.Focus()
}

func (m *model) stopInput() {
	m.mode = modeNone
	m.input.Blur()
	m.input.Reset()
}

// run executes fn off the UI goroutine; the controller publishes its own
// toasts, so only the error is carried back.
func (m *model) run(action string, fn func() error) (tea.Model, tea.Cmd) {
	m.busy = true
	m.status = ""
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return doneMsg{action: action, err: fn()}
	})
}

func (m *model) settleCmd() tea.Cmd {
	return func() tea.Msg {
		m.controller.SettleDuePayments(m.ctx)
		_, err := m.controller.ReconcilePendingTransfers(m.ctx)
		return doneMsg{action: "settle", err: err}
	}
}

func (m *model) exportTransactions() error {
	f, err := os.Create(exportFileName)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", exportFileName, err)
	}
	defer f.Close()
	return m.controller.ExportCSV(f)
}

func (m *model) moveView(step int) {
	idx := 0
	for i, v := range models.Views {
		if v == m.snapshot.View {
			idx = i
			break
		}
	}
	idx = (idx + step + len(models.Views)) % len(models.Views)
	m.controller.SetView(models.Views[idx])
	m.cursor = 0
	m.refresh()
}

func (m *model) listLen() int {
	switch m.snapshot.View {
	case models.ViewDashboard:
		return len(m.snapshot.Suggestions)
	case models.ViewSubscriptions:
		return len(m.snapshot.Subscriptions)
	case models.ViewPayments, models.ViewAudit:
		return len(m.snapshot.Transactions)
	case models.ViewTeam:
		return len(m.snapshot.Team)
	case models.ViewReferrals:
		return len(m.snapshot.Referrals)
	case models.ViewSettings:
		return len(m.snapshot.Sessions)
	}
	return 0
}

func (m *model) selectedSuggestion() (models.AiSuggestion, bool) {
	if m.cursor < len(m.snapshot.Suggestions) {
		return m.snapshot.Suggestions[m.cursor], true
	}
	return models.AiSuggestion{}, false
}

func (m *model) selectedSubscription() (models.Subscription, bool) {
	if m.cursor < len(m.snapshot.Subscriptions) {
		return m.snapshot.Subscriptions[m.cursor], true
	}
	return models.Subscription{}, false
}
