package main

import (
	"fmt"
	"strings"

	"loopwise-go/internal/common"
	"loopwise-go/internal/models"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	accent lipgloss.Color
	muted  lipgloss.Color
	good   lipgloss.Color
	bad    lipgloss.Color
}

var (
	darkPalette  = palette{accent: "#87CEEB", muted: "#6C7086", good: "#A6E3A1", bad: "#F38BA8"}
	lightPalette = palette{accent: "#1E66F5", muted: "#8C8FA1", good: "#40A02B", bad: "#D20F39"}
)

var viewHelp = map[models.View]string{
	models.ViewDashboard:     "enter apply suggestion • x dismiss",
	models.ViewSubscriptions: "a activate • p pause • x cancel",
	models.ViewPayments:      "d deposit • s send • r settle",
	models.ViewAudit:         "e export csv • i import csv",
	models.ViewTeam:          "i invite • x remove",
	models.ViewSettings:      "x revoke session • t theme",
}

func (m *model) palette() palette {
	if m.snapshot.Preferences.Theme == models.ThemeLight {
		return lightPalette
	}
	return darkPalette
}

func (m *model) View() string {
	p := m.palette()
	title := lipgloss.NewStyle().Foreground(p.accent).Bold(true)
	muted := lipgloss.NewStyle().Foreground(p.muted)

	var b strings.Builder
	b.WriteString(title.Render("LOOPWISE"))
	if m.signedIn() {
		b.WriteString("  " + m.renderTabs(p))
	}
	b.WriteString("\n\n")

	if !m.signedIn() {
		b.WriteString("Sign in to continue.\n\n")
	} else {
		b.WriteString(m.renderBody(p))
	}

	if m.mode == modeChat {
		b.WriteString("\n" + m.renderChat(p))
	}
	if m.mode != modeNone {
		b.WriteString("\n" + m.input.View() + "\n")
	}

	b.WriteString("\n" + m.renderStatus(p) + "\n")
	help := "ctrl+c quit"
	if m.signedIn() && m.mode == modeNone {
		help = "tab views • j/k move • c chat • n mark read • t theme • o log out • q quit"
		if extra, ok := viewHelp[m.snapshot.View]; ok {
			help = extra + " • " + help
		}
	} else if m.mode != modeNone {
		help = "enter submit • esc cancel • " + help
	}
	b.WriteString(muted.Render(help))
	return b.String()
}

func (m *model) renderTabs(p palette) string {
	active := lipgloss.NewStyle().Foreground(p.accent).Underline(true)
	inactive := lipgloss.NewStyle().Foreground(p.muted)
	tabs := make([]string, 0, len(models.Views))
	for _, v := range models.Views {
		if v == m.snapshot.View {
			tabs = append(tabs, active.Render(string(v)))
		} else {
			tabs = append(tabs, inactive.Render(string(v)))
		}
	}
	bell := ""
	if m.snapshot.HasUnread {
		bell = lipgloss.NewStyle().Foreground(p.bad).Render("  ●")
	}
	return strings.Join(tabs, " ") + bell
}

func (m *model) renderStatus(p palette) string {
	if m.busy {
		return m.spinner.View() + " working..."
	}
	if m.status == "" {
		return ""
	}
	color := p.accent
	switch m.statusKind {
	case models.ToastSuccess:
		color = p.good
	case models.ToastError:
		color = p.bad
	}
	return lipgloss.NewStyle().Foreground(color).Render(m.status)
}

func (m *model) renderBody(p palette) string {
	switch m.snapshot.View {
	case models.ViewDashboard:
		return m.renderDashboard(p)
	case models.ViewSubscriptions:
		return m.renderSubscriptions(p)
	case models.ViewPayments:
		return m.renderTransactions(p, 15)
	case models.ViewAudit:
		return m.renderAudit(p)
	case models.ViewTeam:
		return m.renderTeam(p)
	case models.ViewReferrals:
		return m.renderReferrals(p)
	case models.ViewSettings:
		return m.renderSettings(p)
	default:
		return "Press c to ask the assistant anything about your subscriptions.\n"
	}
}

func (m *model) row(p palette, i int, text string) string {
	if i == m.cursor {
		return lipgloss.NewStyle().Foreground(p.accent).Render("> "+text) + "\n"
	}
	return "  " + text + "\n"
}

func (m *model) renderDashboard(p palette) string {
	var b strings.Builder
	user := m.snapshot.User
	fmt.Fprintf(&b, "Hello, %s\n", user.DisplayName)
	fmt.Fprintf(&b, "Balance: %s %s\n\n", user.Balance(models.DefaultCurrency).StringFixed(2), models.DefaultCurrency)

	summary := m.controller.Summary()
	fmt.Fprintf(&b, "Active subscriptions: %d   Monthly cost: %s\n",
		summary.ActiveSubscriptions, summary.TotalMonthlyCost.StringFixed(2))
	if summary.UpcomingPayment != nil {
		fmt.Fprintf(&b, "Next payment: %s on %s\n",
			summary.UpcomingPayment.Name, summary.UpcomingPayment.NextPayment.Format("Jan 2"))
	}

	b.WriteString("\nSuggestions\n")
	if len(m.snapshot.Suggestions) == 0 {
		b.WriteString("  nothing to suggest right now\n")
	}
	for i, s := range m.snapshot.Suggestions {
		b.WriteString(m.row(p, i, fmt.Sprintf("%s (save %s/mo)", s.Title, s.EstimatedSavings.StringFixed(2))))
	}

	if unread := m.unreadNotifications(); len(unread) > 0 {
		b.WriteString("\nNotifications\n")
		for _, n := range unread {
			fmt.Fprintf(&b, "  • %s\n", n.Message)
		}
	}
	return b.String()
}

func (m *model) unreadNotifications() []models.Notification {
	var unread []models.Notification
	for _, n := range m.snapshot.Notifications {
		if !n.Read {
			unread = append(unread, n)
		}
		if len(unread) == 5 {
			break
		}
	}
	return unread
}

func (m *model) renderSubscriptions(p palette) string {
	var b strings.Builder
	for i, s := range m.snapshot.Subscriptions {
		plan := "-"
		if cp := s.CurrentPlan(); cp != nil {
			plan = cp.Name
		}
		next := "-"
		if !s.NextPayment.IsZero() {
			next = s.NextPayment.Format("2006-01-02")
		}
		b.WriteString(m.row(p, i, fmt.Sprintf("%-22s %-10s %-12s %8s  next %s",
			s.Name, s.Status, plan, s.MonthlyCost().StringFixed(2), next)))
	}
	return b.String()
}

func (m *model) renderTransactions(p palette, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Wallet %s   Balance %s %s\n\n",
		common.ShortId(m.snapshot.User.WalletId),
		m.snapshot.User.Balance(models.DefaultCurrency).StringFixed(2),
		models.DefaultCurrency)

	start := 0
	if m.cursor >= limit {
		start = m.cursor - limit + 1
	}
	txs := m.snapshot.Transactions
	for i := start; i < len(txs) && i < start+limit; i++ {
		tx := txs[i]
		b.WriteString(m.row(p, i, fmt.Sprintf("%s  %-26s %10s  %-9s %s",
			tx.Timestamp.Format("Jan 02"), tx.Description, common.SignedAmount(tx), tx.Status, common.ShortId(tx.TxId))))
	}
	return b.String()
}

func (m *model) renderAudit(p palette) string {
	var b strings.Builder
	summary := m.controller.Summary()
	fmt.Fprintf(&b, "Income %s   Expense %s\n", summary.TotalIncome.StringFixed(2), summary.TotalExpense.StringFixed(2))
	for _, pt := range summary.SpendingTrend {
		fmt.Fprintf(&b, "  %s  %s\n", pt.Month, pt.Amount.StringFixed(2))
	}
	b.WriteString("\n")
	b.WriteString(m.renderTransactions(p, 10))
	return b.String()
}

func (m *model) renderTeam(p palette) string {
	var b strings.Builder
	for i, t := range m.snapshot.Team {
		b.WriteString(m.row(p, i, fmt.Sprintf("%-20s %-28s %-7s %s", t.Name, t.Email, t.Role, t.Status)))
	}
	return b.String()
}

func (m *model) renderReferrals(p palette) string {
	var b strings.Builder
	for i, r := range m.snapshot.Referrals {
		b.WriteString(m.row(p, i, fmt.Sprintf("%-28s %-10s %-9s %s", r.FriendEmail, r.DateJoined, r.Status, r.RewardAmount.StringFixed(2))))
	}
	return b.String()
}

func (m *model) renderSettings(p palette) string {
	var b strings.Builder
	prefs := m.snapshot.Preferences
	ns := m.snapshot.NotificationSettings
	fmt.Fprintf(&b, "Theme: %s   Language: %s   Time zone: %s\n", prefs.Theme, prefs.Language, prefs.TimeZone)
	fmt.Fprintf(&b, "Notifications: %+v\n\nSessions\n", ns)
	for i, s := range m.snapshot.Sessions {
		current := ""
		if s.IsCurrent {
			current = " (this device)"
		}
		b.WriteString(m.row(p, i, fmt.Sprintf("%-24s %-18s %s%s", s.Device, s.Location, s.LastActive, current)))
	}
	return b.String()
}

func (m *model) renderChat(p palette) string {
	user := lipgloss.NewStyle().Foreground(p.accent)
	ai := lipgloss.NewStyle().Foreground(p.good)

	msgs := m.snapshot.Messages
	if len(msgs) > 6 {
		msgs = msgs[len(msgs)-6:]
	}
	var b strings.Builder
	for _, msg := range msgs {
		if msg.Sender == models.SenderUser {
			b.WriteString(user.Render("you: ") + msg.Text + "\n")
		} else {
			b.WriteString(ai.Render("ai:  ") + msg.Text + "\n")
		}
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.muted).Padding(0, 1).Render(strings.TrimRight(b.String(), "\n"))
}
