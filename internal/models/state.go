package models

import "github.com/shopspring/decimal"

// Page is the top-level routing state of a session.
type Page string

const (
	PageLanding      Page = "landing"
	PageLogin        Page = "login"
	PageSignup       Page = "signup"
	PageProfileSetup Page = "profileSetup"
	PageApp          Page = "app"
)

// AppState is everything a signed-in session holds in memory. It is owned
// by a single controller and discarded on logout.
type AppState struct {
	Page Page  `json:"page"`
	View View  `json:"view"`
	User *User `json:"user"`

	// OpeningBalances is the balance carried into the session before the
	// first known transaction. Balances are always opening + fold.
	OpeningBalances map[string]decimal.Decimal `json:"openingBalances"`

	Subscriptions []Subscription `json:"subscriptions"`
	Transactions  []Transaction  `json:"transactions"`
	Suggestions   []AiSuggestion `json:"suggestions"`
	Messages      []Message      `json:"messages"`
	Notifications []Notification `json:"notifications"`
	HasUnread     bool           `json:"hasUnreadNotifications"`
	Team          []TeamMember   `json:"team"`
	Sessions      []Session      `json:"sessions"`
	Referrals     []Referral     `json:"referrals"`

	NotificationSettings NotificationSettings `json:"notificationSettings"`
	Preferences          Preferences          `json:"preferences"`

	// ResolvedSuggestions remembers applied or dismissed suggestion ids so a
	// refresh cannot bring them back.
	ResolvedSuggestions map[string]bool `json:"-"`
}

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// Toast is a transient user-facing message.
type Toast struct {
	Message string    `json:"message"`
	Kind    ToastKind `json:"kind"`
}
