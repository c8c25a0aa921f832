package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type NotificationType string

const (
	NotificationSubscription NotificationType = "subscription"
	NotificationPayment      NotificationType = "payment"
	NotificationTransfer     NotificationType = "transfer"
	NotificationSecurity     NotificationType = "security"
	NotificationSuggestion   NotificationType = "suggestion"
	NotificationTeam         NotificationType = "team"
)

type Notification struct {
	Id        string           `json:"id"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
}

// NotificationSettings gates which notification types are posted.
type NotificationSettings struct {
	MonthlyReports bool `json:"monthlyReports"`
	AiSuggestions  bool `json:"aiSuggestions"`
	SecurityAlerts bool `json:"securityAlerts"`
}

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type Preferences struct {
	Language string `json:"language"`
	TimeZone string `json:"timeZone"`
	Theme    Theme  `json:"theme"`
}

type TeamMember struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`   // Admin or Member
	Status string `json:"status"` // active or pending
}

type Session struct {
	Id         string `json:"id"`
	Device     string `json:"device"`
	Location   string `json:"location"`
	LastActive string `json:"lastActive"`
	IsCurrent  bool   `json:"isCurrent"`
}

type Referral struct {
	Id           string          `json:"id"`
	FriendEmail  string          `json:"friendEmail"`
	DateJoined   string          `json:"dateJoined"`
	Status       string          `json:"status"` // joined, paid or rewarded
	RewardAmount decimal.Decimal `json:"rewardAmount"`
}
