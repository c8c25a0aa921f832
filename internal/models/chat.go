package models

import "time"

// View is a top-level screen of the app.
type View string

const (
	ViewDashboard     View = "dashboard"
	ViewSubscriptions View = "subscriptions"
	ViewPayments      View = "payments"
	ViewAudit         View = "audit"
	ViewTeam          View = "team"
	ViewReferrals     View = "referrals"
	ViewHelp          View = "help"
	ViewSettings      View = "settings"
)

// Views lists every navigable view in menu order.
var Views = []View{
	ViewDashboard, ViewSubscriptions, ViewPayments, ViewAudit,
	ViewTeam, ViewReferrals, ViewHelp, ViewSettings,
}

func (v View) Valid() bool {
	for _, known := range Views {
		if v == known {
			return true
		}
	}
	return false
}

type Sender string

const (
	SenderUser Sender = "user"
	SenderAi   Sender = "ai"
)

type ActionType string

const (
	ActionNavigate     ActionType = "navigate"
	ActionChangeStatus ActionType = "change_status"
)

// ActionPayload holds the arguments of an assistant command. Which fields
// are set depends on the action type.
type ActionPayload struct {
	View           View               `json:"view,omitempty" validate:"omitempty,oneof=dashboard subscriptions payments audit team referrals help settings"`
	SubscriptionId string             `json:"subscriptionId,omitempty"`
	Status         SubscriptionStatus `json:"status,omitempty" validate:"omitempty,oneof=active paused cancelled"`
}

// Action is a structured command returned by the assistant.
type Action struct {
	Type    ActionType    `json:"type" validate:"required,oneof=navigate change_status"`
	Payload ActionPayload `json:"payload"`
}

type Message struct {
	Id          string    `json:"id"`
	Text        string    `json:"text"`
	Sender      Sender    `json:"sender"`
	Timestamp   time.Time `json:"timestamp"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Action      *Action   `json:"action,omitempty"`
}
