// Package state holds the pure reducers behind the application controller.
// Every function here mutates a *models.AppState in place and performs no
// I/O; callers are responsible for serializing access.
package state

import (
	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
)

// MaxNotifications caps the notification ring.
const MaxNotifications = 20

// New returns a signed-out state carrying the given persisted settings.
func New(settings models.NotificationSettings, prefs models.Preferences) *models.AppState {
	return &models.AppState{
		Page:                 models.PageLanding,
		View:                 models.ViewDashboard,
		OpeningBalances:      map[string]decimal.Decimal{},
		ResolvedSuggestions:  map[string]bool{},
		NotificationSettings: settings,
		Preferences:          prefs,
	}
}

// Reset discards every session entity. Persisted settings survive.
func Reset(s *models.AppState) {
	*s = *New(s.NotificationSettings, s.Preferences)
}
