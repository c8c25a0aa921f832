// Package prefs persists user preferences and notification settings as
// versioned JSON records in a store.PreferenceStore.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loopwise-go/internal/models"
	"loopwise-go/internal/store"

	"go.uber.org/zap"
)

// SchemaVersion is written with every record. Older versions are still
// read; missing fields take their defaults.
const SchemaVersion = 1

type preferencesRecord struct {
	Version  int     `json:"version"`
	Language *string `json:"language,omitempty"`
	TimeZone *string `json:"timeZone,omitempty"`
	Theme    *string `json:"theme,omitempty"`
}

type settingsRecord struct {
	Version        int   `json:"version"`
	MonthlyReports *bool `json:"monthlyReports,omitempty"`
	AiSuggestions  *bool `json:"aiSuggestions,omitempty"`
	SecurityAlerts *bool `json:"securityAlerts,omitempty"`
}

// DefaultPreferences uses the host's time zone.
func DefaultPreferences() models.Preferences {
	return models.Preferences{
		Language: "en-US",
		TimeZone: time.Local.String(),
		Theme:    models.ThemeSystem,
	}
}

func DefaultNotificationSettings() models.NotificationSettings {
	return models.NotificationSettings{
		MonthlyReports: true,
		AiSuggestions:  true,
		SecurityAlerts: true,
	}
}

// ValidTheme reports whether t is one of the known themes.
func ValidTheme(t models.Theme) bool {
	switch t {
	case models.ThemeLight, models.ThemeDark, models.ThemeSystem:
		return true
	}
	return false
}

// Store reads and writes settings through a PreferenceStore.
type Store struct {
	backend store.PreferenceStore
}

func New(backend store.PreferenceStore) *Store {
	return &Store{backend: backend}
}

// LoadPreferences never fails: a missing or unreadable record yields defaults.
func (s *Store) LoadPreferences(ctx context.Context) models.Preferences {
	p := DefaultPreferences()
	var rec preferencesRecord
	if !s.load(ctx, store.KeyPreferences, &rec) {
		return p
	}
	if rec.Language != nil && *rec.Language != "" {
		p.Language = *rec.Language
	}
	if rec.TimeZone != nil && *rec.TimeZone != "" {
		p.TimeZone = *rec.TimeZone
	}
	if rec.Theme != nil {
		if theme := models.Theme(*rec.Theme); ValidTheme(theme) {
			p.Theme = theme
		} else {
			zap.L().Warn("Ignoring unknown theme in stored preferences", zap.String("theme", *rec.Theme))
		}
	}
	return p
}

// LoadNotificationSettings never fails: a missing or unreadable record yields defaults.
func (s *Store) LoadNotificationSettings(ctx context.Context) models.NotificationSettings {
	n := DefaultNotificationSettings()
	var rec settingsRecord
	if !s.load(ctx, store.KeyNotificationSettings, &rec) {
		return n
	}
	if rec.MonthlyReports != nil {
		n.MonthlyReports = *rec.MonthlyReports
	}
	if rec.AiSuggestions != nil {
		n.AiSuggestions = *rec.AiSuggestions
	}
	if rec.SecurityAlerts != nil {
		n.SecurityAlerts = *rec.SecurityAlerts
	}
	return n
}

func (s *Store) SavePreferences(ctx context.Context, p models.Preferences) error {
	if !ValidTheme(p.Theme) {
		p.Theme = models.ThemeSystem
	}
	theme := string(p.Theme)
	return s.save(ctx, store.KeyPreferences, preferencesRecord{
		Version:  SchemaVersion,
		Language: &p.Language,
		TimeZone: &p.TimeZone,
		Theme:    &theme,
	})
}

func (s *Store) SaveNotificationSettings(ctx context.Context, n models.NotificationSettings) error {
	return s.save(ctx, store.KeyNotificationSettings, settingsRecord{
		Version:        SchemaVersion,
		MonthlyReports: &n.MonthlyReports,
		AiSuggestions:  &n.AiSuggestions,
		SecurityAlerts: &n.SecurityAlerts,
	})
}

// LastImportHash returns "" when no file has been imported yet.
func (s *Store) LastImportHash(ctx context.Context) (string, error) {
	v, err := s.backend.GetValue(ctx, store.KeyLastImportedFileHash)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read last import hash: %w", err)
	}
	return v, nil
}

func (s *Store) SetLastImportHash(ctx context.Context, hash string) error {
	if err := s.backend.PutValue(ctx, store.KeyLastImportedFileHash, hash); err != nil {
		return fmt.Errorf("failed to store last import hash: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, key string, into any) bool {
	raw, err := s.backend.GetValue(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return false
	}
	if err != nil {
		zap.L().Warn("Failed to read stored settings, using defaults", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		zap.L().Warn("Stored settings are corrupt, using defaults", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) save(ctx context.Context, key string, rec any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.backend.PutValue(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}
