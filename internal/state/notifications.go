package state

import (
	"time"

	"loopwise-go/internal/models"
)

// NotificationAllowed applies the per-type user settings. Types without a
// setting always post.
func NotificationAllowed(settings models.NotificationSettings, t models.NotificationType) bool {
	switch t {
	case models.NotificationSuggestion:
		return settings.AiSuggestions
	case models.NotificationSecurity:
		return settings.SecurityAlerts
	}
	return true
}

// PushNotification prepends a notification and trims the ring. It returns
// the posted notification, or nil when the type is muted.
func PushNotification(s *models.AppState, message string, t models.NotificationType, now time.Time) *models.Notification {
	if !NotificationAllowed(s.NotificationSettings, t) {
		return nil
	}
	n := models.Notification{
		Id:        NewId("notif"),
		Message:   message,
		Timestamp: now,
		Type:      t,
	}
	s.Notifications = append([]models.Notification{n}, s.Notifications...)
	if len(s.Notifications) > MaxNotifications {
		s.Notifications = s.Notifications[:MaxNotifications]
	}
	s.HasUnread = true
	return &n
}

// MarkAllRead flags every notification as read.
func MarkAllRead(s *models.AppState) {
	for i := range s.Notifications {
		s.Notifications[i].Read = true
	}
	s.HasUnread = false
}
