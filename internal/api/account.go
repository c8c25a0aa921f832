/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"fmt"

	"loopwise-go/internal/models"
	"loopwise-go/internal/prefs"
	"loopwise-go/internal/state"

	"go.uber.org/zap"
)

func (c *Controller) SetView(view models.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.View = view
	c.bus.Navigate(view)
}

func (c *Controller) MarkNotificationsRead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	state.MarkAllRead(c.state)
}

func (c *Controller) InviteMember(email, role string) models.TeamMember {
	c.mu.Lock()
	defer c.mu.Unlock()
	member := state.AddTeamMember(c.state, email, role)
	c.notify(fmt.Sprintf("Invited %s to the team.", email), models.NotificationTeam)
	c.toast("Invitation sent!", models.ToastSuccess)
	zap.L().Info("Team member invited", zap.String("member_id", member.Id), zap.String("role", role))
	return member
}

func (c *Controller) RemoveMember(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	member, ok := state.RemoveTeamMember(c.state, id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMemberNotFound, id)
	}
	c.notify(fmt.Sprintf("Removed %s from the team.", member.Name), models.NotificationTeam)
	c.toast(fmt.Sprintf("%s removed.", member.Name), models.ToastInfo)
	return nil
}

func (c *Controller) ResendInvite(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify(fmt.Sprintf("Resent invitation to %s.", email), models.NotificationTeam)
	c.toast(fmt.Sprintf("Invitation resent to %s!", email), models.ToastSuccess)
}

// UpdateProfile replaces the editable fields of the signed-in user. An
// empty bio clears it.
func (c *Controller) UpdateProfile(update models.ProfileUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := c.state.User
	if u == nil {
		return ErrNotSignedIn
	}
	u.DisplayName = update.DisplayName
	u.Username = update.Username
	u.Bio = update.Bio
	c.notify("Your profile has been updated.", models.NotificationSecurity)
	c.toast("Profile saved successfully!", models.ToastSuccess)
	return nil
}

func (c *Controller) UpdateAvatar(avatarUrl string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.User == nil {
		return ErrNotSignedIn
	}
	c.state.User.AvatarUrl = avatarUrl
	c.notify("Profile picture updated.", models.NotificationSecurity)
	c.toast("Profile picture updated!", models.ToastSuccess)
	return nil
}

func (c *Controller) RevokeSession(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !state.RevokeSession(c.state, id) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	c.notify("A device session was revoked.", models.NotificationSecurity)
	c.toast("Session signed out.", models.ToastInfo)
	return nil
}

// UpdateNotificationSettings applies and persists the settings. A failed
// write keeps the new settings for this session.
func (c *Controller) UpdateNotificationSettings(ctx context.Context, settings models.NotificationSettings) error {
	c.mu.Lock()
	c.state.NotificationSettings = settings
	c.toast("Notification settings saved!", models.ToastSuccess)
	c.mu.Unlock()

	if err := c.prefs.SaveNotificationSettings(ctx, settings); err != nil {
		zap.L().Error("Failed to persist notification settings", zap.Error(err))
		return err
	}
	return nil
}

func (c *Controller) UpdatePreferences(ctx context.Context, p models.Preferences) error {
	if !prefs.ValidTheme(p.Theme) {
		p.Theme = models.ThemeSystem
	}
	c.mu.Lock()
	c.state.Preferences = p
	c.toast("Preferences saved!", models.ToastSuccess)
	c.mu.Unlock()

	if err := c.prefs.SavePreferences(ctx, p); err != nil {
		zap.L().Error("Failed to persist preferences", zap.Error(err))
		return err
	}
	return nil
}

// ToggleTheme flips dark to light and anything else to dark.
func (c *Controller) ToggleTheme(ctx context.Context) (models.Theme, error) {
	c.mu.Lock()
	if c.state.Preferences.Theme == models.ThemeDark {
		c.state.Preferences.Theme = models.ThemeLight
	} else {
		c.state.Preferences.Theme = models.ThemeDark
	}
	p := c.state.Preferences
	c.mu.Unlock()

	if err := c.prefs.SavePreferences(ctx, p); err != nil {
		zap.L().Error("Failed to persist preferences", zap.Error(err))
		return p.Theme, err
	}
	return p.Theme, nil
}
