package store

import (
	"time"

	"budgetku/internal/core"
)

// SetCurrency stores the display currency code. Any code is accepted.
func (s *Store) SetCurrency(code string) {
	_ = s.mutate(OpSetCurrency, false, func() (bool, error) {
		if s.state.SelectedCurrency == code {
			return false, nil
		}
		s.state.SelectedCurrency = code
		return true, nil
	})
}

func (s *Store) SetSelectedPeriod(p core.Period) error {
	if !p.IsValid() {
		return core.ErrInvalidPeriod
	}
	return s.mutate(OpSetPeriod, false, func() (bool, error) {
		if s.state.SelectedPeriod == p {
			return false, nil
		}
		s.state.SelectedPeriod = p
		return true, nil
	})
}

// UpdateNotificationSettings merges patch into the notification toggles and
// returns the result.
func (s *Store) UpdateNotificationSettings(patch core.NotificationSettingsPatch) core.NotificationSettings {
	var out core.NotificationSettings
	_ = s.mutate(OpUpdateNotification, false, func() (bool, error) {
		next := s.state.NotificationSettings.Apply(patch)
		out = next
		if next == s.state.NotificationSettings {
			return false, nil
		}
		s.state.NotificationSettings = next
		return true, nil
	})
	return out
}

func (s *Store) Settings() core.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Settings{
		Currency:      s.state.SelectedCurrency,
		Period:        s.state.SelectedPeriod,
		Notifications: s.state.NotificationSettings,
	}
}

func (s *Store) NotificationSettings() core.NotificationSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.NotificationSettings
}

// ReminderSent returns when the reminder of kind last went out, or the zero
// time if it never did.
func (s *Store) ReminderSent(kind string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := time.Parse(time.RFC3339Nano, s.state.RemindersSent[kind])
	if err != nil {
		return time.Time{}
	}
	return t
}

// MarkReminderSent records at as the last send time of kind. It is part of
// the snapshot, so a restart does not repeat a reminder already delivered.
func (s *Store) MarkReminderSent(kind string, at time.Time) {
	_ = s.mutate(OpMarkReminder, false, func() (bool, error) {
		if s.state.RemindersSent == nil {
			s.state.RemindersSent = map[string]string{}
		}
		s.state.RemindersSent[kind] = at.UTC().Format(time.RFC3339Nano)
		return true, nil
	})
}
