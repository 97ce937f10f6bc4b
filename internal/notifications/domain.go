package notifications

import "time"

// Preference holds a user's delivery choices. Reminders ride the email
// channel; disabling email silences booking notifications entirely.
type Preference struct {
	UserID           int64
	EmailEnabled     bool
	SMSEnabled       bool
	RemindersEnabled bool
	UpdatedAt        time.Time
}

// DefaultPreference is applied to users who never saved their choices.
func DefaultPreference(userID int64) Preference {
	return Preference{
		UserID:           userID,
		EmailEnabled:     true,
		SMSEnabled:       false,
		RemindersEnabled: true,
	}
}
