package domain

import (
	"context"
	"time"
)

// UserSettings holds per-user display preferences. A user without a stored
// row gets DefaultUserSettings.
// swagger:model UserSettings
type UserSettings struct {
	UserID    string    `json:"user_id"`
	Currency  string    `json:"currency"`
	Locale    string    `json:"locale"`
	DarkMode  bool      `json:"dark_mode"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultUserSettings returns the settings used before a user saves any.
func DefaultUserSettings(userID string) *UserSettings {
	return &UserSettings{
		UserID:   userID,
		Currency: "USD",
		Locale:   "en-US",
	}
}

// UserSettingsRepository defines storage operations for user settings.
type UserSettingsRepository interface {
	Get(ctx context.Context, userID string) (*UserSettings, error)
	Upsert(ctx context.Context, settings *UserSettings) error
}
