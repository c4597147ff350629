package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Setting is a persisted key/value configuration entry.
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Recognised setting keys.
const (
	SettingLibraryName      = "library_name"
	SettingMembershipFee    = "membership_fee"
	SettingDueDay           = "due_day"
	SettingNotificationDays = "notification_days"
	SettingAIMode           = "ai_mode"
)

// Settings is the typed view over the stored entries. Unknown or corrupt
// values fall back to the defaults below on read.
type Settings struct {
	LibraryName      string          `json:"library_name"`
	MembershipFee    decimal.Decimal `json:"membership_fee"`
	DueDay           int             `json:"due_day"`
	NotificationDays int             `json:"notification_days"`
	AIMode           string          `json:"ai_mode"`
}

// DefaultSettings returns the documented default configuration.
func DefaultSettings() Settings {
	return Settings{
		LibraryName:      "LibraryPro",
		MembershipFee:    decimal.NewFromInt(500),
		DueDay:           5,
		NotificationDays: 3,
		AIMode:           "online",
	}
}
