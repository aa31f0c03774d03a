package models

import "time"

// Well-known setting keys.
const (
	SettingCameraRequiredGlobally = "camera_required_globally"
)

// GlobalSetting is a free-form key/value pair consulted at exam start.
// Lookups are best-effort: a missing key or unreachable store resolves to
// the caller's default.
type GlobalSetting struct {
	Key         string    `json:"key" gorm:"primaryKey;size:100"`
	Value       string    `json:"value" gorm:"size:500;not null"`
	Description *string   `json:"description,omitempty" gorm:"size:500"`
	UpdatedBy   *string   `json:"updated_by,omitempty" gorm:"size:255"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (GlobalSetting) TableName() string {
	return "global_settings"
}
