package domain

import "time"

// SystemSetting is a key/value row used for runtime configuration that is
// editable from the admin dashboard (gateway credentials fall back to these
// rows when the corresponding env var is empty).
type SystemSetting struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SystemSetting) TableName() string { return "system_settings" }
