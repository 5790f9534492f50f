package domain

import "time"

// ActivityLog is a best-effort audit record. Writes never block the main
// flow; a failed insert is logged and dropped.
type ActivityLog struct {
	ID         int64     `json:"id"`
	UserID     *int64    `gorm:"index" json:"user_id,omitempty"`
	Action     string    `gorm:"type:varchar(64);index" json:"action"`
	EntityType string    `gorm:"type:varchar(32)" json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	Details    string    `gorm:"type:text" json:"details,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_logs" }
