package domain

import "time"

type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelTelegram NotificationChannel = "telegram"
)

type NotificationEvent string

const (
	EventOrderCreated     NotificationEvent = "order_created"
	EventPaymentSucceeded NotificationEvent = "payment_succeeded"
	EventPaymentFailed    NotificationEvent = "payment_failed"
	EventOrderCompleted   NotificationEvent = "order_completed"
	EventChatMessage      NotificationEvent = "chat_message"
)

// NotificationTemplate is a stored message template. Body and subject may
// contain {{variable}} placeholders substituted at dispatch time.
type NotificationTemplate struct {
	ID        int64               `json:"id"`
	Channel   NotificationChannel `gorm:"type:varchar(16);index:idx_templates_channel_event" json:"channel"`
	EventType NotificationEvent   `gorm:"type:varchar(32);index:idx_templates_channel_event" json:"event_type"`
	Subject   string              `gorm:"type:varchar(255)" json:"subject"`
	Body      string              `gorm:"type:text" json:"body"`
	Active    bool                `gorm:"default:true" json:"active"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func (NotificationTemplate) TableName() string { return "notification_templates" }

type ReminderStatus string

const (
	ReminderPending ReminderStatus = "pending"
	ReminderSent    ReminderStatus = "sent"
	ReminderFailed  ReminderStatus = "failed"
)

// NotificationReminder is a deferred notification task. It is scoped to
// either a registered user or an anonymous session, never both. A reminder
// is processed at most once: pending -> sent|failed, no way back.
type NotificationReminder struct {
	ID           int64             `json:"id"`
	UserID       *int64            `gorm:"index" json:"user_id,omitempty"`
	SessionID    *string           `gorm:"type:varchar(64);index" json:"session_id,omitempty"`
	ReminderType NotificationEvent `gorm:"type:varchar(32)" json:"reminder_type"`
	Recipient    string            `gorm:"type:varchar(255)" json:"recipient"`
	Payload      string            `gorm:"type:text" json:"payload,omitempty"`
	ScheduledFor time.Time         `gorm:"index" json:"scheduled_for"`
	Status       ReminderStatus    `gorm:"type:varchar(16);default:'pending';index" json:"status"`
	LastError    string            `gorm:"type:text" json:"last_error,omitempty"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (NotificationReminder) TableName() string { return "notification_reminders" }
