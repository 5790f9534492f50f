package notification

import (
	"context"
	"time"

	"copyprocloud/internal/domain"
)

type templateRepo interface {
	GetActive(ctx context.Context, channel domain.NotificationChannel, event domain.NotificationEvent) (*domain.NotificationTemplate, error)
	Upsert(ctx context.Context, t *domain.NotificationTemplate) error
}

type reminderRepo interface {
	Create(ctx context.Context, r *domain.NotificationReminder) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.NotificationReminder, error)
	MarkSent(ctx context.Context, id int64, sentAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id int64, reason string) (bool, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// EmailSender is the transactional email provider.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// TelegramSender pushes a plain-text message to a chat.
type TelegramSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
