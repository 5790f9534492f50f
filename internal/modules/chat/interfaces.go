package chat

import (
	"context"

	"copyprocloud/internal/domain"
)

type chatRepo interface {
	GetOrCreateRoom(ctx context.Context, orderID int64, clientID *int64) (*domain.ChatRoom, error)
	GetRoomByOrder(ctx context.Context, orderID int64) (*domain.ChatRoom, error)
	AssignAdmin(ctx context.Context, roomID, adminID int64) error
	CreateMessage(ctx context.Context, m *domain.ChatMessage) error
	ListMessages(ctx context.Context, roomID int64, limit, offset int) ([]domain.ChatMessage, error)
	MarkRead(ctx context.Context, roomID, readerID int64) error
	CountUnread(ctx context.Context, roomID, readerID int64) (int64, error)
}

type orderReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
}

type reminderScheduler interface {
	Create(ctx context.Context, r *domain.NotificationReminder) error
}
