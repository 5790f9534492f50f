package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"copyprocloud/internal/domain"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// GetOrCreateRoom returns the room keyed by the order, creating it on
// first use. The order id carries a unique index, so a concurrent create
// loses the race and re-reads.
func (r *ChatRepository) GetOrCreateRoom(ctx context.Context, orderID int64, clientID *int64) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	tx := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&room)
	if tx.Error == nil {
		return &room, nil
	}
	if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, tx.Error
	}

	room = domain.ChatRoom{OrderID: orderID, ClientID: clientID, CreatedAt: time.Now().UTC()}
	if err := r.db.WithContext(ctx).Create(&room).Error; err != nil {
		var again domain.ChatRoom
		if e := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&again).Error; e == nil {
			return &again, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *ChatRepository) GetRoomByOrder(ctx context.Context, orderID int64) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	tx := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&room)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &room, nil
}

func (r *ChatRepository) AssignAdmin(ctx context.Context, roomID, adminID int64) error {
	return r.db.WithContext(ctx).Model(&domain.ChatRoom{}).
		Where("id = ?", roomID).
		Update("admin_id", adminID).Error
}

func (r *ChatRepository) CreateMessage(ctx context.Context, m *domain.ChatMessage) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *ChatRepository) ListMessages(ctx context.Context, roomID int64, limit, offset int) ([]domain.ChatMessage, error) {
	var rows []domain.ChatMessage
	tx := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&rows)
	return rows, tx.Error
}

// MarkRead flags everything the reader has not sent themselves.
func (r *ChatRepository) MarkRead(ctx context.Context, roomID, readerID int64) error {
	return r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("room_id = ? AND sender_id <> ? AND is_read = ?", roomID, readerID, false).
		Update("is_read", true).Error
}

func (r *ChatRepository) CountUnread(ctx context.Context, roomID, readerID int64) (int64, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("room_id = ? AND sender_id <> ? AND is_read = ?", roomID, readerID, false).
		Count(&cnt)
	return cnt, tx.Error
}
