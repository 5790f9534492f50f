package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"copyprocloud/internal/domain"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrNotParticipant = errors.New("not a participant of this chat")
	ErrEmptyMessage   = errors.New("message content is empty")
)

type Service struct {
	rooms     chatRepo
	orders    orderReader
	reminders reminderScheduler
	loggerf   func(format string, args ...interface{})
}

func NewService(rooms chatRepo, orders orderReader, reminders reminderScheduler, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{rooms: rooms, orders: orders, reminders: reminders, loggerf: loggerf}
}

// RoomForOrder opens (or returns) the conversation for an order. Clients
// only reach their own orders; admins reach any order and are attached
// to the room on first entry.
func (s *Service) RoomForOrder(ctx context.Context, userID int64, role domain.UserRole, orderID int64) (*domain.ChatRoom, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if role != domain.RoleAdmin && (order.UserID == nil || *order.UserID != userID) {
		return nil, ErrNotParticipant
	}

	room, err := s.rooms.GetOrCreateRoom(ctx, orderID, order.UserID)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleAdmin && room.AdminID == nil {
		if err := s.rooms.AssignAdmin(ctx, room.ID, userID); err != nil {
			s.loggerf("level=error msg=failed to attach admin to chat room room_id=%d err=%v", room.ID, err)
		} else {
			room.AdminID = &userID
		}
	}
	return room, nil
}

// SendMessage appends a message to the order's room. Messages are never
// edited or deleted afterwards.
func (s *Service) SendMessage(ctx context.Context, userID int64, role domain.UserRole, orderID int64, content string) (*domain.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	room, err := s.RoomForOrder(ctx, userID, role, orderID)
	if err != nil {
		return nil, err
	}

	msg := &domain.ChatMessage{
		RoomID:   room.ID,
		SenderID: userID,
		Content:  content,
	}
	if err := s.rooms.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.notifyCounterpart(ctx, room, userID, orderID)
	return msg, nil
}

func (s *Service) Messages(ctx context.Context, userID int64, role domain.UserRole, orderID int64, limit, offset int) ([]domain.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	room, err := s.RoomForOrder(ctx, userID, role, orderID)
	if err != nil {
		return nil, err
	}
	return s.rooms.ListMessages(ctx, room.ID, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, userID int64, role domain.UserRole, orderID int64) error {
	room, err := s.RoomForOrder(ctx, userID, role, orderID)
	if err != nil {
		return err
	}
	return s.rooms.MarkRead(ctx, room.ID, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID int64, role domain.UserRole, orderID int64) (int64, error) {
	room, err := s.RoomForOrder(ctx, userID, role, orderID)
	if err != nil {
		return 0, err
	}
	return s.rooms.CountUnread(ctx, room.ID, userID)
}

// Participants lists the user ids attached to a room, for websocket
// fan-out.
func (s *Service) Participants(room *domain.ChatRoom) []int64 {
	ids := make([]int64, 0, 2)
	if room.ClientID != nil {
		ids = append(ids, *room.ClientID)
	}
	if room.AdminID != nil {
		ids = append(ids, *room.AdminID)
	}
	return ids
}

// notifyCounterpart schedules a chat_message reminder for the other side
// of the conversation. Best effort: a scheduling failure is logged and
// the message still stands.
func (s *Service) notifyCounterpart(ctx context.Context, room *domain.ChatRoom, senderID, orderID int64) {
	if s.reminders == nil {
		return
	}
	var recipientID *int64
	if room.ClientID != nil && *room.ClientID != senderID {
		recipientID = room.ClientID
	} else if room.AdminID != nil && *room.AdminID != senderID {
		recipientID = room.AdminID
	}
	if recipientID == nil {
		return
	}

	payload, _ := json.Marshal(map[string]string{
		"order_id": strconv.FormatInt(orderID, 10),
	})
	r := &domain.NotificationReminder{
		UserID:       recipientID,
		ReminderType: domain.EventChatMessage,
		Payload:      string(payload),
		ScheduledFor: time.Now().UTC(),
		Status:       domain.ReminderPending,
	}
	if err := s.reminders.Create(ctx, r); err != nil {
		s.loggerf("level=error msg=failed to schedule chat notification order_id=%d err=%v", orderID, err)
	}
}
