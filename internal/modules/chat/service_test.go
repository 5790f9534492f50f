package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"copyprocloud/internal/domain"
)

type fakeChatRepo struct {
	rooms    map[int64]*domain.ChatRoom
	messages []*domain.ChatMessage
	nextID   int64
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{rooms: map[int64]*domain.ChatRoom{}, nextID: 1}
}

func (f *fakeChatRepo) GetOrCreateRoom(ctx context.Context, orderID int64, clientID *int64) (*domain.ChatRoom, error) {
	if room, ok := f.rooms[orderID]; ok {
		return room, nil
	}
	room := &domain.ChatRoom{ID: f.nextID, OrderID: orderID, ClientID: clientID}
	f.nextID++
	f.rooms[orderID] = room
	return room, nil
}

func (f *fakeChatRepo) GetRoomByOrder(ctx context.Context, orderID int64) (*domain.ChatRoom, error) {
	if room, ok := f.rooms[orderID]; ok {
		return room, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeChatRepo) AssignAdmin(ctx context.Context, roomID, adminID int64) error {
	for _, room := range f.rooms {
		if room.ID == roomID {
			room.AdminID = &adminID
		}
	}
	return nil
}

func (f *fakeChatRepo) CreateMessage(ctx context.Context, m *domain.ChatMessage) error {
	m.ID = "msg-1"
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeChatRepo) ListMessages(ctx context.Context, roomID int64, limit, offset int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	for _, m := range f.messages {
		if m.RoomID == roomID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeChatRepo) MarkRead(ctx context.Context, roomID, readerID int64) error { return nil }

func (f *fakeChatRepo) CountUnread(ctx context.Context, roomID, readerID int64) (int64, error) {
	return 0, nil
}

type fakeOrders struct{ order *domain.Order }

func (f *fakeOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if f.order == nil || f.order.ID != id {
		return nil, errors.New("not found")
	}
	return f.order, nil
}

type fakeReminders struct{ created []*domain.NotificationReminder }

func (f *fakeReminders) Create(ctx context.Context, r *domain.NotificationReminder) error {
	f.created = append(f.created, r)
	return nil
}

func orderOwnedBy(userID int64) *domain.Order {
	return &domain.Order{ID: 10, UserID: &userID}
}

func TestRoomForOrder_ClientCannotReachForeignOrder(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewService(repo, &fakeOrders{order: orderOwnedBy(1)}, &fakeReminders{}, nil)

	_, err := svc.RoomForOrder(context.Background(), 2, domain.RoleClient, 10)

	assert.ErrorIs(t, err, ErrNotParticipant)
	assert.Empty(t, repo.rooms)
}

func TestRoomForOrder_AdminAttachedOnFirstEntry(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewService(repo, &fakeOrders{order: orderOwnedBy(1)}, &fakeReminders{}, nil)

	room, err := svc.RoomForOrder(context.Background(), 7, domain.RoleAdmin, 10)

	assert.NoError(t, err)
	assert.NotNil(t, room.AdminID)
	assert.Equal(t, int64(7), *room.AdminID)

	// Второй админ не вытесняет первого
	room2, err := svc.RoomForOrder(context.Background(), 8, domain.RoleAdmin, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), *room2.AdminID)
}

func TestSendMessage_AppendsAndNotifiesCounterpart(t *testing.T) {
	repo := newFakeChatRepo()
	reminders := &fakeReminders{}
	svc := NewService(repo, &fakeOrders{order: orderOwnedBy(1)}, reminders, nil)

	// Админ заходит первым, чтобы комната знала обе стороны
	_, err := svc.RoomForOrder(context.Background(), 7, domain.RoleAdmin, 10)
	assert.NoError(t, err)

	msg, err := svc.SendMessage(context.Background(), 1, domain.RoleClient, 10, "Когда будет готово?")

	assert.NoError(t, err)
	assert.Equal(t, int64(1), msg.SenderID)
	assert.Len(t, repo.messages, 1)
	assert.Len(t, reminders.created, 1)
	assert.Equal(t, domain.EventChatMessage, reminders.created[0].ReminderType)
	assert.Equal(t, int64(7), *reminders.created[0].UserID)
}

func TestSendMessage_EmptyContentRejected(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewService(repo, &fakeOrders{order: orderOwnedBy(1)}, &fakeReminders{}, nil)

	_, err := svc.SendMessage(context.Background(), 1, domain.RoleClient, 10, "   ")

	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, repo.messages)
}

func TestSendMessage_NoCounterpartNoNotification(t *testing.T) {
	repo := newFakeChatRepo()
	reminders := &fakeReminders{}
	svc := NewService(repo, &fakeOrders{order: orderOwnedBy(1)}, reminders, nil)

	_, err := svc.SendMessage(context.Background(), 1, domain.RoleClient, 10, "привет")

	assert.NoError(t, err)
	assert.Empty(t, reminders.created)
}

func TestParticipants(t *testing.T) {
	clientID, adminID := int64(1), int64(7)
	svc := NewService(newFakeChatRepo(), &fakeOrders{}, nil, nil)

	assert.Empty(t, svc.Participants(&domain.ChatRoom{}))
	assert.Equal(t, []int64{1}, svc.Participants(&domain.ChatRoom{ClientID: &clientID}))
	assert.Equal(t, []int64{1, 7}, svc.Participants(&domain.ChatRoom{ClientID: &clientID, AdminID: &adminID}))
}
