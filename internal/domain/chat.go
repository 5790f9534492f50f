package domain

import "time"

// ChatRoom is the per-order conversation between the client and an admin.
// A room has at most one client and one optional admin.
type ChatRoom struct {
	ID        int64      `json:"id"`
	OrderID   int64      `gorm:"uniqueIndex;not null" json:"order_id"`
	ClientID  *int64     `json:"client_id,omitempty"`
	AdminID   *int64     `json:"admin_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

func (ChatRoom) TableName() string { return "chat_rooms" }

// ChatMessage belongs to exactly one room. Messages are append-only and
// ordered by creation time.
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RoomID    int64     `gorm:"index;not null" json:"room_id"`
	SenderID  int64     `gorm:"not null" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (ChatMessage) TableName() string { return "chat_messages" }
