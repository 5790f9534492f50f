package chat

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// wsInbound is what a connected client sends over the socket.
type wsInbound struct {
	OrderID int64  `json:"order_id"`
	Content string `json:"content"`
}

// wsOutbound mirrors a stored message to both room participants.
type wsOutbound struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	RoomID    int64  `json:"room_id"`
	OrderID   int64  `json:"order_id"`
	SenderID  int64  `json:"sender_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}
