package chat

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"copyprocloud/internal/domain"
	"copyprocloud/internal/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Браузерный Origin уже проверяет CORS middleware
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Handler struct {
	service *Service
	hub     *Hub
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, hub *Hub, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, hub: hub, loggerf: loggerf}
}

// RegisterProtectedRoutes registers chat routes. All of them require a
// valid JWT; access per room is enforced in the service.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	chatGroup := rg.Group("/chat")
	{
		chatGroup.GET("/orders/:id/room", h.Room)
		chatGroup.GET("/orders/:id/messages", h.Messages)
		chatGroup.POST("/orders/:id/messages", h.SendMessage)
		chatGroup.POST("/orders/:id/read", h.MarkRead)
		chatGroup.GET("/orders/:id/unread", h.UnreadCount)
		chatGroup.GET("/ws", h.WebSocket)
	}
}

func (h *Handler) Room(c *gin.Context) {
	orderID, ok := orderParam(c)
	if !ok {
		return
	}
	room, err := h.service.RoomForOrder(c.Request.Context(), c.GetInt64("user_id"), roleFrom(c), orderID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"room": room})
}

func (h *Handler) Messages(c *gin.Context) {
	orderID, ok := orderParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	msgs, err := h.service.Messages(c.Request.Context(), c.GetInt64("user_id"), roleFrom(c), orderID, limit, offset)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) SendMessage(c *gin.Context) {
	orderID, ok := orderParam(c)
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	userID := c.GetInt64("user_id")
	msg, err := h.service.SendMessage(c.Request.Context(), userID, roleFrom(c), orderID, req.Content)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	h.pushToRoom(c, orderID, msg)
	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}

func (h *Handler) MarkRead(c *gin.Context) {
	orderID, ok := orderParam(c)
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), c.GetInt64("user_id"), roleFrom(c), orderID); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	orderID, ok := orderParam(c)
	if !ok {
		return
	}
	cnt, err := h.service.UnreadCount(c.Request.Context(), c.GetInt64("user_id"), roleFrom(c), orderID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": cnt})
}

// WebSocket upgrades the connection and relays inbound messages through
// the same service path as the REST endpoint, so persistence and access
// checks are identical.
func (h *Handler) WebSocket(c *gin.Context) {
	userID := c.GetInt64("user_id")
	role := roleFrom(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.loggerf("level=error msg=websocket upgrade failed user_id=%d err=%v", userID, err)
		return
	}
	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID)

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			return
		}

		msg, err := h.service.SendMessage(c.Request.Context(), userID, role, in.OrderID, in.Content)
		if err != nil {
			_ = conn.WriteJSON(gin.H{"type": "error", "error": err.Error()})
			continue
		}
		h.pushToRoom(c, in.OrderID, msg)
	}
}

func (h *Handler) pushToRoom(c *gin.Context, orderID int64, msg *domain.ChatMessage) {
	room, err := h.service.RoomForOrder(c.Request.Context(), msg.SenderID, roleFrom(c), orderID)
	if err != nil {
		return
	}
	out := wsOutbound{
		Type:      "chat_message",
		MessageID: msg.ID,
		RoomID:    msg.RoomID,
		OrderID:   orderID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt.Format(time.RFC3339),
	}
	h.hub.BroadcastToRoom(h.service.Participants(room), out)
}

func roleFrom(c *gin.Context) domain.UserRole {
	return domain.UserRole(c.GetString("role"))
}

func orderParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID")
		return 0, false
	}
	return id, true
}

func writeServiceError(c *gin.Context, err error) {
	switch err {
	case ErrOrderNotFound:
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
	case ErrNotParticipant:
		response.Error(c, http.StatusForbidden, "NOT_PARTICIPANT", "You are not a participant of this chat")
	case ErrEmptyMessage:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Message content is empty")
	default:
		response.Error(c, http.StatusInternalServerError, "CHAT_ERROR", "Operation failed")
	}
}
