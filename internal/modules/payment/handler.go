package payment

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"copyprocloud/internal/modules/promo"
	"copyprocloud/internal/pkg/response"
)

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

// RegisterPublicRoutes mounts the payment endpoints. Creation is public
// because guests pay for guest orders; webhooks are called by the
// gateways with PUT, mirroring the create/webhook split per gateway.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments", h.CreatePayment)
	rg.PUT("/payments/modulbank/webhook", h.ModulbankWebhook)
	rg.PUT("/payments/yukassa/webhook", h.YukassaWebhook)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders/:id/payments", h.ListByOrder)
}

func (h *Handler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	resp, err := h.service.CreatePayment(c.Request.Context(), req)
	if err != nil {
		h.loggerf("level=error msg=payment creation failed order_id=%d gateway=%s err=%v", req.OrderID, req.Gateway, err)
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// ModulbankWebhook takes the form-encoded signed callback. Every field
// except the signature participates in verification.
func (h *Handler) ModulbankWebhook(c *gin.Context) {
	rawBody, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(strings.NewReader(string(rawBody)))
	_ = c.Request.ParseForm()
	h.loggerf("level=info msg=modulbank callback raw_body=%s", string(rawBody))

	fields := map[string]string{}
	for k, v := range c.Request.PostForm {
		if len(v) > 0 && k != "signature" {
			fields[k] = v[0]
		}
	}
	signature := c.PostForm("signature")

	ack, err := h.service.HandleModulbankCallback(c.Request.Context(), fields, signature, string(rawBody))
	if err != nil {
		h.loggerf("level=error msg=modulbank callback failed order_id=%s err=%v", fields["order_id"], err)
		switch err {
		case ErrInvalidSignature, ErrAmountMismatch:
			c.String(http.StatusForbidden, "forbidden")
		case ErrNotFound:
			c.String(http.StatusNotFound, "not found")
		default:
			c.String(http.StatusInternalServerError, "internal error")
		}
		return
	}
	c.String(http.StatusOK, ack)
}

func (h *Handler) YukassaWebhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	h.loggerf("level=info msg=yukassa webhook raw_body=%s", string(rawBody))

	if err := h.service.HandleYukassaWebhook(c.Request.Context(), rawBody); err != nil {
		h.loggerf("level=error msg=yukassa webhook failed err=%v", err)
		if err == ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ListByOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID")
		return
	}
	payments, err := h.service.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list payments")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": payments})
}

func writeServiceError(c *gin.Context, err error) {
	switch err {
	case ErrOrderNotFound:
		response.Error(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
	case ErrAlreadyPaid:
		response.Error(c, http.StatusConflict, "ALREADY_PAID", "Order is already paid")
	case ErrUnknownGateway:
		response.Error(c, http.StatusBadRequest, "UNKNOWN_GATEWAY", "Unknown payment gateway")
	case ErrNotConfigured:
		response.Error(c, http.StatusServiceUnavailable, "GATEWAY_NOT_CONFIGURED", "Payment gateway is not configured")
	case promo.ErrNotFound, promo.ErrInactive, promo.ErrNotStarted, promo.ErrExpired, promo.ErrExhausted, promo.ErrBelowMinAmount:
		response.Error(c, http.StatusUnprocessableEntity, "PROMO_REJECTED", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "PAYMENT_FAILED", err.Error())
	}
}
