package yookassa

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/rvinnie/yookassa-sdk-go/yookassa"
	yoocommon "github.com/rvinnie/yookassa-sdk-go/yookassa/common"
	yoopayment "github.com/rvinnie/yookassa-sdk-go/yookassa/payment"
)

// Payment is the slice of the gateway response the rest of the service
// needs. Amount is in kopecks.
type Payment struct {
	ID              string
	Status          string
	Amount          int64
	ConfirmationURL string
	Metadata        map[string]string
}

// Client wraps the YooKassa SDK client.
type Client struct {
	client    *yookassa.Client
	logger    *slog.Logger
	returnURL string
}

func NewClient(shopID, secretKey, returnURL string, logger *slog.Logger) *Client {
	return &Client{
		client:    yookassa.NewClient(shopID, secretKey),
		logger:    logger,
		returnURL: returnURL,
	}
}

// CreatePayment registers a redirect payment. amount is in kopecks; the
// gateway wants major units with two decimals.
func (c *Client) CreatePayment(ctx context.Context, amount int64, description string, metadata map[string]string) (*Payment, error) {
	idempotenceKey := uuid.New().String()
	c.logger.Info("creating yookassa payment", "amount", amount, "idempotence_key", idempotenceKey)

	req := &yoopayment.Payment{
		Amount: &yoocommon.Amount{
			Value:    fmt.Sprintf("%.2f", float64(amount)/100),
			Currency: "RUB",
		},
		Confirmation: &yoopayment.Redirect{
			Type:      yoopayment.TypeRedirect,
			ReturnURL: c.returnURL,
		},
		Description: description,
		Metadata:    metadata,
		Capture:     true,
	}

	handler := yookassa.NewPaymentHandler(c.client).WithIdempotencyKey(idempotenceKey)
	result, err := handler.CreatePayment(req)
	if err != nil {
		return nil, fmt.Errorf("create yookassa payment: %w", err)
	}

	c.logger.Info("yookassa payment created", "payment_id", result.ID, "status", result.Status)
	return fromSDK(result), nil
}

// FindPayment fetches a payment directly from the gateway. Webhook
// handling trusts this lookup, never the inbound request body.
func (c *Client) FindPayment(ctx context.Context, paymentID string) (*Payment, error) {
	handler := yookassa.NewPaymentHandler(c.client)
	result, err := handler.FindPayment(paymentID)
	if err != nil {
		return nil, fmt.Errorf("find yookassa payment %s: %w", paymentID, err)
	}
	return fromSDK(result), nil
}

func fromSDK(p *yoopayment.Payment) *Payment {
	out := &Payment{
		ID:              p.ID,
		Status:          string(p.Status),
		ConfirmationURL: confirmationURL(p),
		Metadata:        map[string]string{},
	}
	if p.Amount != nil {
		if v, err := strconv.ParseFloat(p.Amount.Value, 64); err == nil {
			out.Amount = int64(math.Round(v * 100))
		}
	}
	if meta, ok := p.Metadata.(map[string]interface{}); ok {
		for k, v := range meta {
			if s, ok := v.(string); ok {
				out.Metadata[k] = s
			}
		}
	}
	if meta, ok := p.Metadata.(map[string]string); ok {
		for k, v := range meta {
			out.Metadata[k] = v
		}
	}
	return out
}

// confirmationURL digs the redirect URL out of the SDK's interface-typed
// Confirmation field, which decodes either as the struct or as a map.
func confirmationURL(p *yoopayment.Payment) string {
	switch conf := p.Confirmation.(type) {
	case *yoopayment.Redirect:
		return conf.ConfirmationURL
	case map[string]interface{}:
		if url, ok := conf["confirmation_url"].(string); ok {
			return url
		}
	}
	return ""
}
