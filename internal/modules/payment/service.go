package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"copyprocloud/internal/domain"
	"copyprocloud/internal/pkg/signing"
)

var (
	ErrNotConfigured    = errors.New("payment gateway is not configured")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrAmountMismatch   = errors.New("amount mismatch")
	ErrUnknownGateway   = errors.New("unknown payment gateway")
	ErrNotFound         = errors.New("payment not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrAlreadyPaid      = errors.New("order is already paid")
)

type Service struct {
	payments    paymentRepo
	orders      orderReader
	orderWriter orderPaidWriter
	promos      promoRedeemer
	yukassa     yookassaGateway
	settings    settingsReader
	reminders   reminderScheduler
	activity    activityLogger
	loggerf     func(format string, args ...interface{})

	modulbankBaseURL string
	successURL       string
	failURL          string
	callbackURL      string
	testMode         string
}

func NewService(payments paymentRepo, orders orderReader, orderWriter orderPaidWriter, promos promoRedeemer, yk yookassaGateway, settings settingsReader, reminders reminderScheduler, activity activityLogger, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		payments:         payments,
		orders:           orders,
		orderWriter:      orderWriter,
		promos:           promos,
		yukassa:          yk,
		settings:         settings,
		reminders:        reminders,
		activity:         activity,
		loggerf:          loggerf,
		modulbankBaseURL: envOrDefault("MODULBANK_BASE_URL", "https://pay.modulbank.ru/pay"),
		successURL:       os.Getenv("PAYMENT_SUCCESS_URL"),
		failURL:          os.Getenv("PAYMENT_FAIL_URL"),
		callbackURL:      os.Getenv("PAYMENT_CALLBACK_URL"),
		testMode:         envOrDefault("PAYMENT_TEST_MODE", "1"),
	}
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// credential reads a gateway secret from the environment first and falls
// back to the settings store. Read at call time so that a missing value
// only fails the dependent operation.
func (s *Service) credential(ctx context.Context, envName, settingKey string) string {
	if v := os.Getenv(envName); v != "" {
		return v
	}
	if s.settings == nil {
		return ""
	}
	v, err := s.settings.Get(ctx, settingKey)
	if err != nil {
		s.loggerf("level=error msg=settings lookup failed key=%s err=%v", settingKey, err)
		return ""
	}
	return v
}

// CreatePayment builds a payment intent for the order: applies the promo
// discount, creates the gateway-side payment and persists a pending row.
// The gateway is validated and its credentials are resolved before the
// promo code is redeemed, so a misconfigured or unknown gateway never
// consumes a use. Each call produces a fresh gateway payment id, so a
// retried call after a failure can leave an extra pending row behind.
func (s *Service) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.PaymentStatus == domain.PaymentPaid {
		return nil, ErrAlreadyPaid
	}

	gateway := domain.PaymentGateway(req.Gateway)
	var merchant, secret string
	switch gateway {
	case domain.GatewayModulbank:
		merchant = s.credential(ctx, "MODULBANK_MERCHANT_ID", "modulbank_merchant_id")
		secret = s.credential(ctx, "MODULBANK_SECRET_KEY", "modulbank_secret_key")
		if merchant == "" || secret == "" {
			return nil, ErrNotConfigured
		}
	case domain.GatewayYukassa:
		if s.yukassa == nil {
			return nil, ErrNotConfigured
		}
	default:
		return nil, ErrUnknownGateway
	}

	amount := order.EstimatedPrice
	var discount int64
	var promoID *int64
	if req.PromoCode != "" {
		v, err := s.promos.Redeem(ctx, req.PromoCode, amount)
		if err != nil {
			return nil, err
		}
		discount = v.DiscountAmount
		amount = v.FinalAmount
		promoID = &v.Code.ID
	}

	description := fmt.Sprintf("Оплата заказа #%d: %s", order.ID, order.ServiceName)

	if gateway == domain.GatewayModulbank {
		return s.createModulbankPayment(ctx, order, amount, discount, promoID, description, merchant, secret)
	}
	return s.createYukassaPayment(ctx, order, amount, discount, promoID, description)
}

func (s *Service) createModulbankPayment(ctx context.Context, order *domain.Order, amount, discount int64, promoID *int64, description, merchant, secret string) (*CreatePaymentResponse, error) {
	gatewayPaymentID := fmt.Sprintf("%d-%d", order.ID, time.Now().UnixNano())
	fields := map[string]string{
		"merchant":     merchant,
		"order_id":     gatewayPaymentID,
		"amount":       majorUnits(amount),
		"description":  description,
		"client_email": order.ContactEmail,
		"success_url":  s.successURL,
		"fail_url":     s.failURL,
		"callback_url": s.callbackURL,
		"testing":      s.testMode,
	}
	signature := signing.Sign(signing.SHA256Concat, secret, fields)

	q := url.Values{}
	for k, v := range fields {
		if v != "" {
			q.Set(k, v)
		}
	}
	q.Set("signature", signature)
	redirectURL := s.modulbankBaseURL + "?" + q.Encode()

	p := &domain.Payment{
		OrderID:          order.ID,
		Amount:           amount,
		Currency:         "RUB",
		Gateway:          domain.GatewayModulbank,
		GatewayPaymentID: gatewayPaymentID,
		Status:           domain.PaymentStatusPending,
		PromoCodeID:      promoID,
		DiscountAmount:   discount,
		RedirectURL:      redirectURL,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("save payment failed: %w", err)
	}

	s.loggerf("level=info msg=modulbank payment created order_id=%d payment_id=%d amount=%d", order.ID, p.ID, amount)
	return responseFor(p), nil
}

func (s *Service) createYukassaPayment(ctx context.Context, order *domain.Order, amount, discount int64, promoID *int64, description string) (*CreatePaymentResponse, error) {
	if s.yukassa == nil {
		return nil, ErrNotConfigured
	}

	metadata := map[string]string{"order_id": strconv.FormatInt(order.ID, 10)}
	gp, err := s.yukassa.CreatePayment(ctx, amount, description, metadata)
	if err != nil {
		return nil, fmt.Errorf("yukassa payment failed: %w", err)
	}

	p := &domain.Payment{
		OrderID:          order.ID,
		Amount:           amount,
		Currency:         "RUB",
		Gateway:          domain.GatewayYukassa,
		GatewayPaymentID: gp.ID,
		Status:           domain.PaymentStatusPending,
		PromoCodeID:      promoID,
		DiscountAmount:   discount,
		RedirectURL:      gp.ConfirmationURL,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("save payment failed: %w", err)
	}

	s.loggerf("level=info msg=yukassa payment created order_id=%d payment_id=%d gateway_payment_id=%s", order.ID, p.ID, gp.ID)
	return responseFor(p), nil
}

// HandleModulbankCallback verifies the callback signature against the
// shared secret and applies the payment outcome.
func (s *Service) HandleModulbankCallback(ctx context.Context, fields map[string]string, signature, rawBody string) (string, error) {
	secret := s.credential(ctx, "MODULBANK_SECRET_KEY", "modulbank_secret_key")
	if secret == "" {
		return "", ErrNotConfigured
	}
	if !signing.Verify(signing.SHA256Concat, secret, fields, signature) {
		s.loggerf("level=error msg=modulbank callback signature invalid order_id=%s", fields["order_id"])
		return "", ErrInvalidSignature
	}

	p, err := s.payments.GetByGatewayPaymentID(ctx, domain.GatewayModulbank, fields["order_id"])
	if err != nil {
		return "", ErrNotFound
	}

	if fields["amount"] != "" && fields["amount"] != majorUnits(p.Amount) {
		reason := fmt.Sprintf("amount mismatch callback=%s expected=%s", fields["amount"], majorUnits(p.Amount))
		_ = s.payments.MarkFailed(ctx, p.ID, rawBody, reason)
		return "", ErrAmountMismatch
	}

	switch fields["state"] {
	case "COMPLETE":
		if err := s.applySucceeded(ctx, p, p.Amount, rawBody); err != nil {
			return "", err
		}
	case "FAILED":
		if err := s.payments.MarkFailed(ctx, p.ID, rawBody, "gateway reported failure"); err != nil {
			return "", err
		}
		s.logActivity(ctx, "payment_failed", p)
		s.scheduleNotification(ctx, p.OrderID, domain.EventPaymentFailed)
	default:
		s.loggerf("level=info msg=modulbank callback ignored state=%s payment_id=%d", fields["state"], p.ID)
	}
	return "SUCCESS", nil
}

// HandleYukassaWebhook processes a payment event. The inbound body is not
// authenticated by the gateway, so only the payment id is taken from it;
// the status and amount are re-fetched from the YuKassa API and the
// fetched values are the ones trusted.
func (s *Service) HandleYukassaWebhook(ctx context.Context, rawBody []byte) error {
	if s.yukassa == nil {
		return ErrNotConfigured
	}

	var event yukassaWebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return fmt.Errorf("decode webhook: %w", err)
	}
	eventType := event.Type
	if eventType == "" {
		eventType = event.Event
	}
	if event.Object.ID == "" {
		return fmt.Errorf("webhook without payment id")
	}

	confirmed, err := s.yukassa.FindPayment(ctx, event.Object.ID)
	if err != nil {
		return fmt.Errorf("verify webhook: %w", err)
	}

	p, err := s.payments.GetByGatewayPaymentID(ctx, domain.GatewayYukassa, confirmed.ID)
	if err != nil {
		return ErrNotFound
	}

	switch confirmed.Status {
	case "succeeded":
		return s.applySucceeded(ctx, p, confirmed.Amount, string(rawBody))
	case "canceled":
		if err := s.payments.MarkFailed(ctx, p.ID, string(rawBody), "payment canceled"); err != nil {
			return err
		}
		s.logActivity(ctx, "payment_failed", p)
		s.scheduleNotification(ctx, p.OrderID, domain.EventPaymentFailed)
		return nil
	default:
		s.loggerf("level=info msg=yukassa webhook ignored event=%s status=%s payment_id=%d", eventType, confirmed.Status, p.ID)
		return nil
	}
}

// applySucceeded flips the payment and the owning order exactly once.
// A duplicate delivery finds the payment already completed and skips the
// order update and the notification, so nothing is dispatched twice.
func (s *Service) applySucceeded(ctx context.Context, p *domain.Payment, confirmedAmount int64, rawBody string) error {
	changed, err := s.payments.MarkCompletedIdempotent(ctx, p.ID, rawBody, time.Now().UTC())
	if err != nil {
		return err
	}
	if !changed {
		s.loggerf("level=info msg=duplicate payment callback ignored payment_id=%d", p.ID)
		return nil
	}

	if _, err := s.orderWriter.MarkPaidIdempotent(ctx, p.OrderID, confirmedAmount); err != nil {
		s.loggerf("level=error msg=failed to mark order paid order_id=%d err=%v", p.OrderID, err)
	}
	s.logActivity(ctx, "payment_completed", p)
	s.scheduleNotification(ctx, p.OrderID, domain.EventPaymentSucceeded)
	s.loggerf("level=info msg=payment completed payment_id=%d order_id=%d amount=%d", p.ID, p.OrderID, confirmedAmount)
	return nil
}

// logActivity records the webhook outcome in the audit trail, best effort.
func (s *Service) logActivity(ctx context.Context, action string, p *domain.Payment) {
	if s.activity == nil {
		return
	}
	err := s.activity.Create(ctx, &domain.ActivityLog{
		Action:     action,
		EntityType: "payment",
		EntityID:   p.ID,
		Details:    fmt.Sprintf("order_id=%d gateway=%s", p.OrderID, p.Gateway),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		s.loggerf("level=warn msg=activity log write failed payment_id=%d err=%v", p.ID, err)
	}
}

// scheduleNotification enqueues a reminder row for the dispatcher instead
// of calling the providers inline. Failures are logged, never propagated.
func (s *Service) scheduleNotification(ctx context.Context, orderID int64, event domain.NotificationEvent) {
	if s.reminders == nil {
		return
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		s.loggerf("level=error msg=failed to load order for notification order_id=%d err=%v", orderID, err)
		return
	}

	payload, _ := json.Marshal(map[string]string{
		"order_id":     strconv.FormatInt(order.ID, 10),
		"service_name": order.ServiceName,
		"contact_name": order.ContactName,
	})
	r := &domain.NotificationReminder{
		UserID:       order.UserID,
		ReminderType: event,
		Recipient:    order.ContactEmail,
		Payload:      string(payload),
		ScheduledFor: time.Now().UTC(),
		Status:       domain.ReminderPending,
	}
	if order.UserID == nil {
		sessionID := fmt.Sprintf("guest-order-%d", order.ID)
		r.SessionID = &sessionID
	}
	if err := s.reminders.Create(ctx, r); err != nil {
		s.loggerf("level=error msg=failed to schedule notification order_id=%d event=%s err=%v", orderID, event, err)
	}
}

func (s *Service) ListByOrder(ctx context.Context, orderID int64) ([]domain.Payment, error) {
	return s.payments.ListByOrder(ctx, orderID)
}

func responseFor(p *domain.Payment) *CreatePaymentResponse {
	return &CreatePaymentResponse{
		PaymentID:      p.ID,
		RedirectURL:    p.RedirectURL,
		Amount:         p.Amount,
		DiscountAmount: p.DiscountAmount,
		Currency:       p.Currency,
		Status:         string(p.Status),
	}
}

// majorUnits renders kopecks as "1234.56" the way the gateways expect.
func majorUnits(kopecks int64) string {
	return fmt.Sprintf("%d.%02d", kopecks/100, kopecks%100)
}
