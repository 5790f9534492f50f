package payment

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"copyprocloud/internal/domain"
	"copyprocloud/internal/infra/yookassa"
	"copyprocloud/internal/modules/promo"
	"copyprocloud/internal/pkg/signing"
)

type mockOrderReader struct {
	order *domain.Order
}

func (m *mockOrderReader) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if m.order == nil || m.order.ID != id {
		return nil, errors.New("not found")
	}
	return m.order, nil
}

type mockOrderWriter struct {
	markPaidCalls int
	lastFinal     int64
}

func (m *mockOrderWriter) MarkPaidIdempotent(ctx context.Context, id int64, finalPrice int64) (bool, error) {
	m.markPaidCalls++
	m.lastFinal = finalPrice
	return true, nil
}

type mockPaymentRepo struct {
	payment        *domain.Payment
	created        []*domain.Payment
	completedCalls int
	completedOK    bool
	failedCalls    int
}

func (m *mockPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	p.ID = int64(len(m.created) + 1)
	m.created = append(m.created, p)
	return nil
}

func (m *mockPaymentRepo) GetByGatewayPaymentID(ctx context.Context, gateway domain.PaymentGateway, gatewayPaymentID string) (*domain.Payment, error) {
	if m.payment == nil || m.payment.GatewayPaymentID != gatewayPaymentID {
		return nil, errors.New("not found")
	}
	return m.payment, nil
}

func (m *mockPaymentRepo) ListByOrder(ctx context.Context, orderID int64) ([]domain.Payment, error) {
	return nil, nil
}

func (m *mockPaymentRepo) MarkCompletedIdempotent(ctx context.Context, id int64, rawBody string, completedAt time.Time) (bool, error) {
	m.completedCalls++
	return m.completedOK, nil
}

func (m *mockPaymentRepo) MarkFailed(ctx context.Context, id int64, rawBody, reason string) error {
	m.failedCalls++
	return nil
}

type mockPromos struct {
	validation *promo.Validation
	err        error
	redeems    int
}

func (m *mockPromos) Redeem(ctx context.Context, code string, orderAmount int64) (*promo.Validation, error) {
	m.redeems++
	if m.err != nil {
		return nil, m.err
	}
	return m.validation, nil
}

type mockYukassa struct {
	created *yookassa.Payment
	found   *yookassa.Payment
	findErr error
}

func (m *mockYukassa) CreatePayment(ctx context.Context, amount int64, description string, metadata map[string]string) (*yookassa.Payment, error) {
	return m.created, nil
}

func (m *mockYukassa) FindPayment(ctx context.Context, paymentID string) (*yookassa.Payment, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.found, nil
}

type mockSettings struct{ values map[string]string }

func (m *mockSettings) Get(ctx context.Context, key string) (string, error) {
	return m.values[key], nil
}

type mockReminders struct{ created []*domain.NotificationReminder }

func (m *mockReminders) Create(ctx context.Context, r *domain.NotificationReminder) error {
	m.created = append(m.created, r)
	return nil
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:             42,
		ServiceName:    "SEO-статья",
		ContactEmail:   "anna@example.com",
		EstimatedPrice: 575000,
		Status:         domain.OrderNew,
		PaymentStatus:  domain.PaymentUnpaid,
	}
}

func noopLogger(string, ...interface{}) {}

func TestCreatePayment_MissingCredentialsAbortsBeforeWrite(t *testing.T) {
	os.Unsetenv("MODULBANK_MERCHANT_ID")
	os.Unsetenv("MODULBANK_SECRET_KEY")
	repo := &mockPaymentRepo{}
	promos := &mockPromos{validation: &promo.Validation{
		Code:           &domain.PromoCode{ID: 9},
		DiscountAmount: 57500,
		FinalAmount:    517500,
	}}
	svc := NewService(repo, &mockOrderReader{order: testOrder()}, &mockOrderWriter{}, promos, nil, &mockSettings{values: map[string]string{}}, &mockReminders{}, nil, noopLogger)

	_, err := svc.CreatePayment(context.Background(), CreatePaymentRequest{OrderID: 42, Gateway: "modulbank", PromoCode: "WELCOME10"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no payment row written, got %d", len(repo.created))
	}
	if promos.redeems != 0 {
		t.Fatalf("expected no promo redemption on configuration error, got %d", promos.redeems)
	}
}

func TestCreatePayment_UnknownGatewayDoesNotRedeemPromo(t *testing.T) {
	repo := &mockPaymentRepo{}
	promos := &mockPromos{validation: &promo.Validation{
		Code:           &domain.PromoCode{ID: 9},
		DiscountAmount: 57500,
		FinalAmount:    517500,
	}}
	svc := NewService(repo, &mockOrderReader{order: testOrder()}, &mockOrderWriter{}, promos, nil, &mockSettings{values: map[string]string{}}, &mockReminders{}, nil, noopLogger)

	_, err := svc.CreatePayment(context.Background(), CreatePaymentRequest{OrderID: 42, Gateway: "paypal", PromoCode: "WELCOME10"})
	if !errors.Is(err, ErrUnknownGateway) {
		t.Fatalf("expected ErrUnknownGateway, got %v", err)
	}
	if promos.redeems != 0 {
		t.Fatalf("expected no promo redemption on unknown gateway, got %d", promos.redeems)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no payment row written, got %d", len(repo.created))
	}
}

func TestCreatePayment_ModulbankSignedRedirect(t *testing.T) {
	repo := &mockPaymentRepo{}
	settings := &mockSettings{values: map[string]string{
		"modulbank_merchant_id": "shop-1",
		"modulbank_secret_key":  "topsecret",
	}}
	svc := NewService(repo, &mockOrderReader{order: testOrder()}, &mockOrderWriter{}, &mockPromos{}, nil, settings, &mockReminders{}, nil, noopLogger)

	resp, err := svc.CreatePayment(context.Background(), CreatePaymentRequest{OrderID: 42, Gateway: "modulbank"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one pending payment row, got %d", len(repo.created))
	}
	p := repo.created[0]
	if p.Status != domain.PaymentStatusPending {
		t.Fatalf("expected pending status, got %s", p.Status)
	}
	if p.Amount != 575000 {
		t.Fatalf("expected amount 575000, got %d", p.Amount)
	}
	if !strings.Contains(resp.RedirectURL, "signature=") {
		t.Fatalf("redirect URL lacks signature: %s", resp.RedirectURL)
	}
	if !strings.HasPrefix(p.GatewayPaymentID, "42-") {
		t.Fatalf("gateway payment id should embed the order id, got %s", p.GatewayPaymentID)
	}
}

func TestCreatePayment_PromoDiscountApplied(t *testing.T) {
	repo := &mockPaymentRepo{}
	settings := &mockSettings{values: map[string]string{
		"modulbank_merchant_id": "shop-1",
		"modulbank_secret_key":  "topsecret",
	}}
	promoID := int64(9)
	promos := &mockPromos{validation: &promo.Validation{
		Code:           &domain.PromoCode{ID: promoID},
		DiscountAmount: 57500,
		FinalAmount:    517500,
	}}
	svc := NewService(repo, &mockOrderReader{order: testOrder()}, &mockOrderWriter{}, promos, nil, settings, &mockReminders{}, nil, noopLogger)

	resp, err := svc.CreatePayment(context.Background(), CreatePaymentRequest{OrderID: 42, Gateway: "modulbank", PromoCode: "WELCOME10"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Amount != 517500 || resp.DiscountAmount != 57500 {
		t.Fatalf("expected amount 517500 discount 57500, got %d/%d", resp.Amount, resp.DiscountAmount)
	}
	if repo.created[0].PromoCodeID == nil || *repo.created[0].PromoCodeID != promoID {
		t.Fatalf("expected promo code reference on payment row")
	}
}

func TestCreatePayment_AlreadyPaidRejected(t *testing.T) {
	order := testOrder()
	order.PaymentStatus = domain.PaymentPaid
	svc := NewService(&mockPaymentRepo{}, &mockOrderReader{order: order}, &mockOrderWriter{}, &mockPromos{}, nil, &mockSettings{values: map[string]string{}}, &mockReminders{}, nil, noopLogger)

	_, err := svc.CreatePayment(context.Background(), CreatePaymentRequest{OrderID: 42, Gateway: "modulbank"})
	if !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
}

func TestModulbankCallback_InvalidSignature(t *testing.T) {
	repo := &mockPaymentRepo{payment: &domain.Payment{ID: 1, GatewayPaymentID: "42-1", Amount: 575000, OrderID: 42}}
	settings := &mockSettings{values: map[string]string{"modulbank_secret_key": "topsecret"}}
	svc := NewService(repo, &mockOrderReader{order: testOrder()}, &mockOrderWriter{}, &mockPromos{}, nil, settings, &mockReminders{}, nil, noopLogger)

	fields := map[string]string{"order_id": "42-1", "state": "COMPLETE", "amount": "5750.00"}
	_, err := svc.HandleModulbankCallback(context.Background(), fields, "deadbeef", "raw")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if repo.completedCalls != 0 {
		t.Fatalf("expected no completion on invalid signature")
	}
}

func TestModulbankCallback_SuccessIsIdempotent(t *testing.T) {
	repo := &mockPaymentRepo{
		payment:     &domain.Payment{ID: 1, GatewayPaymentID: "42-1", Amount: 575000, OrderID: 42},
		completedOK: true,
	}
	settings := &mockSettings{values: map[string]string{"modulbank_secret_key": "topsecret"}}
	writer := &mockOrderWriter{}
	reminders := &mockReminders{}
	svc := NewService(repo, &mockOrderReader{order: testOrder()}, writer, &mockPromos{}, nil, settings, reminders, nil, noopLogger)

	fields := map[string]string{"order_id": "42-1", "state": "COMPLETE", "amount": "5750.00"}
	sig := signing.Sign(signing.SHA256Concat, "topsecret", fields)

	ack, err := svc.HandleModulbankCallback(context.Background(), fields, sig, "raw")
	if err != nil || ack != "SUCCESS" {
		t.Fatalf("expected SUCCESS ack, got ack=%s err=%v", ack, err)
	}
	if writer.markPaidCalls != 1 || writer.lastFinal != 575000 {
		t.Fatalf("expected order marked paid with final 575000, got calls=%d final=%d", writer.markPaidCalls, writer.lastFinal)
	}
	if len(reminders.created) != 1 || reminders.created[0].ReminderType != domain.EventPaymentSucceeded {
		t.Fatalf("expected one payment_succeeded reminder")
	}

	// Повторная доставка того же колбэка ничего не меняет
	repo.completedOK = false
	ack, err = svc.HandleModulbankCallback(context.Background(), fields, sig, "raw")
	if err != nil || ack != "SUCCESS" {
		t.Fatalf("expected SUCCESS ack on duplicate, got ack=%s err=%v", ack, err)
	}
	if writer.markPaidCalls != 1 {
		t.Fatalf("duplicate callback must not update the order again")
	}
	if len(reminders.created) != 1 {
		t.Fatalf("duplicate callback must not schedule another notification")
	}
}

func TestModulbankCallback_AmountMismatch(t *testing.T) {
	repo := &mockPaymentRepo{payment: &domain.Payment{ID: 1, GatewayPaymentID: "42-1", Amount: 575000, OrderID: 42}}
	settings := &mockSettings{values: map[string]string{"modulbank_secret_key": "topsecret"}}
	svc := NewService(repo, &mockOrderReader{order: testOrder()}, &mockOrderWriter{}, &mockPromos{}, nil, settings, &mockReminders{}, nil, noopLogger)

	fields := map[string]string{"order_id": "42-1", "state": "COMPLETE", "amount": "100.00"}
	sig := signing.Sign(signing.SHA256Concat, "topsecret", fields)

	_, err := svc.HandleModulbankCallback(context.Background(), fields, sig, "raw")
	if !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", err)
	}
	if repo.failedCalls != 1 {
		t.Fatalf("expected payment marked failed on mismatch")
	}
}

func TestYukassaWebhook_TrustsFetchedStatusOnly(t *testing.T) {
	repo := &mockPaymentRepo{
		payment:     &domain.Payment{ID: 2, GatewayPaymentID: "yk-abc", Amount: 575000, OrderID: 42, Gateway: domain.GatewayYukassa},
		completedOK: true,
	}
	writer := &mockOrderWriter{}
	// Вебхук говорит succeeded, но API отвечает pending
	yk := &mockYukassa{found: &yookassa.Payment{ID: "yk-abc", Status: "pending", Amount: 575000}}
	svc := NewService(repo, &mockOrderReader{order: testOrder()}, writer, &mockPromos{}, yk, &mockSettings{values: map[string]string{}}, &mockReminders{}, nil, noopLogger)

	body, _ := json.Marshal(map[string]interface{}{
		"type":   "payment.succeeded",
		"object": map[string]interface{}{"id": "yk-abc", "status": "succeeded"},
	})
	if err := svc.HandleYukassaWebhook(context.Background(), body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.completedCalls != 0 || writer.markPaidCalls != 0 {
		t.Fatalf("unverified webhook must not mutate anything")
	}

	// Теперь API подтверждает оплату
	yk.found.Status = "succeeded"
	if err := svc.HandleYukassaWebhook(context.Background(), body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.completedCalls != 1 || writer.markPaidCalls != 1 {
		t.Fatalf("confirmed webhook must complete payment and mark order paid")
	}
	if writer.lastFinal != 575000 {
		t.Fatalf("final price must come from the confirmed amount, got %d", writer.lastFinal)
	}
}

func TestYukassaWebhook_FetchFailureBlocksUpdate(t *testing.T) {
	repo := &mockPaymentRepo{payment: &domain.Payment{ID: 2, GatewayPaymentID: "yk-abc", Amount: 575000, OrderID: 42}}
	yk := &mockYukassa{findErr: errors.New("gateway unavailable")}
	svc := NewService(repo, &mockOrderReader{order: testOrder()}, &mockOrderWriter{}, &mockPromos{}, yk, &mockSettings{values: map[string]string{}}, &mockReminders{}, nil, noopLogger)

	body := []byte(`{"type":"payment.succeeded","object":{"id":"yk-abc"}}`)
	if err := svc.HandleYukassaWebhook(context.Background(), body); err == nil {
		t.Fatalf("expected error when verification fetch fails")
	}
	if repo.completedCalls != 0 {
		t.Fatalf("payment must stay untouched when verification fails")
	}
}

func TestMajorUnits(t *testing.T) {
	cases := map[int64]string{
		575000: "5750.00",
		100:    "1.00",
		5:      "0.05",
		123456: "1234.56",
	}
	for kopecks, want := range cases {
		if got := majorUnits(kopecks); got != want {
			t.Fatalf("majorUnits(%d) = %s, want %s", kopecks, got, want)
		}
	}
}
