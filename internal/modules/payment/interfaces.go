package payment

import (
	"context"
	"time"

	"copyprocloud/internal/domain"
	"copyprocloud/internal/infra/yookassa"
	"copyprocloud/internal/modules/promo"
)

type paymentRepo interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByGatewayPaymentID(ctx context.Context, gateway domain.PaymentGateway, gatewayPaymentID string) (*domain.Payment, error)
	ListByOrder(ctx context.Context, orderID int64) ([]domain.Payment, error)
	MarkCompletedIdempotent(ctx context.Context, id int64, rawBody string, completedAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id int64, rawBody, reason string) error
}

type orderReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
}

type orderPaidWriter interface {
	MarkPaidIdempotent(ctx context.Context, id int64, finalPrice int64) (bool, error)
}

type promoRedeemer interface {
	Redeem(ctx context.Context, code string, orderAmount int64) (*promo.Validation, error)
}

type yookassaGateway interface {
	CreatePayment(ctx context.Context, amount int64, description string, metadata map[string]string) (*yookassa.Payment, error)
	FindPayment(ctx context.Context, paymentID string) (*yookassa.Payment, error)
}

type settingsReader interface {
	Get(ctx context.Context, key string) (string, error)
}

type reminderScheduler interface {
	Create(ctx context.Context, r *domain.NotificationReminder) error
}

type activityLogger interface {
	Create(ctx context.Context, l *domain.ActivityLog) error
}
