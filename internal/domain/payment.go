package domain

import "time"

type PaymentGateway string

const (
	GatewayModulbank PaymentGateway = "modulbank"
	GatewayYukassa   PaymentGateway = "yukassa"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// Payment is a single payment attempt for an order. Amount is in kopecks
// and already has the promo discount subtracted: amount = order estimated
// price - discount.
type Payment struct {
	ID               int64          `json:"id"`
	OrderID          int64          `gorm:"index;not null" json:"order_id"`
	Amount           int64          `gorm:"not null" json:"amount"`
	Currency         string         `gorm:"type:varchar(8);default:'RUB'" json:"currency"`
	Gateway          PaymentGateway `gorm:"type:varchar(20);index" json:"gateway"`
	GatewayPaymentID string         `gorm:"type:varchar(128);index" json:"gateway_payment_id"`
	Status           PaymentStatus  `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	PromoCodeID      *int64         `json:"promo_code_id,omitempty"`
	DiscountAmount   int64          `json:"discount_amount"`
	RedirectURL      string         `gorm:"type:text" json:"redirect_url,omitempty"`
	CallbackRawBody  string         `gorm:"type:text" json:"-"`
	FailureReason    string         `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
}

func (Payment) TableName() string { return "payments" }
