package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"copyprocloud/internal/domain"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	tx := r.db.WithContext(ctx).First(&p, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &p, nil
}

func (r *PaymentRepository) GetByGatewayPaymentID(ctx context.Context, gateway domain.PaymentGateway, gatewayPaymentID string) (*domain.Payment, error) {
	var p domain.Payment
	tx := r.db.WithContext(ctx).
		Where("gateway = ? AND gateway_payment_id = ?", string(gateway), gatewayPaymentID).
		First(&p)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &p, nil
}

func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.Payment, error) {
	var rows []domain.Payment
	tx := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&rows)
	return rows, tx.Error
}

// MarkCompletedIdempotent flips a payment to completed once. A duplicate
// webhook delivery finds no row to update and reports changed=false.
func (r *PaymentRepository) MarkCompletedIdempotent(ctx context.Context, id int64, rawBody string, completedAt time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("id = ? AND status <> ?", id, string(domain.PaymentStatusCompleted)).
		Updates(map[string]any{
			"status":            string(domain.PaymentStatusCompleted),
			"callback_raw_body": rawBody,
			"completed_at":      completedAt,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// MarkFailed is a dead end only for terminal rows: completed payments
// stay completed and refunded payments stay refunded, a late FAILED
// callback cannot pull them back.
func (r *PaymentRepository) MarkFailed(ctx context.Context, id int64, rawBody, reason string) error {
	return r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("id = ? AND status NOT IN ?", id, []string{
			string(domain.PaymentStatusCompleted),
			string(domain.PaymentStatusRefunded),
		}).
		Updates(map[string]any{
			"status":            string(domain.PaymentStatusFailed),
			"callback_raw_body": rawBody,
			"failure_reason":    reason,
		}).Error
}

// MarkRefunded is only reachable from completed.
func (r *PaymentRepository) MarkRefunded(ctx context.Context, id int64) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("id = ? AND status = ?", id, string(domain.PaymentStatusCompleted)).
		Update("status", string(domain.PaymentStatusRefunded))
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
