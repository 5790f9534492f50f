package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"copyprocloud/internal/domain"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type orderModel struct {
	ID              int64      `gorm:"column:id;primaryKey"`
	ServiceSlug     string     `gorm:"column:service_slug"`
	ServiceName     string     `gorm:"column:service_name"`
	ContactName     string     `gorm:"column:contact_name"`
	ContactEmail    string     `gorm:"column:contact_email"`
	ContactPhone    *string    `gorm:"column:contact_phone"`
	Details         string     `gorm:"column:details"`
	AdditionalInfo  *string    `gorm:"column:additional_info"`
	EstimatedPrice  int64      `gorm:"column:estimated_price"`
	FinalPrice      *int64     `gorm:"column:final_price"`
	Deadline        string     `gorm:"column:deadline"`
	Status          string     `gorm:"column:status"`
	Priority        string     `gorm:"column:priority"`
	PaymentStatus   string     `gorm:"column:payment_status"`
	UserID          *int64     `gorm:"column:user_id"`
	AssignedAdminID *int64     `gorm:"column:assigned_admin_id"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
	CompletedAt     *time.Time `gorm:"column:completed_at"`
}

func (orderModel) TableName() string { return "orders" }

func toDomainOrder(m orderModel) *domain.Order {
	var phone, extra string
	if m.ContactPhone != nil {
		phone = *m.ContactPhone
	}
	if m.AdditionalInfo != nil {
		extra = *m.AdditionalInfo
	}

	return &domain.Order{
		ID:              m.ID,
		ServiceSlug:     m.ServiceSlug,
		ServiceName:     m.ServiceName,
		ContactName:     m.ContactName,
		ContactEmail:    m.ContactEmail,
		ContactPhone:    phone,
		Details:         m.Details,
		AdditionalInfo:  extra,
		EstimatedPrice:  m.EstimatedPrice,
		FinalPrice:      m.FinalPrice,
		Deadline:        domain.DeadlineType(m.Deadline),
		Status:          domain.OrderStatus(m.Status),
		Priority:        domain.OrderPriority(m.Priority),
		PaymentStatus:   domain.PaymentState(m.PaymentStatus),
		UserID:          m.UserID,
		AssignedAdminID: m.AssignedAdminID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		CompletedAt:     m.CompletedAt,
	}
}

func toOrderModel(o *domain.Order) orderModel {
	var phone, extra *string
	if o.ContactPhone != "" {
		v := o.ContactPhone
		phone = &v
	}
	if o.AdditionalInfo != "" {
		v := o.AdditionalInfo
		extra = &v
	}

	return orderModel{
		ID:              o.ID,
		ServiceSlug:     o.ServiceSlug,
		ServiceName:     o.ServiceName,
		ContactName:     o.ContactName,
		ContactEmail:    o.ContactEmail,
		ContactPhone:    phone,
		Details:         o.Details,
		AdditionalInfo:  extra,
		EstimatedPrice:  o.EstimatedPrice,
		FinalPrice:      o.FinalPrice,
		Deadline:        string(o.Deadline),
		Status:          string(o.Status),
		Priority:        string(o.Priority),
		PaymentStatus:   string(o.PaymentStatus),
		UserID:          o.UserID,
		AssignedAdminID: o.AssignedAdminID,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		CompletedAt:     o.CompletedAt,
	}
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	m := toOrderModel(o)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*o = *toDomainOrder(m)
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var m orderModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainOrder(m), nil
}

// List returns orders newest first, optionally filtered by status.
func (r *OrderRepository) List(ctx context.Context, status *domain.OrderStatus, limit, offset int) ([]*domain.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&orderModel{})
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []orderModel
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*domain.Order, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainOrder(m))
	}
	return out, total, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Order, error) {
	var rows []orderModel
	tx := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]*domain.Order, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainOrder(m))
	}
	return out, nil
}

// UpdateStatus moves the order to status. completed_at is written exactly
// once, on the first transition to completed, and never touched afterwards.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	updates := map[string]any{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}
	q := r.db.WithContext(ctx).Model(&orderModel{}).Where("id = ?", id)
	if status == domain.OrderCompleted {
		q = q.Where("completed_at IS NULL")
		updates["completed_at"] = time.Now().UTC()
	}
	tx := q.Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 && status == domain.OrderCompleted {
		// already completed earlier; the timestamp stays as it was
		return r.db.WithContext(ctx).Model(&orderModel{}).
			Where("id = ?", id).
			Update("status", string(status)).Error
	}
	return nil
}

func (r *OrderRepository) UpdatePriority(ctx context.Context, id int64, priority domain.OrderPriority) error {
	return r.db.WithContext(ctx).Model(&orderModel{}).
		Where("id = ?", id).
		Update("priority", string(priority)).Error
}

func (r *OrderRepository) AssignAdmin(ctx context.Context, id, adminID int64) error {
	return r.db.WithContext(ctx).Model(&orderModel{}).
		Where("id = ?", id).
		Update("assigned_admin_id", adminID).Error
}

// MarkPaidIdempotent records a confirmed payment on the order: payment
// status paid, final price from the confirmed amount, and new/pending
// orders move to in_progress. Reapplying the same event is a no-op; the
// returned flag is false when nothing changed.
func (r *OrderRepository) MarkPaidIdempotent(ctx context.Context, id int64, finalPrice int64) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&orderModel{}).
		Where("id = ? AND payment_status <> ?", id, string(domain.PaymentPaid)).
		Updates(map[string]any{
			"payment_status": string(domain.PaymentPaid),
			"final_price":    finalPrice,
			"updated_at":     time.Now().UTC(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	changed := tx.RowsAffected > 0

	if changed {
		err := r.db.WithContext(ctx).Model(&orderModel{}).
			Where("id = ? AND status IN ?", id, []string{string(domain.OrderNew), string(domain.OrderPending)}).
			Update("status", string(domain.OrderInProgress)).Error
		if err != nil {
			return changed, err
		}
	}
	return changed, nil
}
