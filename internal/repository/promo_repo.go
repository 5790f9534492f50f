package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"copyprocloud/internal/domain"
)

type PromoCodeRepository struct {
	db *gorm.DB
}

func NewPromoCodeRepository(db *gorm.DB) *PromoCodeRepository {
	return &PromoCodeRepository{db: db}
}

func (r *PromoCodeRepository) Create(ctx context.Context, p *domain.PromoCode) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	return r.db.WithContext(ctx).Create(p).Error
}

// GetByCode is case-insensitive: codes are stored upper case.
func (r *PromoCodeRepository) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	var p domain.PromoCode
	tx := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&p)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &p, nil
}

func (r *PromoCodeRepository) List(ctx context.Context, limit, offset int) ([]domain.PromoCode, error) {
	var rows []domain.PromoCode
	tx := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows)
	return rows, tx.Error
}

func (r *PromoCodeRepository) Update(ctx context.Context, p *domain.PromoCode) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// IncrementUsage bumps used_count while respecting the usage cap. The
// guard keeps used_count <= max_uses even under concurrent redemptions.
func (r *PromoCodeRepository) IncrementUsage(ctx context.Context, id int64) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.PromoCode{}).
		Where("id = ? AND (max_uses IS NULL OR used_count < max_uses)", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
