package promo

import (
	"context"

	"copyprocloud/internal/domain"
)

// PromoCodeRepository defines the storage operations the service needs.
type PromoCodeRepository interface {
	Create(ctx context.Context, p *domain.PromoCode) error
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	List(ctx context.Context, limit, offset int) ([]domain.PromoCode, error)
	Update(ctx context.Context, p *domain.PromoCode) error
	IncrementUsage(ctx context.Context, id int64) (bool, error)
}
