package promo

import (
	"context"
	"strings"
	"time"

	"copyprocloud/internal/domain"
)

type Service struct {
	codes PromoCodeRepository
	now   func() time.Time
}

func NewService(codes PromoCodeRepository) *Service {
	return &Service{codes: codes, now: time.Now}
}

// Validation is the outcome of applying a code to an order amount.
// Amounts are in kopecks.
type Validation struct {
	Code           *domain.PromoCode `json:"promo_code"`
	DiscountAmount int64             `json:"discount_amount"`
	FinalAmount    int64             `json:"final_amount"`
}

// Validate checks the code against the order amount and computes the
// discount: floor(amount*value/100) for percentage codes, the fixed value
// otherwise, capped so the final amount never goes negative.
func (s *Service) Validate(ctx context.Context, code string, orderAmount int64) (*Validation, error) {
	if strings.TrimSpace(code) == "" || orderAmount < 0 {
		return nil, ErrValidation
	}

	p, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		return nil, ErrNotFound
	}

	now := s.now()
	switch {
	case !p.Active:
		return nil, ErrInactive
	case now.Before(p.ValidFrom):
		return nil, ErrNotStarted
	case now.After(p.ValidUntil):
		return nil, ErrExpired
	case p.IsExhausted():
		return nil, ErrExhausted
	case orderAmount < p.MinOrderAmount:
		return nil, ErrBelowMinAmount
	}

	discount := discountFor(p, orderAmount)
	return &Validation{
		Code:           p,
		DiscountAmount: discount,
		FinalAmount:    orderAmount - discount,
	}, nil
}

// Redeem validates and consumes one use of the code. The usage cap is
// enforced again at the storage level, so a concurrent redemption that
// would overshoot max_uses is rejected here with ErrExhausted.
func (s *Service) Redeem(ctx context.Context, code string, orderAmount int64) (*Validation, error) {
	v, err := s.Validate(ctx, code, orderAmount)
	if err != nil {
		return nil, err
	}

	ok, err := s.codes.IncrementUsage(ctx, v.Code.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrExhausted
	}
	return v, nil
}

func discountFor(p *domain.PromoCode, amount int64) int64 {
	var discount int64
	switch p.DiscountType {
	case domain.DiscountPercentage:
		discount = amount * p.DiscountValue / 100
	case domain.DiscountFixed:
		discount = p.DiscountValue
	}
	if discount > amount {
		discount = amount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

func (s *Service) Create(ctx context.Context, p *domain.PromoCode) error {
	if strings.TrimSpace(p.Code) == "" || p.DiscountValue <= 0 {
		return ErrValidation
	}
	if p.DiscountType != domain.DiscountPercentage && p.DiscountType != domain.DiscountFixed {
		return ErrValidation
	}
	if p.DiscountType == domain.DiscountPercentage && p.DiscountValue > 100 {
		return ErrValidation
	}
	return s.codes.Create(ctx, p)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.PromoCode, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.codes.List(ctx, limit, offset)
}

func (s *Service) SetActive(ctx context.Context, code string, active bool) (*domain.PromoCode, error) {
	p, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		return nil, ErrNotFound
	}
	p.Active = active
	if err := s.codes.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
