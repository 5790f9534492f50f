package promo

import "time"

type ValidateRequest struct {
	Code        string `json:"code" validate:"required"`
	OrderAmount int64  `json:"order_amount" validate:"gte=0"`
}

type CreateRequest struct {
	Code           string    `json:"code" validate:"required"`
	DiscountType   string    `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue  int64     `json:"discount_value" validate:"required,gt=0"`
	MinOrderAmount int64     `json:"min_order_amount" validate:"gte=0"`
	MaxUses        *int      `json:"max_uses,omitempty"`
	ValidFrom      time.Time `json:"valid_from"`
	ValidUntil     time.Time `json:"valid_until" validate:"required"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}
