package domain

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// PromoCode is a discount voucher. Codes are matched case-insensitively;
// the stored form is upper case. Fixed discounts and min_order_amount are
// in kopecks.
type PromoCode struct {
	ID             int64        `json:"id"`
	Code           string       `gorm:"uniqueIndex;type:varchar(64);not null" json:"code"`
	DiscountType   DiscountType `gorm:"type:varchar(16);not null" json:"discount_type"`
	DiscountValue  int64        `gorm:"not null" json:"discount_value"`
	MinOrderAmount int64        `json:"min_order_amount"`
	MaxUses        *int         `json:"max_uses,omitempty"`
	UsedCount      int          `json:"used_count"`
	Active         bool         `gorm:"default:true" json:"active"`
	ValidFrom      time.Time    `json:"valid_from"`
	ValidUntil     time.Time    `json:"valid_until"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (PromoCode) TableName() string { return "promo_codes" }

// IsExhausted reports whether the usage cap has been reached.
func (p *PromoCode) IsExhausted() bool {
	return p.MaxUses != nil && p.UsedCount >= *p.MaxUses
}
