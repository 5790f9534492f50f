package domain

import "time"

// CatalogService is a copywriting service offered on the site. Prices are
// list prices in kopecks, delivery bounds are business days.
type CatalogService struct {
	ID              int64     `json:"id"`
	Slug            string    `gorm:"uniqueIndex;type:varchar(64);not null" json:"slug"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	Category        string    `gorm:"type:varchar(64);index" json:"category"`
	Description     string    `gorm:"type:text" json:"description,omitempty"`
	MinPrice        int64     `gorm:"not null" json:"min_price"`
	MaxPrice        int64     `json:"max_price"`
	MinDeliveryDays int       `json:"min_delivery_days"`
	MaxDeliveryDays int       `json:"max_delivery_days"`
	Active          bool      `gorm:"default:true;index" json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (CatalogService) TableName() string { return "services" }
