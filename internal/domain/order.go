package domain

import "time"

type OrderStatus string

const (
	OrderNew        OrderStatus = "new"
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in_progress"
	OrderReview     OrderStatus = "review"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

type OrderPriority string

const (
	PriorityLow    OrderPriority = "low"
	PriorityMedium OrderPriority = "medium"
	PriorityHigh   OrderPriority = "high"
	PriorityUrgent OrderPriority = "urgent"
)

type PaymentState string

const (
	PaymentUnpaid   PaymentState = "unpaid"
	PaymentPaid     PaymentState = "paid"
	PaymentRefunded PaymentState = "refunded"
)

type DeadlineType string

const (
	DeadlineStandard DeadlineType = "standard"
	DeadlineUrgent   DeadlineType = "urgent"
	DeadlineExpress  DeadlineType = "express"
)

// Order is a copywriting order submitted from the site form.
// All prices are stored in kopecks.
type Order struct {
	ID              int64         `json:"id"`
	ServiceSlug     string        `json:"service_slug" validate:"required"`
	ServiceName     string        `json:"service_name"`
	ContactName     string        `json:"contact_name" validate:"required"`
	ContactEmail    string        `json:"contact_email" validate:"required,email"`
	ContactPhone    string        `json:"contact_phone,omitempty"`
	Details         string        `json:"details" validate:"required" gorm:"type:text"`
	AdditionalInfo  string        `json:"additional_info,omitempty" gorm:"type:text"`
	EstimatedPrice  int64         `json:"estimated_price"`
	FinalPrice      *int64        `json:"final_price,omitempty"`
	Deadline        DeadlineType  `json:"deadline"`
	Status          OrderStatus   `json:"status"`
	Priority        OrderPriority `json:"priority"`
	PaymentStatus   PaymentState  `json:"payment_status"`
	UserID          *int64        `json:"user_id,omitempty"`
	AssignedAdminID *int64        `json:"assigned_admin_id,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Order) TableName() string { return "orders" }

// IsTerminal reports whether no further status transitions are allowed.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderCompleted || o.Status == OrderCancelled
}
