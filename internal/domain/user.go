package domain

import "time"

type UserRole string

const (
	RoleClient UserRole = "client"
	RoleAdmin  UserRole = "admin"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `gorm:"uniqueIndex;type:varchar(255);not null" json:"email" validate:"required,email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `gorm:"type:varchar(16);default:'client'" json:"role"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	TelegramID   *int64    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
