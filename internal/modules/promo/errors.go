package promo

import "errors"

var (
	ErrNotFound       = errors.New("promo code not found")
	ErrInactive       = errors.New("promo code is inactive")
	ErrNotStarted     = errors.New("promo code is not valid yet")
	ErrExpired        = errors.New("promo code has expired")
	ErrExhausted      = errors.New("promo code usage limit reached")
	ErrBelowMinAmount = errors.New("order amount below promo code minimum")
	ErrValidation     = errors.New("validation failed")
)
