package service

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")

	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrInvalidInvitation  = errors.New("invalid or expired invitation")

	ErrItemNotFound = errors.New("item not found")

	ErrEmptyCart                = errors.New("cart is empty")
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	ErrInvalidCardDetails       = errors.New("invalid card details")
	ErrOrderCreationFailed      = errors.New("order creation failed")
	ErrCheckoutInProgress       = errors.New("checkout already in progress")
	ErrInvalidTransition        = errors.New("invalid order status transition")

	ErrAlreadySubscribed = errors.New("already subscribed")
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
