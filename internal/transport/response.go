// Package transport defines the JSON envelope every endpoint answers with.
package transport

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func OK(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func Fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, Response{Success: false, Message: message, Code: code})
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorTable = []errorMapping{
	{service.ErrDuplicateEmail, http.StatusConflict, "duplicate_email", "Email already registered"},
	{service.ErrDuplicateUsername, http.StatusConflict, "duplicate_username", "Username already taken"},
	{service.ErrWeakPassword, http.StatusBadRequest, "weak_password", ""},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials"},
	{service.ErrAccountDeactivated, http.StatusForbidden, "account_deactivated", "Account is deactivated"},
	{service.ErrInvalidInvitation, http.StatusForbidden, "invalid_invitation", "Invalid or expired invitation"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden", "Forbidden"},
	{service.ErrItemNotFound, http.StatusNotFound, "item_not_found", "Item not found"},
	{service.ErrNotFound, http.StatusNotFound, "not_found", "Not found"},
	{service.ErrEmptyCart, http.StatusBadRequest, "empty_cart", "Cart is empty"},
	{service.ErrUnsupportedPaymentMethod, http.StatusBadRequest, "unsupported_payment_method", "Unsupported payment method"},
	{service.ErrInvalidCardDetails, http.StatusBadRequest, "invalid_card_details", "Invalid card details"},
	{service.ErrCheckoutInProgress, http.StatusConflict, "checkout_in_progress", "Another checkout is in progress"},
	{service.ErrInvalidTransition, http.StatusConflict, "invalid_transition", ""},
	{service.ErrAlreadySubscribed, http.StatusConflict, "already_subscribed", "Already subscribed"},
	{service.ErrValidation, http.StatusBadRequest, "validation", ""},
	{service.ErrOrderCreationFailed, http.StatusInternalServerError, "order_creation_failed", "Failed to create order"},
}

// FromError maps a service error to a status, a stable code and a message
// that is safe to show. Unknown errors become a generic 500.
func FromError(err error) (status int, code, message string) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			return m.status, m.code, msg
		}
	}
	return http.StatusInternalServerError, "internal", "Internal server error"
}

func Error(c echo.Context, err error) error {
	status, code, msg := FromError(err)
	return Fail(c, status, code, msg)
}
