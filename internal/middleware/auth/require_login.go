package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
)

// RequireUser admits customer tokens only.
func (a *Auth) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := a.authenticate(c)
		if err != nil {
			logging.FromContext(c.Request().Context()).Warn("auth_rejected", "reason", err.Error())
			return transport.Fail(c, http.StatusUnauthorized, "unauthorized", "Please login first")
		}
		if claims.Kind != tokens.KindUser {
			return transport.Fail(c, http.StatusForbidden, "forbidden", "Customer account required")
		}
		return next(c)
	}
}
