package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func (a *Auth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := a.authenticate(c)
		if err != nil {
			logging.FromContext(c.Request().Context()).Warn("admin_auth_rejected", "reason", err.Error())
			return transport.Fail(c, http.StatusUnauthorized, "unauthorized", "Admin login required")
		}
		if claims.Kind != tokens.KindAdmin || !models.AdminRole(claims.Role).Valid() {
			return transport.Fail(c, http.StatusForbidden, "forbidden", "You don't have enough rights")
		}
		return next(c)
	}
}

// RequireSuperAdmin must run after RequireAdmin.
func (a *Auth) RequireSuperAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if models.AdminRole(Role(c)) != models.RoleSuperAdmin {
			return transport.Fail(c, http.StatusForbidden, "forbidden", "Super admin access required")
		}
		return next(c)
	}
}
