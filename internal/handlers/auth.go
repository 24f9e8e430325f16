package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AuthHTTP struct {
	Svc  *service.AuthService
	Auth *auth.Auth
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

type inviteRequest struct {
	Email string           `json:"email" validate:"required,email"`
	Role  models.AdminRole `json:"role"`
}

type sessionResponse struct {
	Account any `json:"account"`
	service.AccessToken
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req service.RegisterUserRequest
	if err := bind(c, &req); err != nil {
		return transport.Error(c, err)
	}

	user, err := h.Svc.RegisterUser(ctx, req)
	if err != nil {
		l.Warn("register_error", "error", err)
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusCreated, "Registration successful", user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req loginRequest
	if err := bind(c, &req); err != nil {
		return transport.Error(c, err)
	}

	user, err := h.Svc.LoginUser(ctx, req.Identifier, req.Password)
	if err != nil {
		return transport.Error(c, err)
	}
	tok, err := h.Svc.IssueAccessToken(user.ID, tokens.KindUser, "")
	if err != nil {
		l.Error("login_error", "reason", "cannot issue token", "error", err)
		return transport.Error(c, err)
	}

	c.SetCookie(h.Auth.CreateCookie(auth.AccessCookie, tok.Token, tok.ExpiresAt))
	return transport.OK(c, http.StatusOK, "Welcome back, "+user.FullName(), sessionResponse{Account: user, AccessToken: tok})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	c.SetCookie(h.Auth.DeleteCookie(auth.AccessCookie))
	return transport.OK(c, http.StatusOK, "Logged out", nil)
}

func (h *AuthHTTP) AdminLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.admin_login")

	var req loginRequest
	if err := bind(c, &req); err != nil {
		return transport.Error(c, err)
	}

	admin, err := h.Svc.LoginAdmin(ctx, req.Identifier, req.Password)
	if err != nil {
		return transport.Error(c, err)
	}
	tok, err := h.Svc.IssueAccessToken(admin.ID, tokens.KindAdmin, string(admin.Role))
	if err != nil {
		l.Error("admin_login_error", "reason", "cannot issue token", "error", err)
		return transport.Error(c, err)
	}

	c.SetCookie(h.Auth.CreateCookie(auth.AccessCookie, tok.Token, tok.ExpiresAt))
	return transport.OK(c, http.StatusOK, "Welcome, "+admin.Username, sessionResponse{Account: admin, AccessToken: tok})
}

// AdminRegister creates an admin from an invitation token.
func (h *AuthHTTP) AdminRegister(c echo.Context) error {
	ctx := c.Request().Context()

	var req service.RegisterAdminRequest
	if err := bind(c, &req); err != nil {
		return transport.Error(c, err)
	}

	admin, err := h.Svc.RegisterAdmin(ctx, req)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusCreated, "Admin registration successful", admin)
}

func (h *AuthHTTP) InviteAdmin(c echo.Context) error {
	ctx := c.Request().Context()

	issuerID, err := auth.SubjectID(c)
	if err != nil {
		return transport.Fail(c, http.StatusUnauthorized, "unauthorized", "Admin login required")
	}

	var req inviteRequest
	if err := bind(c, &req); err != nil {
		return transport.Error(c, err)
	}

	token, err := h.Svc.IssueAdminInvitation(ctx, issuerID, req.Email, req.Role)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusCreated, "Invitation issued", echo.Map{"invite_token": token, "email": req.Email})
}
