package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

func (h *UserHTTP) Profile(c echo.Context) error {
	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}
	user, err := h.Svc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "", user)
}

func (h *UserHTTP) UpdateProfile(c echo.Context) error {
	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}
	var upd repo.ProfileUpdate
	if err := bind(c, &upd); err != nil {
		return transport.Error(c, err)
	}
	user, err := h.Svc.UpdateProfile(c.Request().Context(), userID, upd)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "Profile updated", user)
}

func (h *UserHTTP) ChangePassword(c echo.Context) error {
	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req changePasswordRequest
	if err := bind(c, &req); err != nil {
		return transport.Error(c, err)
	}
	if err := h.Svc.ChangePassword(c.Request().Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "Password changed", nil)
}

func (h *UserHTTP) ListAddresses(c echo.Context) error {
	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}
	addrs, err := h.Svc.ListAddresses(c.Request().Context(), userID)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "", addrs)
}

func (h *UserHTTP) AddAddress(c echo.Context) error {
	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req service.AddressRequest
	if err := bind(c, &req); err != nil {
		return transport.Error(c, err)
	}
	addr, err := h.Svc.AddAddress(c.Request().Context(), userID, req)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusCreated, "Address added", addr)
}

func (h *UserHTTP) UpdateAddress(c echo.Context) error {
	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return transport.Error(c, err)
	}
	var upd repo.AddressUpdate
	if err := bind(c, &upd); err != nil {
		return transport.Error(c, err)
	}
	addr, err := h.Svc.UpdateAddress(c.Request().Context(), userID, id, upd)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "Address updated", addr)
}

func (h *UserHTTP) SetDefaultAddress(c echo.Context) error {
	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return transport.Error(c, err)
	}
	addr, err := h.Svc.SetDefaultAddress(c.Request().Context(), userID, id)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "Default address set", addr)
}

func (h *UserHTTP) DeleteAddress(c echo.Context) error {
	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return transport.Error(c, err)
	}
	if err := h.Svc.DeleteAddress(c.Request().Context(), userID, id); err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "Address deleted", nil)
}
