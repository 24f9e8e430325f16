package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AdminHTTP struct {
	Svc *service.AdminService
}

type statusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

func (h *AdminHTTP) ListUsers(c echo.Context) error {
	page, size := pageParams(c)
	users, err := h.Svc.ListUsers(c.Request().Context(), page, size)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "", users)
}

func (h *AdminHTTP) GetUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return transport.Error(c, err)
	}
	user, err := h.Svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "", user)
}

func (h *AdminHTTP) ActivateUser(c echo.Context) error {
	return h.setActive(c, true)
}

func (h *AdminHTTP) DeactivateUser(c echo.Context) error {
	return h.setActive(c, false)
}

func (h *AdminHTTP) setActive(c echo.Context, active bool) error {
	ctx := c.Request().Context()
	id, err := paramID(c, "id")
	if err != nil {
		return transport.Error(c, err)
	}

	if active {
		err = h.Svc.ActivateUser(ctx, id)
	} else {
		err = h.Svc.DeactivateUser(ctx, id)
	}
	if err != nil {
		return transport.Error(c, err)
	}

	adminID, _ := auth.SubjectID(c)
	logging.FromContext(ctx).With("handler", "admin.users").Info("user_state_changed", "admin_id", adminID, "user_id", id, "active", active)
	msg := "User deactivated"
	if active {
		msg = "User activated"
	}
	return transport.OK(c, http.StatusOK, msg, nil)
}

func (h *AdminHTTP) ListAdmins(c echo.Context) error {
	admins, err := h.Svc.ListAdmins(c.Request().Context())
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "", admins)
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	page, size := pageParams(c)
	status := models.OrderStatus(c.QueryParam("status"))
	if status == "all" {
		status = ""
	}
	orders, err := h.Svc.ListOrders(c.Request().Context(), status, page, size)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "", orders)
}

func (h *AdminHTTP) GetOrder(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return transport.Error(c, err)
	}
	order, err := h.Svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "", order)
}

func (h *AdminHTTP) UpdateOrderStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return transport.Error(c, err)
	}
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return transport.Error(c, err)
	}
	order, err := h.Svc.UpdateOrderStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "Order status updated to "+string(order.Status), order)
}
