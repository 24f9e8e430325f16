package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/service/payment"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type OrderHTTP struct {
	CheckoutSvc *service.CheckoutService
	Orders      *service.OrderService
}

type checkoutRequest struct {
	ShippingAddressID *uint                `json:"shipping_address_id"`
	PaymentMethod     models.PaymentMethod `json:"payment_method" validate:"required"`
	Card              *payment.CardDetails `json:"card"`
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req checkoutRequest
	if err := bind(c, &req); err != nil {
		return transport.Error(c, err)
	}

	order, err := h.CheckoutSvc.CreateOrderFromCart(ctx, service.CheckoutRequest{
		UserID:            userID,
		ShippingAddressID: req.ShippingAddressID,
		PaymentMethod:     req.PaymentMethod,
		Card:              req.Card,
	})
	if err != nil {
		if order != nil && errors.Is(err, service.ErrInvalidCardDetails) {
			status, code, msg := transport.FromError(err)
			return c.JSON(status, transport.Response{Message: msg, Code: code, Data: order})
		}
		l.Warn("checkout_error", "error", err)
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusCreated, "Order placed successfully", order)
}

func (h *OrderHTTP) List(c echo.Context) error {
	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}
	page, size := pageParams(c)
	orders, err := h.Orders.ListUserOrders(c.Request().Context(), userID, page, size)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "", orders)
}

func (h *OrderHTTP) Get(c echo.Context) error {
	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return transport.Error(c, err)
	}
	order, err := h.Orders.GetUserOrder(c.Request().Context(), userID, id)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "", order)
}

func (h *OrderHTTP) GetByNumber(c echo.Context) error {
	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}
	order, err := h.Orders.GetByNumber(c.Request().Context(), userID, c.Param("number"))
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "", order)
}
