package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

type cartView struct {
	*models.Cart
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func newCartView(c *models.Cart) cartView {
	return cartView{Cart: c, Total: c.Total(), ItemCount: c.ItemCount()}
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func unauthorized(c echo.Context) error {
	return transport.Fail(c, http.StatusUnauthorized, "unauthorized", "Please login first")
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}

	cart, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).With("handler", "cart.get").Error("get_cart_error", "error", err)
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "", newCartView(cart))
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req service.AddProductRequest
	if err := bind(c, &req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return transport.Error(c, err)
	}

	count, prod, err := h.Svc.AddProduct(ctx, userID, req)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, prod.Name+" added to cart", echo.Map{"cart_count": count})
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}
	itemID, err := paramID(c, "id")
	if err != nil {
		return transport.Error(c, err)
	}
	var req quantityRequest
	if err := bind(c, &req); err != nil {
		return transport.Error(c, err)
	}

	cart, err := h.Svc.UpdateCartItem(ctx, userID, itemID, req.Quantity)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "Cart updated", newCartView(cart))
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}
	itemID, err := paramID(c, "id")
	if err != nil {
		return transport.Error(c, err)
	}

	if err := h.Svc.RemoveFromCart(ctx, userID, itemID); err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "Item removed", nil)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}
	if err := h.Svc.ClearCart(ctx, userID); err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "Cart cleared", nil)
}

func (h *CartHTTP) Count(c echo.Context) error {
	userID, err := auth.SubjectID(c)
	if err != nil {
		return unauthorized(c)
	}
	n, err := h.Svc.ItemCount(c.Request().Context(), userID)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "", echo.Map{"count": n})
}
