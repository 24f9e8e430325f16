package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CatalogHTTP struct {
	Svc        *service.CatalogService
	Newsletter *service.NewsletterService
}

type subscribeRequest struct {
	Email string `json:"email"`
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	page, size := pageParams(c)
	products, err := h.Svc.ListProducts(c.Request().Context(), c.QueryParam("category"), page, size)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "", products)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return transport.Error(c, err)
	}
	product, err := h.Svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "", product)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	page, size := pageParams(c)
	products, err := h.Svc.SearchProducts(c.Request().Context(), c.QueryParam("q"), page, size)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "", products)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	var req service.CreateProductRequest
	if err := bind(c, &req); err != nil {
		return transport.Error(c, err)
	}
	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		logging.FromContext(ctx).With("handler", "product.create").Warn("create_product_error", "error", err)
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusCreated, "Product created", product)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return transport.Error(c, err)
	}
	var patch repo.ProductPatch
	if err := bind(c, &patch); err != nil {
		return transport.Error(c, err)
	}
	product, err := h.Svc.PatchProduct(c.Request().Context(), id, patch)
	if err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "Product updated", product)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return transport.Error(c, err)
	}
	if err := h.Svc.DeleteProduct(c.Request().Context(), id); err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusOK, "Product deleted", nil)
}

func (h *CatalogHTTP) Subscribe(c echo.Context) error {
	var req subscribeRequest
	if err := bind(c, &req); err != nil {
		return transport.Error(c, err)
	}
	if err := h.Newsletter.Subscribe(c.Request().Context(), req.Email); err != nil {
		return transport.Error(c, err)
	}
	return transport.OK(c, http.StatusCreated, "Successfully subscribed to newsletter!", nil)
}
