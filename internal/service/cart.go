package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type CartService struct {
	Repo *repo.GormRepo
	// Catalog resolves product snapshots for AddProduct. A nil Catalog reads
	// products straight from Repo.
	Catalog *CatalogService
}

// AddProductRequest is what a customer may choose: the product, how many and
// which size. Name, price and image always come from the catalog.
type AddProductRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"gte=0"`
	Size      string `json:"size"       validate:"max=10"`
}

// AddItemRequest carries the product snapshot stored on the cart line.
type AddItemRequest struct {
	ProductID uint            `json:"product_id" validate:"required"`
	Name      string          `json:"name"       validate:"required,max=200"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"      validate:"max=300"`
	Quantity  int             `json:"quantity"   validate:"gte=0"`
	Size      string          `json:"size"       validate:"max=10"`
}

func (s *CartService) GetCart(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.Repo.GetOrCreateCart(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// AddProduct looks the product up in the catalog and adds it to the cart with
// the catalog's name, price and image. Unknown and inactive products are ErrNotFound.
func (s *CartService) AddProduct(ctx context.Context, userID uint, req AddProductRequest) (int, *models.Product, error) {
	catalog := s.Catalog
	if catalog == nil {
		catalog = &CatalogService{Repo: s.Repo}
	}
	prod, err := catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return 0, nil, err
	}
	if !prod.IsActive {
		return 0, nil, fmt.Errorf("%w: product %d", ErrNotFound, req.ProductID)
	}

	count, err := s.AddToCart(ctx, userID, AddItemRequest{
		ProductID: prod.ID,
		Name:      prod.Name,
		Price:     prod.Price,
		Image:     prod.Image,
		Quantity:  req.Quantity,
		Size:      req.Size,
	})
	if err != nil {
		return 0, nil, err
	}
	return count, prod, nil
}

// AddToCart merges the item into the line with the same product and size or
// adds a new line. It returns the cart's total item count.
func (s *CartService) AddToCart(ctx context.Context, userID uint, req AddItemRequest) (int, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add")

	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if req.Price.IsNegative() {
		return 0, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	size := strings.TrimSpace(req.Size)
	if size == "" {
		size = models.DefaultSize
	}

	var count int
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		// the row lock serializes concurrent adds to one cart
		cart, err := tx.GetOrCreateCart(ctx, userID, true)
		if err != nil {
			return err
		}
		item := &models.CartItem{
			CartID:       cart.ID,
			ProductID:    req.ProductID,
			Size:         size,
			ProductName:  req.Name,
			ProductImage: req.Image,
			Price:        req.Price,
			Quantity:     req.Quantity,
		}
		if err := tx.AddCartItem(ctx, item); err != nil {
			return err
		}
		count, err = tx.CountCartItems(ctx, cart.ID)
		return err
	})
	if err != nil {
		l.Error("add_failed", "user_id", userID, "product_id", req.ProductID, "error", err)
		return 0, fmt.Errorf("add to cart: %w", err)
	}

	metrics.CartMutations.WithLabelValues("add").Inc()
	l.Info("item_added", "user_id", userID, "product_id", req.ProductID, "size", size, "quantity", req.Quantity)
	return count, nil
}

// UpdateCartItem sets the quantity of a line exactly; a quantity of zero or
// less removes the line.
func (s *CartService) UpdateCartItem(ctx context.Context, userID, itemID uint, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		if err := s.RemoveFromCart(ctx, userID, itemID); err != nil {
			return nil, err
		}
		return s.GetCart(ctx, userID)
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	err = s.Repo.SetCartItemQuantity(ctx, cart.ID, itemID, quantity)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}

	metrics.CartMutations.WithLabelValues("update").Inc()
	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, itemID uint) error {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return err
	}
	err = s.Repo.DeleteCartItem(ctx, cart.ID, itemID)
	if isNotFound(err) {
		return fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	}
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	metrics.CartMutations.WithLabelValues("remove").Inc()
	return nil
}

// ClearCart drops every line but keeps the cart itself.
func (s *CartService) ClearCart(ctx context.Context, userID uint) error {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Repo.ClearCartItems(ctx, cart.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	metrics.CartMutations.WithLabelValues("clear").Inc()
	logging.FromContext(ctx).With("svc", "cart.clear").Info("cart_cleared", "user_id", userID)
	return nil
}

func (s *CartService) ItemCount(ctx context.Context, userID uint) (int, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	return cart.ItemCount(), nil
}
