package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) findCart(ctx context.Context, userID uint, forUpdate bool) (*models.Cart, error) {
	q := r.DB.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var cart models.Cart
	if err := q.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreateCart returns the user's cart with its items, creating an empty
// cart on first access. With forUpdate the cart row stays locked until the
// surrounding transaction ends.
func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID uint, forUpdate bool) (*models.Cart, error) {
	cart, err := r.findCart(ctx, userID, forUpdate)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created := models.Cart{UserID: userID}
		if err := r.DB.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
			Create(&created).Error; err != nil {
			return nil, err
		}
		cart, err = r.findCart(ctx, userID, forUpdate)
	}
	if err != nil {
		return nil, err
	}

	if err := r.DB.WithContext(ctx).Where("cart_id = ?", cart.ID).Order("id ASC").Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// AddCartItem merges item into an existing (cart, product, size) line or
// inserts it, in one statement, and reloads item with the stored quantity.
func (r *GormRepo) AddCartItem(ctx context.Context, item *models.CartItem) error {
	db := r.DB.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}, {Name: "size"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
		}),
	}).Create(item).Error; err != nil {
		return err
	}
	// the id returned for an updated row is driver specific, so read the line back by its key
	var stored models.CartItem
	if err := db.Where("cart_id = ? AND product_id = ? AND size = ?", item.CartID, item.ProductID, item.Size).
		First(&stored).Error; err != nil {
		return err
	}
	*item = stored
	return nil
}

func (r *GormRepo) GetCartItem(ctx context.Context, cartID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) SetCartItemQuantity(ctx context.Context, cartID, itemID uint, quantity int) error {
	return updateOne(r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Update("quantity", quantity))
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, cartID, itemID uint) error {
	return updateOne(r.DB.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&models.CartItem{}))
}

func (r *GormRepo) ClearCartItems(ctx context.Context, cartID uint) error {
	return r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// CountCartItems returns the sum of quantities in the cart.
func (r *GormRepo) CountCartItems(ctx context.Context, cartID uint) (int, error) {
	var n int64
	if err := r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ?", cartID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
