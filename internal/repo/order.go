package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

// CreateOrder inserts the order together with its items and payments.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	return exists(ctx, r.DB, &models.Order{}, "order_number = ?", number)
}

func (r *GormRepo) SetOrderStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	return updateOne(r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status))
}

func (r *GormRepo) SetPaymentResult(ctx context.Context, p *models.Payment) error {
	return updateOne(r.DB.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", p.ID).
		Select("payment_status", "transaction_id", "card_last4").
		Updates(p))
}

func withOrderDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := withOrderDetails(r.DB.WithContext(ctx)).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) GetOrderForUpdate(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	if err := withOrderDetails(r.DB.WithContext(ctx)).Where("order_number = ?", number).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uint, offset, limit int) ([]models.Order, int64, error) {
	return r.listOrders(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("user_id = ?", userID) }, offset, limit)
}

// ListOrders lists all orders, optionally restricted to one status.
func (r *GormRepo) ListOrders(ctx context.Context, status models.OrderStatus, offset, limit int) ([]models.Order, int64, error) {
	return r.listOrders(ctx, func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("status = ?", status)
	}, offset, limit)
}

func (r *GormRepo) listOrders(ctx context.Context, scope func(*gorm.DB) *gorm.DB, offset, limit int) ([]models.Order, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := withOrderDetails(r.DB.WithContext(ctx)).
		Scopes(scope).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
