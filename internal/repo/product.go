package repo

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ProductPatch struct {
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Image       *string          `json:"image"`
	Description *string          `json:"description"`
	Culture     *string          `json:"culture"`
	Story       *string          `json:"story"`
	IsActive    *bool            `json:"is_active"`
}

func (p ProductPatch) apply(prod *models.Product) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&prod.Name, p.Name)
	set(&prod.Category, p.Category)
	set(&prod.Image, p.Image)
	set(&prod.Description, p.Description)
	set(&prod.Culture, p.Culture)
	set(&prod.Story, p.Story)
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.IsActive != nil {
		prod.IsActive = *p.IsActive
	}
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func activeInCategory(category string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_active = ?", true)
		if category != "" && category != "all" {
			db = db.Where("category = ?", category)
		}
		return db
	}
}

func (r *GormRepo) GetProducts(ctx context.Context, category string, offset, limit int) ([]models.Product, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Scopes(activeInCategory(category)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).
		Scopes(activeInCategory(category)).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SearchProducts is a plain LIKE match over name and description.
func (r *GormRepo) SearchProducts(ctx context.Context, query string, offset, limit int) ([]models.Product, int64, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	scope := func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ?", true).
			Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).Scopes(scope).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

func (r *GormRepo) PatchProduct(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	prod, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.apply(prod)
	if err := r.DB.WithContext(ctx).Save(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return updateOne(r.DB.WithContext(ctx).Delete(&models.Product{}, id))
}
