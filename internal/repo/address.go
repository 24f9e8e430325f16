package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

// AddressUpdate lists the mutable address fields. Nil fields are left untouched.
type AddressUpdate struct {
	FullName     *string `json:"full_name"`
	Phone        *string `json:"phone"`
	AddressLine1 *string `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	PostalCode   *string `json:"postal_code"`
	Country      *string `json:"country"`
	IsDefault    *bool   `json:"is_default"`
}

func (u AddressUpdate) apply(a *models.Address) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&a.FullName, u.FullName)
	set(&a.Phone, u.Phone)
	set(&a.AddressLine1, u.AddressLine1)
	set(&a.AddressLine2, u.AddressLine2)
	set(&a.City, u.City)
	set(&a.State, u.State)
	set(&a.PostalCode, u.PostalCode)
	set(&a.Country, u.Country)
	if u.IsDefault != nil {
		a.IsDefault = *u.IsDefault
	}
}

func (r *GormRepo) CreateAddress(ctx context.Context, a *models.Address) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *GormRepo) ListAddresses(ctx context.Context, userID uint) ([]models.Address, error) {
	var addrs []models.Address
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&addrs).Error; err != nil {
		return nil, err
	}
	return addrs, nil
}

func (r *GormRepo) GetAddress(ctx context.Context, userID, id uint) (*models.Address, error) {
	var a models.Address
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormRepo) UpdateAddress(ctx context.Context, userID, id uint, upd AddressUpdate) (*models.Address, error) {
	a, err := r.GetAddress(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	upd.apply(a)
	if err := r.DB.WithContext(ctx).Save(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *GormRepo) DeleteAddress(ctx context.Context, userID, id uint) error {
	return updateOne(r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Address{}))
}

// ClearDefaultAddresses unsets is_default on every address of the user except keepID.
func (r *GormRepo) ClearDefaultAddresses(ctx context.Context, userID, keepID uint) error {
	return r.DB.WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, keepID, true).
		Update("is_default", false).Error
}
