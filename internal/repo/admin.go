package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateAdmin(ctx context.Context, a *models.Admin) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *GormRepo) GetAdminByID(ctx context.Context, id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := r.DB.WithContext(ctx).First(&admin, id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *GormRepo) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *GormRepo) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *GormRepo) AdminEmailExists(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.DB, &models.Admin{}, "email = ?", email)
}

func (r *GormRepo) AdminUsernameExists(ctx context.Context, username string) (bool, error) {
	return exists(ctx, r.DB, &models.Admin{}, "username = ?", username)
}

func (r *GormRepo) TouchAdminLogin(ctx context.Context, id uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", id).Update("last_login", at).Error
}

func (r *GormRepo) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	var admins []models.Admin
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

func (r *GormRepo) CreateInvitation(ctx context.Context, inv *models.AdminInvitation) error {
	return r.DB.WithContext(ctx).Create(inv).Error
}

// GetInvitationForUpdate row-locks the invitation so two registrations cannot consume it.
func (r *GormRepo) GetInvitationForUpdate(ctx context.Context, jti string) (*models.AdminInvitation, error) {
	var inv models.AdminInvitation
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("jti = ?", jti).
		First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *GormRepo) MarkInvitationUsed(ctx context.Context, id uint, at time.Time) error {
	return updateOne(r.DB.WithContext(ctx).
		Model(&models.AdminInvitation{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at))
}
