package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateSubscriber(ctx context.Context, s *models.Subscriber) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) SubscriberExists(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.DB, &models.Subscriber{}, "email = ?", email)
}

func (r *GormRepo) CountSubscribers(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Subscriber{}).Count(&n).Error
	return n, err
}
