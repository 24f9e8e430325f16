package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

type OrderService struct {
	Repo *repo.GormRepo
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID uint, page, size int) (util.Page[models.Order], error) {
	from, limit := util.Calculate(page, size)
	orders, total, err := s.Repo.ListOrdersByUser(ctx, userID, from, limit)
	if err != nil {
		return util.Page[models.Order]{}, fmt.Errorf("list orders: %w", err)
	}
	return util.NewPage(orders, total, page, limit), nil
}

// GetUserOrder hides orders owned by someone else behind ErrNotFound.
func (s *OrderService) GetUserOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if isNotFound(err) || (err == nil && order.UserID != userID) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (s *OrderService) GetByNumber(ctx context.Context, userID uint, number string) (*models.Order, error) {
	order, err := s.Repo.GetOrderByNumber(ctx, number)
	if isNotFound(err) || (err == nil && order.UserID != userID) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, number)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}
