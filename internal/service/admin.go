package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

type AdminService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
}

func (s *AdminService) ListUsers(ctx context.Context, page, size int) (util.Page[models.User], error) {
	from, limit := util.Calculate(page, size)
	users, total, err := s.Repo.ListUsers(ctx, from, limit)
	if err != nil {
		return util.Page[models.User]{}, fmt.Errorf("list users: %w", err)
	}
	return util.NewPage(users, total, page, limit), nil
}

func (s *AdminService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, id)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *AdminService) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	admins, err := s.Repo.ListAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

func (s *AdminService) ActivateUser(ctx context.Context, id uint) error {
	return s.setUserActive(ctx, id, true)
}

// DeactivateUser blocks future logins; tokens already issued stay valid
// until they expire.
func (s *AdminService) DeactivateUser(ctx context.Context, id uint) error {
	return s.setUserActive(ctx, id, false)
}

func (s *AdminService) setUserActive(ctx context.Context, id uint, active bool) error {
	err := s.Repo.SetUserActive(ctx, id, active)
	if isNotFound(err) {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}

	typ := "user_deactivated"
	if active {
		typ = "user_activated"
	}
	logging.FromContext(ctx).With("svc", "admin.users").Info(typ, "user_id", id)
	publish(ctx, s.Events, mykafka.TopicUserEvents, fmt.Sprint(id), mykafka.UserEvent{
		Type:       typ,
		UserID:     id,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// ListOrders lists every order, newest first. An empty status lists all.
func (s *AdminService) ListOrders(ctx context.Context, status models.OrderStatus, page, size int) (util.Page[models.Order], error) {
	if status != "" && !status.Valid() {
		return util.Page[models.Order]{}, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	from, limit := util.Calculate(page, size)
	orders, total, err := s.Repo.ListOrders(ctx, status, from, limit)
	if err != nil {
		return util.Page[models.Order]{}, fmt.Errorf("list orders: %w", err)
	}
	return util.NewPage(orders, total, page, limit), nil
}

func (s *AdminService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// UpdateOrderStatus moves an order along the status table. Setting the
// current status again changes nothing.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "admin.update_order_status")
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	var from models.OrderStatus
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		order, err := tx.GetOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		from = order.Status
		if !from.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, status)
		}
		if from == status {
			return nil
		}
		return tx.SetOrderStatus(ctx, id, status)
	})
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	if err != nil {
		l.Warn("status_change_rejected", "order_id", id, "status", status, "error", err)
		return nil, err
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if from != status {
		metrics.OrderStatusChanges.WithLabelValues(string(from), string(status)).Inc()
		l.Info("status_changed", "order_number", order.OrderNumber, "from", from, "to", status)
		publish(ctx, s.Events, mykafka.TopicOrderEvents, order.OrderNumber, mykafka.OrderEvent{
			Type:        "order_status_changed",
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			Status:      string(status),
			TotalAmount: order.TotalAmount.StringFixed(2),
			OccurredAt:  time.Now().UTC(),
		})
	}
	return order, nil
}
