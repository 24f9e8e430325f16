package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/lock"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service/payment"
)

const (
	orderNumberPrefix   = "ORD-"
	orderNumberAttempts = 5

	defaultLockTTL  = 30 * time.Second
	defaultLockWait = 5 * time.Second
)

type CheckoutService struct {
	Repo    *repo.GormRepo
	Gateway payment.Gateway
	Locker  lock.Locker
	Events  mykafka.Publisher

	// KeepFailedOrderRecords commits a cancelled order with a failed payment
	// when card authorization fails. When false the attempt leaves no rows.
	KeepFailedOrderRecords bool
	LockTTL                time.Duration
	LockWait               time.Duration
}

type CheckoutRequest struct {
	UserID            uint
	ShippingAddressID *uint
	PaymentMethod     models.PaymentMethod
	Card              *payment.CardDetails
}

// CreateOrderFromCart turns the user's cart into an order with one item per
// cart line and a single payment. The cart is emptied only when the order is
// confirmed.
//
// A rejected card returns ErrInvalidCardDetails. If failed records are kept
// the cancelled order is returned alongside the error.
func (s *CheckoutService) CreateOrderFromCart(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.create_order")
	start := time.Now()
	method := string(req.PaymentMethod)

	if !req.PaymentMethod.Supported() {
		l.Warn("checkout_rejected", "user_id", req.UserID, "method", method, "reason", "unsupported payment method")
		metrics.ObserveCheckout(method, "rejected", start)
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPaymentMethod, method)
	}
	if req.PaymentMethod == models.PaymentCard && req.Card == nil {
		metrics.ObserveCheckout(method, "rejected", start)
		return nil, fmt.Errorf("%w: card details are required", ErrInvalidCardDetails)
	}

	release, err := s.acquire(ctx, req.UserID)
	if err != nil {
		l.Warn("checkout_busy", "user_id", req.UserID, "error", err)
		metrics.ObserveCheckout(method, "busy", start)
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			l.Warn("checkout_unlock_failed", "user_id", req.UserID, "error", err)
		}
	}()

	var (
		orderID uint
		payErr  error
	)
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		id, perr, err := s.convertCart(ctx, tx, req)
		if err != nil {
			return err
		}
		orderID, payErr = id, perr
		if payErr != nil && !s.KeepFailedOrderRecords {
			return payErr
		}
		return nil
	})

	switch {
	case errors.Is(err, ErrEmptyCart):
		l.Info("checkout_rejected", "user_id", req.UserID, "reason", "empty cart")
		metrics.ObserveCheckout(method, "empty_cart", start)
		return nil, err
	case payErr != nil && errors.Is(err, payErr):
		l.Warn("checkout_payment_failed", "user_id", req.UserID, "kept", false, "error", payErr)
		metrics.ObserveCheckout(method, "payment_failed", start)
		return nil, payErr
	case err != nil:
		l.Error("checkout_failed", "user_id", req.UserID, "method", method, "error", err)
		metrics.ObserveCheckout(method, "error", start)
		return nil, fmt.Errorf("%w: %w", ErrOrderCreationFailed, err)
	}

	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: reload order: %w", ErrOrderCreationFailed, err)
	}

	if payErr != nil {
		l.Warn("checkout_payment_failed", "user_id", req.UserID, "order_number", order.OrderNumber, "kept", true, "error", payErr)
		metrics.ObserveCheckout(method, "payment_failed", start)
		s.publishOrder(ctx, "order_payment_failed", order)
		return order, payErr
	}

	l.Info("order_created", "user_id", req.UserID, "order_number", order.OrderNumber,
		"method", method, "total", order.TotalAmount.StringFixed(2), "status", order.Status)
	metrics.ObserveCheckout(method, "confirmed", start)
	s.publishOrder(ctx, "order_created", order)
	return order, nil
}

// convertCart performs the writes of one checkout inside tx. A non-nil payErr
// means the order was written as cancelled; err aborts the transaction.
func (s *CheckoutService) convertCart(ctx context.Context, tx *repo.GormRepo, req CheckoutRequest) (orderID uint, payErr error, err error) {
	cart, err := tx.GetOrCreateCart(ctx, req.UserID, true)
	if err != nil {
		return 0, nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return 0, nil, ErrEmptyCart
	}

	number, err := uniqueOrderNumber(ctx, tx)
	if err != nil {
		return 0, nil, err
	}

	total := cart.Total()
	order := &models.Order{
		OrderNumber:       number,
		UserID:            req.UserID,
		Status:            models.OrderPending,
		TotalAmount:       total,
		ShippingAddressID: req.ShippingAddressID,
		Items:             make([]models.OrderItem, 0, len(cart.Items)),
		Payments: []models.Payment{{
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: models.PaymentPending,
			Amount:        total,
		}},
	}
	for _, ci := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   ci.ProductID,
			ProductName: ci.ProductName,
			Quantity:    ci.Quantity,
			Price:       ci.Price,
			Size:        ci.Size,
		})
	}
	if err := tx.CreateOrder(ctx, order); err != nil {
		return 0, nil, fmt.Errorf("create order: %w", err)
	}
	pay := order.Payment()

	switch req.PaymentMethod {
	case models.PaymentCOD:
		// cash is collected on delivery, the payment stays pending
	case models.PaymentCard:
		auth, err := s.Gateway.Authorize(ctx, total, *req.Card)
		if errors.Is(err, payment.ErrCardRejected) {
			pay.PaymentStatus = models.PaymentFailed
			if err := tx.SetPaymentResult(ctx, pay); err != nil {
				return 0, nil, fmt.Errorf("record failed payment: %w", err)
			}
			if err := tx.SetOrderStatus(ctx, order.ID, models.OrderCancelled); err != nil {
				return 0, nil, fmt.Errorf("cancel order: %w", err)
			}
			return order.ID, fmt.Errorf("%w: %w", ErrInvalidCardDetails, err), nil
		}
		if err != nil {
			return 0, nil, fmt.Errorf("authorize payment: %w", err)
		}
		pay.PaymentStatus = models.PaymentCompleted
		pay.TransactionID = auth.TransactionID
		pay.CardLast4 = auth.CardLast4
		if err := tx.SetPaymentResult(ctx, pay); err != nil {
			return 0, nil, fmt.Errorf("record payment: %w", err)
		}
	}

	if err := tx.SetOrderStatus(ctx, order.ID, models.OrderConfirmed); err != nil {
		return 0, nil, fmt.Errorf("confirm order: %w", err)
	}
	if err := tx.ClearCartItems(ctx, cart.ID); err != nil {
		return 0, nil, fmt.Errorf("clear cart: %w", err)
	}
	return order.ID, nil, nil
}

func (s *CheckoutService) acquire(ctx context.Context, userID uint) (lock.Release, error) {
	if s.Locker == nil {
		return func(context.Context) error { return nil }, nil
	}
	waitCtx, cancel := context.WithTimeout(ctx, ttlOr(s.LockWait, defaultLockWait))
	defer cancel()

	release, err := s.Locker.Acquire(waitCtx, "checkout:"+strconv.FormatUint(uint64(userID), 10), ttlOr(s.LockTTL, defaultLockTTL))
	// a locker that blocks until waitCtx expires reports the deadline rather than ErrNotAcquired
	if errors.Is(err, lock.ErrNotAcquired) || (errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil) {
		return nil, fmt.Errorf("%w: user %d", ErrCheckoutInProgress, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("checkout lock: %w", err)
	}
	return release, nil
}

func (s *CheckoutService) publishOrder(ctx context.Context, typ string, o *models.Order) {
	ev := mykafka.OrderEvent{
		Type:        typ,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount.StringFixed(2),
		OccurredAt:  time.Now().UTC(),
	}
	if p := o.Payment(); p != nil {
		ev.PaymentMethod = string(p.PaymentMethod)
		ev.PaymentStatus = string(p.PaymentStatus)
	}
	publish(ctx, s.Events, mykafka.TopicOrderEvents, o.OrderNumber, ev)
}

// NewOrderNumber returns "ORD-" followed by 16 upper-case hex characters.
func NewOrderNumber() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("order number: %w", err)
	}
	return orderNumberPrefix + strings.ToUpper(hex.EncodeToString(b[:])), nil
}

func uniqueOrderNumber(ctx context.Context, r *repo.GormRepo) (string, error) {
	for range orderNumberAttempts {
		number, err := NewOrderNumber()
		if err != nil {
			return "", err
		}
		taken, err := r.OrderNumberExists(ctx, number)
		if err != nil {
			return "", fmt.Errorf("order number: %w", err)
		}
		if !taken {
			return number, nil
		}
	}
	return "", fmt.Errorf("order number: no free number after %d attempts", orderNumberAttempts)
}
