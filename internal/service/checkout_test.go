package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/lock"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/service/payment"
)

var validCard = &payment.CardDetails{
	CardNumber:  "4111 1111 1111 1111",
	CardName:    "Asha Rao",
	ExpiryMonth: "12",
	ExpiryYear:  "2030",
	CVV:         "123",
}

func countOrders(t *testing.T, f *fixture) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.repo.DB.Model(&models.Order{}).Count(&n).Error)
	return n
}

func TestCheckout_EmptyCart(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	user := f.newUser(t)

	order, err := f.checkout.CreateOrderFromCart(context.Background(), CheckoutRequest{
		UserID: user.ID, PaymentMethod: models.PaymentCOD,
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, order)
	assert.Zero(t, countOrders(t, f))
}

func TestCheckout_CashOnDelivery(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := f.newUser(t)
	f.addItem(t, user.ID, 1, "1299.99", 1)
	f.addItem(t, user.ID, 2, "1999.99", 1)
	addr := uint(999)

	order, err := f.checkout.CreateOrderFromCart(ctx, CheckoutRequest{
		UserID: user.ID, ShippingAddressID: &addr, PaymentMethod: models.PaymentCOD,
	})
	require.NoError(t, err)

	assert.True(t, order.TotalAmount.Equal(dec("3299.98")), order.TotalAmount.String())
	assert.Equal(t, models.OrderConfirmed, order.Status)
	assert.Regexp(t, regexp.MustCompile(`^ORD-[0-9A-F]{16}$`), order.OrderNumber)
	require.NotNil(t, order.ShippingAddressID)
	assert.Equal(t, addr, *order.ShippingAddressID, "address id is stored unchecked")
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Product 1", order.Items[0].ProductName)

	pay := order.Payment()
	require.NotNil(t, pay)
	assert.Equal(t, models.PaymentPending, pay.PaymentStatus)
	assert.Equal(t, models.PaymentCOD, pay.PaymentMethod)
	assert.True(t, pay.Amount.Equal(dec("3299.98")))

	cart, err := f.cart.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	msgs := f.events.Messages(mykafka.TopicOrderEvents)
	require.Len(t, msgs, 1)
	var ev mykafka.OrderEvent
	require.NoError(t, json.Unmarshal(msgs[0].Value, &ev))
	assert.Equal(t, "order_created", ev.Type)
	assert.Equal(t, "3299.98", ev.TotalAmount)
	assert.Equal(t, order.OrderNumber, msgs[0].Key)
}

func TestCheckout_CardSuccess(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := f.newUser(t)
	f.addItem(t, user.ID, 1, "499.00", 2)

	order, err := f.checkout.CreateOrderFromCart(ctx, CheckoutRequest{
		UserID: user.ID, PaymentMethod: models.PaymentCard, Card: validCard,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, order.Status)

	pay := order.Payment()
	require.NotNil(t, pay)
	assert.Equal(t, models.PaymentCompleted, pay.PaymentStatus)
	assert.Equal(t, "1111", pay.CardLast4)
	assert.Regexp(t, `^TXN-[0-9A-F]{16}$`, pay.TransactionID)
}

func TestCheckout_CardRejected_KeepsAuditTrail(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := f.newUser(t)
	f.addItem(t, user.ID, 1, "499.00", 1)

	card := *validCard
	card.CardNumber = "4111 1111 1111 111"

	order, err := f.checkout.CreateOrderFromCart(ctx, CheckoutRequest{
		UserID: user.ID, PaymentMethod: models.PaymentCard, Card: &card,
	})
	require.ErrorIs(t, err, ErrInvalidCardDetails)
	require.NotNil(t, order)
	assert.Equal(t, models.OrderCancelled, order.Status)
	require.NotNil(t, order.Payment())
	assert.Equal(t, models.PaymentFailed, order.Payment().PaymentStatus)
	assert.Empty(t, order.Payment().TransactionID)

	cart, err := f.cart.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1, "cart survives a failed payment")

	msgs := f.events.Messages(mykafka.TopicOrderEvents)
	require.Len(t, msgs, 1)
	assert.Contains(t, string(msgs[0].Value), "order_payment_failed")
}

func TestCheckout_CardRejected_RollsBackWhenNotKept(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.checkout.KeepFailedOrderRecords = false
	ctx := context.Background()
	user := f.newUser(t)
	f.addItem(t, user.ID, 1, "499.00", 1)

	card := *validCard
	card.CVV = "12"

	order, err := f.checkout.CreateOrderFromCart(ctx, CheckoutRequest{
		UserID: user.ID, PaymentMethod: models.PaymentCard, Card: &card,
	})
	require.ErrorIs(t, err, ErrInvalidCardDetails)
	assert.Nil(t, order)
	assert.Zero(t, countOrders(t, f))

	var payments int64
	require.NoError(t, f.repo.DB.Model(&models.Payment{}).Count(&payments).Error)
	assert.Zero(t, payments)

	n, err := f.cart.ItemCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCheckout_RejectsBeforeWriting(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	user := f.newUser(t)
	f.addItem(t, user.ID, 1, "499.00", 1)

	tests := []struct {
		name string
		req  CheckoutRequest
		want error
	}{
		{name: "upi is not settled", req: CheckoutRequest{UserID: user.ID, PaymentMethod: models.PaymentUPI}, want: ErrUnsupportedPaymentMethod},
		{name: "unknown method", req: CheckoutRequest{UserID: user.ID, PaymentMethod: "bitcoin"}, want: ErrUnsupportedPaymentMethod},
		{name: "card without details", req: CheckoutRequest{UserID: user.ID, PaymentMethod: models.PaymentCard}, want: ErrInvalidCardDetails},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.checkout.CreateOrderFromCart(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, countOrders(t, f))
}

type brokenGateway struct{}

func (brokenGateway) Authorize(context.Context, decimal.Decimal, payment.CardDetails) (payment.Authorization, error) {
	return payment.Authorization{}, errors.New("processor unreachable")
}

func TestCheckout_GatewayFailureRollsBack(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.checkout.Gateway = brokenGateway{}
	ctx := context.Background()
	user := f.newUser(t)
	f.addItem(t, user.ID, 1, "499.00", 1)

	_, err := f.checkout.CreateOrderFromCart(ctx, CheckoutRequest{
		UserID: user.ID, PaymentMethod: models.PaymentCard, Card: validCard,
	})
	require.ErrorIs(t, err, ErrOrderCreationFailed)
	assert.Contains(t, err.Error(), "processor unreachable")
	assert.Zero(t, countOrders(t, f))

	n, err := f.cart.ItemCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCheckout_ConcurrentCallsYieldOneOrder(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	user := f.newUser(t)
	f.addItem(t, user.ID, 1, "499.00", 1)

	const callers = 4
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.checkout.CreateOrderFromCart(context.Background(), CheckoutRequest{
				UserID: user.ID, PaymentMethod: models.PaymentCOD,
			})
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrEmptyCart)
	}
	assert.Equal(t, 1, succeeded)
	assert.EqualValues(t, 1, countOrders(t, f))
}

type busyLocker struct{}

func (busyLocker) Acquire(context.Context, string, time.Duration) (lock.Release, error) {
	return nil, lock.ErrNotAcquired
}

func TestCheckout_LockContention(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.checkout.Locker = busyLocker{}
	user := f.newUser(t)
	f.addItem(t, user.ID, 1, "499.00", 1)

	_, err := f.checkout.CreateOrderFromCart(context.Background(), CheckoutRequest{
		UserID: user.ID, PaymentMethod: models.PaymentCOD,
	})
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	assert.Zero(t, countOrders(t, f))
}

// blockingLocker waits out the caller's context, as a lock server would under contention.
type blockingLocker struct{}

func (blockingLocker) Acquire(ctx context.Context, key string, _ time.Duration) (lock.Release, error) {
	<-ctx.Done()
	return nil, fmt.Errorf("acquire %s: %w", key, ctx.Err())
}

func TestCheckout_LockWaitExpires(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.checkout.Locker = blockingLocker{}
	f.checkout.LockWait = 20 * time.Millisecond
	user := f.newUser(t)
	f.addItem(t, user.ID, 1, "499.00", 1)

	_, err := f.checkout.CreateOrderFromCart(context.Background(), CheckoutRequest{
		UserID: user.ID, PaymentMethod: models.PaymentCOD,
	})
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	assert.Zero(t, countOrders(t, f))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.checkout.CreateOrderFromCart(ctx, CheckoutRequest{
		UserID: user.ID, PaymentMethod: models.PaymentCOD,
	})
	assert.NotErrorIs(t, err, ErrCheckoutInProgress, "a cancelled caller is not contention")
	assert.Zero(t, countOrders(t, f))
}

func TestNewOrderNumber_Unique(t *testing.T) {
	t.Parallel()

	const n = 10_000
	seen := make(map[string]struct{}, n)
	for range n {
		num, err := NewOrderNumber()
		require.NoError(t, err)
		require.Len(t, num, len("ORD-")+16)
		seen[num] = struct{}{}
	}
	assert.Len(t, seen, n)
}
