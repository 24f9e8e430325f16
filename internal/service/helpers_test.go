package service

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/db/dbtest"
	"github.com/Skotchmaster/storefront/internal/lock"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service/payment"
)

var testSecret = []byte("test-jwt-secret")

type fixture struct {
	repo     *repo.GormRepo
	events   *mykafka.Recorder
	auth     *AuthService
	cart     *CartService
	checkout *CheckoutService
	users    *UserService
	admin    *AdminService
	orders   *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, dbtest.New(t))
}

// newPostgresFixture runs against TEST_DATABASE_URL. Row locks and unique
// index races only show up with several connections, which sqlite never has.
func newPostgresFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	gdb, err := db.Open(ctx, db.DriverPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, db.Migrate(ctx, gdb))
	return newFixtureOn(t, gdb)
}

func newFixtureOn(t *testing.T, gdb *gorm.DB) *fixture {
	t.Helper()

	r := repo.New(gdb)
	events := &mykafka.Recorder{}
	return &fixture{
		repo:   r,
		events: events,
		auth:   &AuthService{Repo: r, Events: events, JWTSecret: testSecret},
		cart:   &CartService{Repo: r},
		checkout: &CheckoutService{
			Repo:                   r,
			Gateway:                payment.SimulatedGateway{},
			Locker:                 lock.NewLocal(),
			Events:                 events,
			KeepFailedOrderRecords: true,
		},
		users:  &UserService{Repo: r},
		admin:  &AdminService{Repo: r, Events: events},
		orders: &OrderService{Repo: r},
	}
}

var (
	userSeq atomic.Int64
	// keeps generated accounts unique across runs on a shared database
	runTag = uuid.NewString()[:8]
)

func (f *fixture) newUser(t *testing.T) *models.User {
	t.Helper()
	n := userSeq.Add(1)
	u, err := f.auth.RegisterUser(context.Background(), RegisterUserRequest{
		Email:     fmt.Sprintf("user%d-%s@example.com", n, runTag),
		Username:  fmt.Sprintf("user%d-%s", n, runTag),
		Password:  "secret123",
		FirstName: "Asha",
		LastName:  "Rao",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) addItem(t *testing.T, userID, productID uint, price string, qty int) {
	t.Helper()
	_, err := f.cart.AddToCart(context.Background(), userID, AddItemRequest{
		ProductID: productID,
		Name:      fmt.Sprintf("Product %d", productID),
		Price:     decimal.RequireFromString(price),
		Quantity:  qty,
	})
	require.NoError(t, err)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
