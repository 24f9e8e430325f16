package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "kafka:9092", want: []string{"kafka:9092"}},
		{name: "spaces and blanks", in: " a:1 , ,b:2 ", want: []string{"a:1", "b:2"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CSV(tt.in))
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("KEEP_FAILED_ORDER_RECORDS", "")
	t.Setenv("CHECKOUT_LOCK_TTL", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("CSRF_ENABLED", "")

	cfg := Load()

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.True(t, cfg.KeepFailedOrderRecords)
	assert.Equal(t, 30*time.Second, cfg.CheckoutLockTTL)
	assert.Equal(t, "products", cfg.ESIndex)
	assert.False(t, cfg.CookieSecure)
	assert.True(t, cfg.CSRFEnabled)
	assert.Error(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("KEEP_FAILED_ORDER_RECORDS", "false")
	t.Setenv("CHECKOUT_LOCK_TTL", "5s")
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("CSRF_ENABLED", "0")

	cfg := Load()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.False(t, cfg.KeepFailedOrderRecords)
	assert.Equal(t, 5*time.Second, cfg.CheckoutLockTTL)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.True(t, cfg.CookieSecure)
	assert.False(t, cfg.CSRFEnabled)
}
