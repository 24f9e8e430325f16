package payment

import (
	"context"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedGateway_Authorize(t *testing.T) {
	t.Parallel()

	amount := decimal.RequireFromString("3299.98")
	tests := []struct {
		name    string
		card    CardDetails
		wantErr bool
		last4   string
	}{
		{name: "valid with spaces", card: CardDetails{CardNumber: "4111 1111 1111 1234", CVV: "123"}, last4: "1234"},
		{name: "valid compact", card: CardDetails{CardNumber: "5500000000000004", CVV: "999"}, last4: "0004"},
		{name: "15 digits", card: CardDetails{CardNumber: "411111111111111", CVV: "123"}, wantErr: true},
		{name: "17 digits", card: CardDetails{CardNumber: "41111111111111111", CVV: "123"}, wantErr: true},
		{name: "short cvv", card: CardDetails{CardNumber: "4111111111111111", CVV: "12"}, wantErr: true},
		{name: "long cvv", card: CardDetails{CardNumber: "4111111111111111", CVV: "1234"}, wantErr: true},
		{name: "empty", card: CardDetails{}, wantErr: true},
		{name: "multibyte digits", card: CardDetails{CardNumber: "４１１１１１１１１１１１１１１１", CVV: "123"}, wantErr: true},
		{name: "multibyte number of 16 bytes", card: CardDetails{CardNumber: "41111111111111é", CVV: "123"}, wantErr: true},
		{name: "letters in number", card: CardDetails{CardNumber: "4111abcd11111111", CVV: "123"}, wantErr: true},
		{name: "multibyte cvv", card: CardDetails{CardNumber: "4111111111111111", CVV: "1é"}, wantErr: true},
		{name: "non-digit cvv", card: CardDetails{CardNumber: "4111111111111111", CVV: "12a"}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			auth, err := SimulatedGateway{}.Authorize(context.Background(), amount, tt.card)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCardRejected)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.last4, auth.CardLast4)
			assert.Regexp(t, regexp.MustCompile(`^TXN-[0-9A-F]{16}$`), auth.TransactionID)
		})
	}
}

func TestSimulatedGateway_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := SimulatedGateway{}.Authorize(ctx, decimal.NewFromInt(1), CardDetails{CardNumber: "4111111111111111", CVV: "123"})
	assert.ErrorIs(t, err, context.Canceled)
}
