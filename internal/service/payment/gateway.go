// Package payment authorizes card payments. SimulatedGateway stands in for a
// real processor: it validates the card shape locally and never moves money.
package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrCardRejected = errors.New("card rejected")

type CardDetails struct {
	CardNumber  string `json:"card_number"`
	CardName    string `json:"card_name"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVV         string `json:"cvv"`
}

// Normalized returns the card number with spaces removed.
func (c CardDetails) Normalized() string {
	return strings.ReplaceAll(c.CardNumber, " ", "")
}

type Authorization struct {
	TransactionID string
	CardLast4     string
}

type Gateway interface {
	Authorize(ctx context.Context, amount decimal.Decimal, card CardDetails) (Authorization, error)
}

type SimulatedGateway struct{}

func (SimulatedGateway) Authorize(ctx context.Context, _ decimal.Decimal, card CardDetails) (Authorization, error) {
	if err := ctx.Err(); err != nil {
		return Authorization{}, err
	}

	number := card.Normalized()
	if !digits(number, 16) {
		return Authorization{}, fmt.Errorf("%w: card number must have 16 digits", ErrCardRejected)
	}
	if !digits(card.CVV, 3) {
		return Authorization{}, fmt.Errorf("%w: cvv must have 3 digits", ErrCardRejected)
	}
	txn, err := NewTransactionID()
	if err != nil {
		return Authorization{}, err
	}
	return Authorization{TransactionID: txn, CardLast4: number[len(number)-4:]}, nil
}

// digits reports whether s is exactly n ASCII digits. Once it holds, byte
// offsets into s are rune offsets too.
func digits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NewTransactionID returns "TXN-" followed by 16 upper-case hex characters.
func NewTransactionID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("transaction id: %w", err)
	}
	return "TXN-" + strings.ToUpper(hex.EncodeToString(b[:])), nil
}
