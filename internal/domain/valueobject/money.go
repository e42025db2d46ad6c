package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a fixed-scale-2 monetary amount tagged with an ISO-4217
// currency code. It is always non-negative.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney validates and constructs a Money value. amount must be
// non-negative; currency must be a 3-letter ISO-4217 code.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("amount must not be negative, got %s", amount.String())
	}
	if len(currency) != 3 {
		return Money{}, fmt.Errorf("currency must be a 3-letter ISO-4217 code, got %q", currency)
	}
	return Money{
		amount:   amount.Round(2),
		currency: currency,
	}, nil
}

// MustMoney panics on invalid input; only used in tests and fixtures.
func MustMoney(amount string, currency string) Money {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	m, err := NewMoney(d, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// Decimal returns the underlying decimal amount.
func (m Money) Decimal() decimal.Decimal { return m.amount }

// Currency returns the ISO-4217 currency code.
func (m Money) Currency() string { return m.currency }

// String renders "amount CURRENCY", e.g. "100.00 TWD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// Equal reports whether two Money values have the same amount and currency.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}
