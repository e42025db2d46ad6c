// Package gateway provides a deterministic in-process stand-in for the
// external payment processor, which this module never calls as a real
// collaborator. Decisions are derived from the request itself rather
// than randomness, so a given transaction always resolves the same way
// on retry.
package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orderflow/orderflow/internal/clock"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

var minChargeable = decimal.NewFromFloat(0.01)

// Simulator implements secondary.PaymentGateway. Declines are keyed off
// recognizable test fixtures rather than chance:
//   - a card number ending in "0000" is declined (insufficient funds)
//   - the literal amount "0.01" is declined (amount too low)
//   - a card number ending in "9999" simulates a transient gateway
//     failure (returned as an error, not a decline), so callers can
//     exercise the retry path without a real outage.
//   - a card whose ExpiryMonthYear is strictly before the current
//     month is declined (expired card)
type Simulator struct {
	clock clock.Clock
}

// NewSimulator constructs a Simulator. clk is consulted for expiry checks.
func NewSimulator(clk clock.Clock) *Simulator { return &Simulator{clock: clk} }

var _ secondary.PaymentGateway = (*Simulator)(nil)

func (s *Simulator) Charge(ctx context.Context, req secondary.GatewayChargeRequest) (secondary.GatewayChargeResult, error) {
	digits := strings.TrimSpace(req.Card.Number)

	if strings.HasSuffix(digits, "9999") {
		return secondary.GatewayChargeResult{}, fmt.Errorf("gateway timeout processing transaction %s", req.TransactionID)
	}
	if strings.HasSuffix(digits, "0000") {
		return secondary.GatewayChargeResult{
			Approved: false,
			Decline:  "insufficient funds",
		}, nil
	}
	if expired(req.Card.ExpiryMonthYear, s.clock.Now()) {
		return secondary.GatewayChargeResult{
			Approved: false,
			Decline:  "expired card",
		}, nil
	}
	if req.Amount.Decimal().LessThanOrEqual(minChargeable) {
		return secondary.GatewayChargeResult{
			Approved: false,
			Decline:  "amount too low for processing",
		}, nil
	}

	return secondary.GatewayChargeResult{
		Approved: true,
		Response: fmt.Sprintf("approved:%s", req.TransactionID),
	}, nil
}

// expired reports whether monthYear ("MM/YY") names a month strictly
// before now's month. A malformed value is treated as not expired,
// since rejecting the format is validation's job, not the gateway's.
func expired(monthYear string, now time.Time) bool {
	parts := strings.SplitN(monthYear, "/", 2)
	if len(parts) != 2 {
		return false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	// "YY" is two digits; fixtures and real card data this module sees
	// are all in the 2000s.
	fullYear := 2000 + year

	cardExpiry := time.Date(fullYear, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return cardExpiry.Before(currentMonth)
}
