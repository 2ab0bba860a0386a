package attendance

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PENALTY CALCULATOR - Penalty days to money
// =============================================================================

// Calculator turns penalty days into a monetary amount using an external
// per-day rate. It only multiplies and rounds; it holds no policy logic.
type Calculator struct {
	Rates RateSource
}

func NewCalculator(rates RateSource) *Calculator {
	return &Calculator{Rates: rates}
}

// Calculate returns penaltyDays x per-day rate, rounded half-up to the
// smallest currency unit. Zero days always yields zero without a rate
// lookup; the result is never negative.
func (c *Calculator) Calculate(ctx context.Context, employeeID EmployeeID, penaltyDays int) (Money, error) {
	if penaltyDays <= 0 {
		return ZeroMoney(), nil
	}

	rate, err := c.Rates.PerDayRate(ctx, employeeID)
	if err != nil {
		return ZeroMoney(), err
	}
	if rate.IsNegative() {
		return ZeroMoney(), nil
	}

	amount := rate.Mul(decimal.NewFromInt(int64(penaltyDays)))
	return amount.RoundCurrency(), nil
}
