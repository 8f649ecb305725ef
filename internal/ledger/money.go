package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts are rupee decimals in the domain and integer paise in storage.

var hundred = decimal.NewFromInt(100)

// Tolerance is the single balance-check tolerance used by every report
// and validation in the engine. The zero value is unusable; construct it
// with NewTolerance or DefaultTolerance.
type Tolerance struct {
	limit decimal.Decimal
}

// DefaultTolerance is 0.01 currency units (one paisa).
func DefaultTolerance() Tolerance {
	return Tolerance{limit: decimal.New(1, -2)}
}

// NewTolerance builds a tolerance from a positive limit. Non-positive
// limits fall back to the default.
func NewTolerance(limit decimal.Decimal) Tolerance {
	if limit.Sign() <= 0 {
		return DefaultTolerance()
	}
	return Tolerance{limit: limit}
}

// Within reports whether a difference is negligible.
func (t Tolerance) Within(diff decimal.Decimal) bool {
	return diff.Abs().LessThan(t.limit)
}

// Limit returns the tolerance limit.
func (t Tolerance) Limit() decimal.Decimal {
	return t.limit
}

// ToPaise converts a rupee amount to integer paise for storage. Amounts
// with sub-paisa precision are rejected rather than rounded.
func ToPaise(d decimal.Decimal) (int64, error) {
	scaled := d.Mul(hundred)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s", ErrTooPrecise, d.String())
	}
	return scaled.IntPart(), nil
}

// FromPaise converts stored paise back to a rupee amount.
func FromPaise(p int64) decimal.Decimal {
	return decimal.New(p, -2)
}
