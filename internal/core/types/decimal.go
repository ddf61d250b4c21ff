// Package types provides money and quantity primitives.
package types

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromInt creates a Money value from a whole amount.
func NewMoneyFromInt(v int64) Money {
	return decimal.NewFromInt(v)
}

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// LineTotal is price * quantity for a single order line.
func LineTotal(price Money, quantity int) Money {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Share returns amount * part / whole, or zero when whole is zero.
func Share(amount, part, whole Money) Money {
	if whole.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(part).Div(whole)
}

// Percent returns part / whole * 100 rounded to two places, or zero when
// whole is not positive.
func Percent(part, whole Money) Money {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2)
}

// Quantity is a fixed-point stock quantity with 4 decimal places (scale = 1e4).
// Inventory levels are stored scaled in BIGINT columns.
type Quantity int64

const QuantityScale int64 = 10_000

func NewQuantityFromFloat64(v float64) Quantity {
	return Quantity(math.Round(v * float64(QuantityScale)))
}

// NewQuantityFromUnits converts a whole count (e.g. dishes ordered) to Quantity.
func NewQuantityFromUnits(n int) Quantity {
	return Quantity(int64(n) * QuantityScale)
}

func (q Quantity) Int64Scaled() int64 { return int64(q) }

func (q Quantity) Float64() float64 { return float64(q) / float64(QuantityScale) }

func (q Quantity) IsPositive() bool { return q > 0 }

// MulUnits multiplies a per-unit quantity by a whole count.
func (q Quantity) MulUnits(n int) Quantity { return q * Quantity(n) }

// String returns a decimal string with 4 fractional digits.
func (q Quantity) String() string {
	neg := q < 0
	v := q
	if neg {
		v = -v
	}
	intPart := int64(v) / QuantityScale
	frac := int64(v) % QuantityScale
	if neg {
		return fmt.Sprintf("-%d.%04d", intPart, frac)
	}
	return fmt.Sprintf("%d.%04d", intPart, frac)
}
