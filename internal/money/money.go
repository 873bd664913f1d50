// Package money provides a fixed-precision monetary amount with two fractional digits.
//
// All arithmetic is done on shopspring/decimal values, so sums of cents are exact.
// Every constructor rounds to cents (half away from zero), which keeps the invariant
// that a Money never carries more than two fractional digits.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits a Money carries.
const Places = 2

var (
	// Zero is the zero amount.
	Zero = Money{}

	// Epsilon is one cent. Amounts whose magnitude is below Epsilon are treated as settled.
	Epsilon = FromCents(1)

	hundred = decimal.NewFromInt(100)
)

// Money is a signed decimal amount with exactly two fractional digits.
// The zero value is 0.00 and is ready to use.
type Money struct {
	d decimal.Decimal
}

// FromCents returns the amount represented by an integer number of cents.
func FromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -Places)}
}

// FromInt returns a whole-unit amount.
func FromInt(units int64) Money {
	return Money{d: decimal.NewFromInt(units)}
}

// FromDecimal rounds d to cents.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Round(Places)}
}

// FromFloat converts a float to cents. Only use at boundaries where the
// input is already a float (e.g. decoded JSON numbers); never for arithmetic.
func FromFloat(f float64) Money {
	return FromDecimal(decimal.NewFromFloat(f))
}

// Parse reads a decimal string such as "12.34" or "-5". Extra precision is rounded to cents.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// MustParse is like Parse but panics on malformed input. Intended for tests and constants.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Cents returns the amount as an integer number of cents.
func (m Money) Cents() int64 { return m.d.Shift(Places).IntPart() }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }
func (m Money) Abs() Money        { return Money{d: m.d.Abs()} }

// MulRatio returns round(m × num / den, 2). den must not be zero.
func (m Money) MulRatio(num, den decimal.Decimal) Money {
	return FromDecimal(m.d.Mul(num).Div(den))
}

// Percent returns round(m × pct / 100, 2).
func (m Money) Percent(pct Money) Money {
	return m.MulRatio(pct.d, hundred)
}

// DivFloor divides m into n parts and rounds the part down to cents.
func (m Money) DivFloor(n int) Money {
	return Money{d: m.d.Div(decimal.NewFromInt(int64(n))).RoundFloor(Places)}
}

// Cmp compares m and o, returning -1, 0 or +1.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

func (m Money) Equal(o Money) bool       { return m.d.Equal(o.d) }
func (m Money) LessThan(o Money) bool    { return m.d.LessThan(o.d) }
func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }
func (m Money) IsZero() bool             { return m.d.IsZero() }
func (m Money) IsNegative() bool         { return m.d.IsNegative() }
func (m Money) IsPositive() bool         { return m.d.IsPositive() }

// NearZero reports whether |m| < Epsilon.
func (m Money) NearZero() bool { return m.Abs().LessThan(Epsilon) }

// Within reports whether |m - o| < Epsilon.
func (m Money) Within(o Money) bool { return m.Sub(o).NearZero() }

// Float64 returns the nearest float. For display only.
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

// String formats the amount with exactly two fractional digits.
func (m Money) String() string { return m.d.StringFixed(Places) }

// Min returns the smaller of a and b.
func Min(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Sum adds all amounts.
func Sum(amounts ...Money) Money {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// MarshalJSON encodes the amount as a quoted decimal string ("12.30").
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted strings and bare JSON numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	*m = FromDecimal(d)
	return nil
}

// Value stores the amount as a fixed-point string.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan reads amounts stored as TEXT, INTEGER or REAL.
func (m *Money) Scan(src any) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("failed to scan amount: %w", err)
	}
	*m = FromDecimal(d)
	return nil
}
