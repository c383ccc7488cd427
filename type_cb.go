package compliance

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Unit is the unit every compliance balance is expressed in.
const Unit = "gCO₂eq"

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// CB is a compliance balance quantity in gCO₂eq.
//
// Positive values are surplus, negative values are deficit. The zero value is
// a valid, exactly compliant balance.
type CB struct {
	value decimal.Decimal
}

// G creates a CB from a numeric constant. Floats must be finite.
func G[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) CB {
	return CB{value: newDecimal(value)}
}

// CBFromFloat converts a float to a CB. Non finite values are rejected with
// ErrInvalidAmount.
func CBFromFloat(f float64) (CB, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return CB{}, fmt.Errorf("%w: %v is not a finite number", ErrInvalidAmount, f)
	}
	return CB{value: decimal.NewFromFloat(f)}, nil
}

// ParseCB parses a decimal string such as "-1250.5". Thousand separators and
// the unit suffix are tolerated.
func ParseCB(s string) (CB, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), Unit))
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return CB{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return CB{value: d}, nil
}

func (c CB) Equal(o CB) bool              { return c.value.Equal(o.value) }
func (c CB) Add(o CB) CB                  { return CB{value: c.value.Add(o.value)} }
func (c CB) Sub(o CB) CB                  { return CB{value: c.value.Sub(o.value)} }
func (c CB) Neg() CB                      { return CB{value: c.value.Neg()} }
func (c CB) Abs() CB                      { return CB{value: c.value.Abs()} }
func (c CB) Cmp(o CB) int                 { return c.value.Cmp(o.value) }
func (c CB) LessThan(o CB) bool           { return c.value.LessThan(o.value) }
func (c CB) GreaterThan(o CB) bool        { return c.value.GreaterThan(o.value) }
func (c CB) GreaterThanOrEqual(o CB) bool { return c.value.GreaterThanOrEqual(o.value) }
func (c CB) IsZero() bool                 { return c.value.IsZero() }
func (c CB) IsPositive() bool             { return c.value.IsPositive() }
func (c CB) IsNegative() bool             { return c.value.IsNegative() }

// Decimal returns the underlying exact value.
func (c CB) Decimal() decimal.Decimal { return c.value }

// Float returns an approximation, only meant for presentation layers (charts, spreadsheets).
func (c CB) Float() float64 { return c.value.InexactFloat64() }

// MinCB returns the smallest of the given values.
func MinCB(first CB, rest ...CB) CB {
	m := first
	for _, c := range rest {
		if c.LessThan(m) {
			m = c
		}
	}
	return m
}

// SumCB returns the sum of the given values.
func SumCB(values ...CB) CB {
	var s CB
	for _, v := range values {
		s = s.Add(v)
	}
	return s
}

// formatter returns a go-money formatter for c: integral values are printed
// without decimals, fractional ones with two.
func (c CB) formatter() (*money.Formatter, int64) {
	fraction := 0
	if !c.value.Equal(c.value.Truncate(0)) {
		fraction = 2
	}
	f := money.NewFormatter(fraction, ".", ",", Unit, "1 $")
	return f, c.value.Shift(int32(fraction)).Round(0).IntPart()
}

// String formats the value with thousand separators and its unit, e.g. "-1,250 gCO₂eq".
func (c CB) String() string {
	f, amount := c.formatter()
	return f.Format(amount)
}

// Number formats the value with thousand separators but no unit.
func (c CB) Number() string {
	return strings.TrimSuffix(c.String(), " "+Unit)
}

// SignedString is like String but always carries a sign. Zero is "0 gCO₂eq".
func (c CB) SignedString() string {
	if c.value.IsPositive() {
		return "+" + c.String()
	}
	return c.String()
}

// MarshalJSON writes the value as a bare JSON number.
func (c CB) MarshalJSON() ([]byte, error) {
	return []byte(c.value.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimals.
func (c *CB) UnmarshalJSON(b []byte) error {
	return c.value.UnmarshalJSON(b)
}
