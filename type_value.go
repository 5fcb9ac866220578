package allocation

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

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

// Value is an optional decimal number: either a known amount or unknown.
//
// Unknown is the only degenerate result of a valuation. Any arithmetic
// involving an unknown operand is itself unknown. The zero Value is unknown.
type Value struct {
	value decimal.Decimal
	known bool
}

// Unknown is the absent value.
var Unknown = Value{}

// V returns a known Value. Non finite floats are unknown.
func V[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Value {
	switch v := any(value).(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Unknown
		}
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return Unknown
		}
	}
	return Value{value: newDecimal(value), known: true}
}

// ParseValue parses a human edited number. Blank or malformed text is
// unknown, and so are numbers out of the float64 range.
func ParseValue(text string) Value {
	text = strings.TrimSpace(text)
	if text == "" {
		return Unknown
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return Unknown
	}
	if !finite(d) {
		return Unknown
	}
	return Value{value: d, known: true}
}

// finite reports whether d fits in a float64, neither overflowing to an
// infinity nor vanishing below the smallest subnormal.
func finite(d decimal.Decimal) bool {
	if d.IsZero() {
		return true
	}
	magnitude := int64(d.NumDigits()) + int64(d.Exponent())
	if magnitude > 309 || magnitude < -323 {
		return false
	}
	return !math.IsInf(d.InexactFloat64(), 0)
}

// ParseQuantity parses a quantity. Unlike prices, an unreadable quantity
// means the holding holds nothing, so it defaults to 0.
func ParseQuantity(text string) Value {
	return ParseValue(text).Or(V(0))
}

// Known reports whether v holds a value.
func (v Value) Known() bool { return v.known }

// Decimal returns the underlying decimal and whether it is known.
func (v Value) Decimal() (decimal.Decimal, bool) { return v.value, v.known }

// Float64 returns an approximation of v, for charts and other inexact consumers.
func (v Value) Float64() (float64, bool) {
	if !v.known {
		return 0, false
	}
	return v.value.InexactFloat64(), true
}

// Or returns v if known, def otherwise.
func (v Value) Or(def Value) Value {
	if v.known {
		return v
	}
	return def
}

func (v Value) Add(w Value) Value {
	if !v.known || !w.known {
		return Unknown
	}
	return Value{value: v.value.Add(w.value), known: true}
}

func (v Value) Sub(w Value) Value {
	if !v.known || !w.known {
		return Unknown
	}
	return Value{value: v.value.Sub(w.value), known: true}
}

func (v Value) Mul(w Value) Value {
	if !v.known || !w.known {
		return Unknown
	}
	return Value{value: v.value.Mul(w.value), known: true}
}

// Div returns v/w, unknown when w is zero.
func (v Value) Div(w Value) Value {
	if !v.known || !w.known || w.value.IsZero() {
		return Unknown
	}
	return Value{value: v.value.Div(w.value), known: true}
}

func (v Value) Neg() Value {
	if !v.known {
		return Unknown
	}
	return Value{value: v.value.Neg(), known: true}
}

// Equal reports whether both values are unknown, or both known and equal.
func (v Value) Equal(w Value) bool {
	if v.known != w.known {
		return false
	}
	return !v.known || v.value.Equal(w.value)
}

// comparisons are false whenever an operand is unknown.

func (v Value) GreaterThan(w Value) bool { return v.known && w.known && v.value.GreaterThan(w.value) }
func (v Value) LessThan(w Value) bool    { return v.known && w.known && v.value.LessThan(w.value) }
func (v Value) IsZero() bool             { return v.known && v.value.IsZero() }
func (v Value) IsPositive() bool         { return v.known && v.value.IsPositive() }
func (v Value) IsNegative() bool         { return v.known && v.value.IsNegative() }

// String returns the exact decimal representation, or "-" when unknown.
func (v Value) String() string {
	if !v.known {
		return "-"
	}
	return v.value.String()
}

// StringFixed returns v rounded to places digits, or "-" when unknown.
func (v Value) StringFixed(places int32) string {
	if !v.known {
		return "-"
	}
	return v.value.StringFixed(places)
}

// MarshalJSON writes unknown as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.known {
		return []byte("null"), nil
	}
	return []byte(v.value.String()), nil
}

// UnmarshalJSON reads null as unknown. Numbers can also be quoted, then
// malformed text is unknown too.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Unknown
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = ParseValue(s)
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	if !finite(d) {
		*v = Unknown
		return nil
	}
	*v = Value{value: d, known: true}
	return nil
}
