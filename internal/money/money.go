// Package money converts loosely typed user input into the integer values
// stored by the service: currency in cents and non-negative counts.
package money

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxCents bounds every stored amount. Sums of many such rows stay well
// inside int64.
const MaxCents = 100_000_000_000

// maxInputLen caps the length of a numeric input.
const maxInputLen = 64

// Exponent window of parsed input. Arithmetic on a decimal rescales its
// coefficient to the exponent, so values outside the window are resolved
// without it.
const (
	minExponent = -80
	maxExponent = 20
)

var (
	hundred = decimal.NewFromInt(100)

	// Inputs beyond this many dollars are treated as absent.
	maxUSD = decimal.New(MaxCents, -2)
)

// Value is a numeric input as sent by a client. It accepts JSON numbers,
// numeric strings and null. Anything else decodes as an absent value, so a
// malformed field never fails the whole request body.
type Value struct {
	d  decimal.Decimal
	ok bool
}

// UnmarshalJSON implements json.Unmarshaler. It never returns an error.
func (v *Value) UnmarshalJSON(b []byte) error {
	*v = Value{}

	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*v = Parse(s)
		return nil
	}

	// Only number literals start with a digit or minus sign.
	if b[0] != '-' && (b[0] < '0' || b[0] > '9') {
		return nil
	}
	*v = Parse(string(b))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return []byte(v.d.String()), nil
}

// Parse reads a decimal string such as "19.99" or "1e3". Blank or
// non-numeric input yields an absent value.
func Parse(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxInputLen {
		return Value{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Value{}
	}
	switch exp := d.Exponent(); {
	case d.IsZero():
		return Value{d: decimal.Zero, ok: true}
	case exp > maxExponent:
		// Far above maxUSD.
		return Value{}
	case exp < minExponent:
		// With at most maxInputLen digits this rounds to zero.
		return Value{d: decimal.Zero, ok: true}
	}
	if d.Abs().GreaterThan(maxUSD) {
		return Value{}
	}
	return Value{d: d, ok: true}
}

// Present reports whether a numeric value was supplied.
func (v Value) Present() bool {
	return v.ok
}

// Cents converts a dollar amount to integer cents, rounding half away from
// zero (19.999 -> 2000, 0.125 -> 13, -0.125 -> -13). Absent input is 0.
func Cents(v Value) int64 {
	if !v.ok {
		return 0
	}
	return v.d.Mul(hundred).Round(0).IntPart()
}

// CentsOrNil is Cents for optional fields: absent input stays absent.
func CentsOrNil(v Value) *int64 {
	if !v.ok {
		return nil
	}
	c := Cents(v)
	return &c
}

// ToUSD converts cents back to a dollar decimal.
func ToUSD(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
