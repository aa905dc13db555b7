package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a decimal money value that tolerates numeric or quoted JSON input.
// Upstream listing feeds are inconsistent about which they send.
//
// Every Amount holds the canonical decimal form of its value: the one
// decimal.NewFromString produces for Amount's own String output. Persisted
// carts are compared structurally after a reload, so two Amounts with the
// same value must also share the same internal representation.
type Amount struct {
	decimal.Decimal
}

// canonical re-parses the decimal through its string form, collapsing
// equivalent coefficient/exponent pairs (1×10¹ vs 10×10⁰) into one shape.
func canonical(dec decimal.Decimal) decimal.Decimal {
	out, err := decimal.NewFromString(dec.String())
	if err != nil {
		return dec
	}
	return out
}

func NewFromInt(value int64) Amount {
	return Amount{canonical(decimal.NewFromInt(value))}
}

func NewFromFloat(value float64) Amount {
	return Amount{canonical(decimal.NewFromFloat(value))}
}

// Parse converts a raw string into an Amount.
func Parse(raw string) (Amount, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Amount{}, fmt.Errorf("parsing amount %q: %w", raw, err)
	}
	return Amount{canonical(dec)}, nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		a.Decimal = canonical(decimal.Zero)
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := Parse(s)
		if err != nil {
			return err
		}
		a.Decimal = parsed.Decimal
		return nil
	}
	var dec decimal.Decimal
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	a.Decimal = canonical(dec)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// LineTotal multiplies a unit price by a quantity.
func LineTotal(unit Amount, qty int) Amount {
	return Amount{canonical(unit.Decimal.Mul(decimal.NewFromInt(int64(qty))))}
}

func Zero() Amount {
	return Amount{canonical(decimal.Zero)}
}

func (a Amount) Add(other Amount) Amount {
	return Amount{canonical(a.Decimal.Add(other.Decimal))}
}

func (a Amount) IsNegative() bool {
	return a.Decimal.IsNegative()
}

func (a Amount) Equal(other Amount) bool {
	return a.Decimal.Equal(other.Decimal)
}
