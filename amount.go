package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a signed quantity of a Commodity.
//
// The zero value is the null amount: it has no quantity and no commodity, a
// Transaction with a null amount is filled by the Journal when the Entry is
// committed.
type Amount struct {
	quantity  decimal.Decimal
	commodity *Commodity // nil for a commodity-less number
	set       bool
}

// NewAmount returns an Amount of q units of c. c may be nil.
func NewAmount(q decimal.Decimal, c *Commodity) Amount {
	return Amount{quantity: q, commodity: c, set: true}
}

// ParseQuantity parses a numeric literal: optional sign, digits, optional
// '.' and fractional digits. It also returns the number of fractional digits
// written, which is what drives commodity precision.
func ParseQuantity(text string) (q decimal.Decimal, digits int, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return q, 0, fmt.Errorf("empty quantity: %w", ErrMissingField)
	}
	q, err = decimal.NewFromString(text)
	if err != nil {
		return q, 0, fmt.Errorf("invalid quantity %q: %w", text, err)
	}
	if i := strings.IndexByte(text, '.'); i >= 0 {
		digits = len(text) - i - 1
	}
	return q, digits, nil
}

// ParseAmount parses a quantity literal into an Amount of c.
// Unlike ParseQuantity it does not touch the commodity precision.
func ParseAmount(text string, c *Commodity) (Amount, error) {
	q, _, err := ParseQuantity(text)
	if err != nil {
		return Amount{}, err
	}
	return NewAmount(q, c), nil
}

// IsNull reports whether a has no value at all.
func (a Amount) IsNull() bool { return !a.set }

// Quantity returns the signed quantity.
func (a Amount) Quantity() decimal.Decimal { return a.quantity }

// Commodity returns the commodity, nil for a commodity-less or null amount.
func (a Amount) Commodity() *Commodity { return a.commodity }

// WithCommodity returns a copy of a denominated in c.
func (a Amount) WithCommodity(c *Commodity) Amount {
	a.commodity = c
	a.set = true
	return a
}

func (a Amount) Neg() Amount                  { return Amount{quantity: a.quantity.Neg(), commodity: a.commodity, set: a.set} }
func (a Amount) Abs() Amount                  { return Amount{quantity: a.quantity.Abs(), commodity: a.commodity, set: a.set} }
func (a Amount) IsZero() bool                 { return a.quantity.IsZero() }
func (a Amount) IsNegative() bool             { return a.quantity.IsNegative() }
func (a Amount) Mul(q decimal.Decimal) Amount { return Amount{quantity: a.quantity.Mul(q), commodity: a.commodity, set: true} }

// Equal reports whether a and b have the same commodity and quantity.
func (a Amount) Equal(b Amount) bool {
	return a.set == b.set && a.commodity == b.commodity && a.quantity.Equal(b.quantity)
}

// precision returns the number of digits to display.
func (a Amount) precision() int32 {
	p := int32(0)
	if a.commodity != nil {
		p = int32(a.commodity.precision)
	}
	if exp := -a.quantity.Exponent(); exp > p {
		// never hide digits that were actually recorded.
		p = exp
	}
	return p
}

// QuantityString returns the canonical decimal text of the quantity, without
// any commodity styling: optional '-', digits, '.' and fractional digits.
func (a Amount) QuantityString() string {
	return a.quantity.StringFixed(a.precision())
}

// String formats the amount following the commodity style.
func (a Amount) String() string {
	if a.IsNull() {
		return ""
	}
	c := a.commodity
	if c == nil {
		return a.QuantityString()
	}
	num := formatQuantity(a.quantity.Abs().StringFixed(a.precision()), c.style)
	if a.quantity.IsNegative() {
		num = "-" + num
	}
	sep := ""
	if c.style.Has(StyleSeparated) {
		sep = " "
	}
	if c.style.Has(StyleSuffixed) {
		return num + sep + c.String()
	}
	return c.String() + sep + num
}

// formatQuantity applies thousands grouping and the decimal mark to an
// unsigned canonical quantity.
func formatQuantity(canonical string, style Style) string {
	intPart, frac, hasFrac := strings.Cut(canonical, ".")
	decimalMark, group := ".", ","
	if style.Has(StyleEuropean) {
		decimalMark, group = ",", "."
	}
	if style.Has(StyleThousands) && len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteString(group)
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	if !hasFrac {
		return intPart
	}
	return intPart + decimalMark + frac
}
