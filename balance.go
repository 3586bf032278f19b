package ledger

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Balance is a sum of amounts, kept per commodity.
//
// The zero value is an empty balance ready to use.
type Balance struct {
	amounts map[*Commodity]decimal.Decimal
}

// Add adds an amount to the balance. Null amounts are ignored.
func (b *Balance) Add(a Amount) {
	if a.IsNull() {
		return
	}
	if b.amounts == nil {
		b.amounts = make(map[*Commodity]decimal.Decimal)
	}
	b.amounts[a.commodity] = b.amounts[a.commodity].Add(a.quantity)
}

// AddBalance adds every amount of o.
func (b *Balance) AddBalance(o Balance) {
	for _, a := range o.Amounts() {
		b.Add(a)
	}
}

// IsZero reports whether every commodity nets to zero.
func (b Balance) IsZero() bool {
	for _, q := range b.amounts {
		if !q.IsZero() {
			return false
		}
	}
	return true
}

// Neg returns the opposite balance.
func (b Balance) Neg() Balance {
	var n Balance
	for _, a := range b.Amounts() {
		n.Add(a.Neg())
	}
	return n
}

// Amounts returns the non-zero amounts held, ordered by commodity creation
// order in the registry. The commodity-less amount comes first.
func (b Balance) Amounts() []Amount {
	var res []Amount
	for c, q := range b.amounts {
		if q.IsZero() {
			continue
		}
		res = append(res, NewAmount(q, c))
	}
	slices.SortFunc(res, func(x, y Amount) int { return cmp.Compare(ident(x.commodity), ident(y.commodity)) })
	return res
}

func ident(c *Commodity) int {
	if c == nil {
		return -1
	}
	return c.ident
}

// String formats the amounts separated by ", ".
func (b Balance) String() string {
	amounts := b.Amounts()
	if len(amounts) == 0 {
		return "0"
	}
	parts := make([]string, len(amounts))
	for i, a := range amounts {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
