package ledger

import "strconv"

// ValueKind is the type of a Value.
type ValueKind int

const (
	BooleanValue ValueKind = iota
	IntegerValue
	AmountValue
	BalanceValue
)

func (k ValueKind) String() string {
	switch k {
	case BooleanValue:
		return "boolean"
	case IntegerValue:
		return "integer"
	case AmountValue:
		return "amount"
	case BalanceValue:
		return "balance"
	default:
		return "unknown"
	}
}

// Value is a dynamically typed result used by reports: a running total, an
// aggregated posting or a plain amount.
type Value struct {
	kind    ValueKind
	boolean bool
	integer int64
	amount  Amount
	balance Balance
}

func BoolV(b bool) Value       { return Value{kind: BooleanValue, boolean: b} }
func IntV(i int64) Value       { return Value{kind: IntegerValue, integer: i} }
func AmountV(a Amount) Value   { return Value{kind: AmountValue, amount: a} }
func BalanceV(b Balance) Value { return Value{kind: BalanceValue, balance: b} }

func (v Value) Kind() ValueKind  { return v.kind }
func (v Value) Bool() bool       { return v.boolean }
func (v Value) Integer() int64   { return v.integer }
func (v Value) Amount() Amount   { return v.amount }
func (v Value) Balance() Balance { return v.balance }

func (v Value) String() string {
	switch v.kind {
	case BooleanValue:
		return strconv.FormatBool(v.boolean)
	case IntegerValue:
		return strconv.FormatInt(v.integer, 10)
	case AmountValue:
		return v.amount.String()
	default:
		return v.balance.String()
	}
}
