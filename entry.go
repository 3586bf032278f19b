package ledger

import (
	"fmt"
	"strings"

	"github.com/etnz/ledger/date"
)

// State is the clearing state of a Transaction.
type State int

const (
	Uncleared State = iota
	Cleared
	Pending
)

func (s State) String() string {
	switch s {
	case Cleared:
		return "cleared"
	case Pending:
		return "pending"
	default:
		return "uncleared"
	}
}

// TransactionFlags are markers of a Transaction.
type TransactionFlags uint8

const (
	// Virtual transactions do not need to balance.
	Virtual TransactionFlags = 1 << iota
	// Generated transactions were created automatically (automated entries, balancing).
	Generated
)

// Transaction is a single posting of an Entry against an Account.
type Transaction struct {
	entry         *Entry
	Account       *Account
	Amount        Amount
	Cost          *Amount // unit price, nil when none.
	Note          string
	State         State
	Flags         TransactionFlags
	Date          date.Date // overrides the entry date when not zero.
	EffectiveDate date.Date
}

// NewTransaction returns a transaction posting to account with a null amount.
func NewTransaction(account *Account) *Transaction {
	return &Transaction{Account: account}
}

// Entry returns the entry owning t.
func (t *Transaction) Entry() *Entry { return t.entry }

// Has reports whether all flags in f are set.
func (t *Transaction) Has(f TransactionFlags) bool { return t.Flags&f == f }

// weight returns the contribution of t to its entry balance.
//
// With a cost the weight is the amount valued at the (absolute) unit price,
// the sign is always the one of the amount.
func (t *Transaction) weight() Amount {
	if t.Cost == nil || t.Amount.IsNull() {
		return t.Amount
	}
	return NewAmount(t.Amount.quantity.Mul(t.Cost.quantity.Abs()), t.Cost.commodity)
}

// Entry is a group of transactions that balances.
type Entry struct {
	Date          date.Date
	EffectiveDate date.Date
	Code          string
	Payee         string
	Transactions  []*Transaction
}

// AddTransaction appends t to the entry and makes e its owner.
func (e *Entry) AddTransaction(t *Transaction) {
	t.entry = e
	e.Transactions = append(e.Transactions, t)
}

// RemoveTransaction detaches t from e, it reports false if t was not in e.
func (e *Entry) RemoveTransaction(t *Transaction) bool {
	for i, x := range e.Transactions {
		if x == t {
			e.Transactions = append(e.Transactions[:i], e.Transactions[i+1:]...)
			t.entry = nil
			return true
		}
	}
	return false
}

// Balance returns the sum of non virtual transaction weights.
func (e *Entry) Balance() Balance {
	var b Balance
	for _, t := range e.Transactions {
		if t.Has(Virtual) {
			continue
		}
		b.Add(t.weight())
	}
	return b
}

// String renders the entry in the textual ledger syntax, for diagnostics.
func (e *Entry) String() string {
	var b strings.Builder
	b.WriteString(e.Date.Format(date.SlashFormat))
	if !e.EffectiveDate.IsZero() {
		b.WriteString("=" + e.EffectiveDate.Format(date.SlashFormat))
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.Payee != "" {
		b.WriteString(" " + e.Payee)
	}
	b.WriteString("\n")
	for _, t := range e.Transactions {
		b.WriteString("    ")
		switch t.State {
		case Cleared:
			b.WriteString("* ")
		case Pending:
			b.WriteString("! ")
		}
		name := "<null>"
		if t.Account != nil {
			name = t.Account.FullName()
		}
		if t.Has(Virtual) {
			name = "(" + name + ")"
		}
		b.WriteString(name)
		if !t.Amount.IsNull() {
			b.WriteString("  " + t.Amount.String())
		}
		if t.Cost != nil {
			b.WriteString(" @ " + t.Cost.String())
		}
		if t.Note != "" {
			b.WriteString("  ; " + t.Note)
		}
		b.WriteString("\n")
	}
	return b.String()
}
