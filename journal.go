package ledger

import (
	"fmt"
	"iter"
)

// Journal holds the account tree, the commodity registry and the committed entries.
//
// A Journal is not safe for concurrent use, imports into the same Journal must be serialized.
type Journal struct {
	master      *Account
	commodities *Commodities
	entries     []*Entry
}

// NewJournal creates an empty journal with an unnamed master account.
func NewJournal() *Journal {
	return &Journal{
		master:      NewAccount(nil, ""),
		commodities: NewCommodities(),
	}
}

// Master returns the root of the account tree.
func (j *Journal) Master() *Account { return j.master }

// Commodities returns the commodity registry.
func (j *Journal) Commodities() *Commodities { return j.commodities }

// AddAccount registers a detached account under its parent (the master
// account when it has none). If the parent already has a child with the same
// name, that child is returned instead and 'a' is discarded.
func (j *Journal) AddAccount(a *Account) *Account {
	parent := a.parent
	if parent == nil {
		parent = j.master
	}
	return parent.attach(a)
}

// FindAccount resolves a colon separated path from the master account.
// Missing accounts are created when create is true, otherwise it returns nil.
func (j *Journal) FindAccount(path string, create bool) *Account {
	return j.master.find(path, create)
}

// Entries iterates over committed entries in commit order.
func (j *Journal) Entries() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, e := range j.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Len returns the number of committed entries.
func (j *Journal) Len() int { return len(j.entries) }

// AddEntry commits e if it balances.
//
// A single transaction with a null amount receives the opposite of the
// balance of the others; when the remainder spans several commodities the
// extra commodities get one generated transaction each on the same account.
// If e cannot be balanced, it returns an error wrapping ErrUnbalanced and e
// is left untouched: the caller still owns it.
func (j *Journal) AddEntry(e *Entry) error {
	var null *Transaction
	for _, t := range e.Transactions {
		if !t.Amount.IsNull() || t.Has(Virtual) {
			continue
		}
		if null != nil {
			return fmt.Errorf("more than one transaction without amount: %w", ErrUnbalanced)
		}
		null = t
	}

	remainder := e.Balance().Neg()
	if null == nil {
		if !remainder.IsZero() {
			return fmt.Errorf("entry does not balance, remainder is %v: %w", remainder, ErrUnbalanced)
		}
		j.entries = append(j.entries, e)
		return nil
	}

	amounts := remainder.Amounts()
	if len(amounts) == 0 {
		// already balanced, the null leg takes an explicit zero.
		null.Amount = NewAmount(null.Amount.quantity, nil)
	} else {
		null.Amount = amounts[0]
		for _, a := range amounts[1:] {
			t := NewTransaction(null.Account)
			t.Amount = a
			t.State = null.State
			t.Flags = null.Flags | Generated
			e.AddTransaction(t)
		}
	}
	j.entries = append(j.entries, e)
	return nil
}
