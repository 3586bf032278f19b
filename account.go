package ledger

import (
	"iter"
	"strings"
)

// Reserved account names.
const (
	TotalAccount   = "<Total>"
	UnknownAccount = "<Unknown>"
)

// AccountSeparator separates the names of an account full path.
const AccountSeparator = ":"

// Account is a node in the account tree rooted at the Journal master account.
type Account struct {
	parent   *Account
	name     string
	note     string
	children []*Account
	byName   map[string]*Account
}

// NewAccount returns a detached account named 'name' whose parent will be
// 'parent'. It becomes part of the tree once registered with Journal.AddAccount.
func NewAccount(parent *Account, name string) *Account {
	return &Account{parent: parent, name: name}
}

// Name returns the last component of the account path.
func (a *Account) Name() string { return a.name }

// Parent returns the parent account, nil for the master account.
func (a *Account) Parent() *Account { return a.parent }

// Note returns the account note.
func (a *Account) Note() string { return a.note }

// SetNote sets the account note.
func (a *Account) SetNote(note string) { a.note = note }

// FullName returns the colon separated path from the master account (excluded).
func (a *Account) FullName() string {
	var names []string
	for acc := a; acc != nil && acc.parent != nil; acc = acc.parent {
		names = append(names, acc.name)
	}
	// the master account has no parent, if it was named it is still omitted.
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, AccountSeparator)
}

func (a *Account) String() string { return a.FullName() }

// Child returns the direct child named 'name', or nil.
func (a *Account) Child(name string) *Account { return a.byName[name] }

// Children iterates over direct children in creation order.
func (a *Account) Children() iter.Seq[*Account] {
	return func(yield func(*Account) bool) {
		for _, c := range a.children {
			if !yield(c) {
				return
			}
		}
	}
}

// attach registers child under a, an existing child with the same name wins.
func (a *Account) attach(child *Account) *Account {
	if existing, ok := a.byName[child.name]; ok {
		return existing
	}
	if a.byName == nil {
		a.byName = make(map[string]*Account)
	}
	child.parent = a
	a.byName[child.name] = child
	a.children = append(a.children, child)
	return child
}

// find walks 'path' from a, creating missing accounts when create is true.
func (a *Account) find(path string, create bool) *Account {
	acc := a
	for name := range strings.SplitSeq(path, AccountSeparator) {
		next := acc.Child(name)
		if next == nil {
			if !create {
				return nil
			}
			next = acc.attach(NewAccount(acc, name))
		}
		acc = next
	}
	return acc
}
