package ofx

import (
	"github.com/etnz/ledger/date"
	"github.com/shopspring/decimal"
)

// Opt is a record field with an explicit validity flag. Fields must not be
// used unless Valid is true.
type Opt[T any] struct {
	Value T
	Valid bool
}

// Some returns a valid field.
func Some[T any](v T) Opt[T] { return Opt[T]{Value: v, Valid: true} }

// AccountRecord describes one account of the statement file.
type AccountRecord struct {
	AccountID   Opt[string] // foreign id used by transactions and statements
	AccountName string
	Currency    Opt[string] // default currency of the account
}

// SecurityRecord describes one security of the security list.
type SecurityRecord struct {
	UniqueID  Opt[string] // foreign id used by investment transactions
	Ticker    Opt[string]
	Currency  Opt[string]
	Name      Opt[string]
	Memo      Opt[string]
	UnitPrice Opt[decimal.Decimal]
	PriceDate Opt[date.Date]
}

// TransactionRecord is one statement line, of a bank, credit card or
// investment account.
type TransactionRecord struct {
	AccountID       Opt[string]
	FITID           Opt[string] // financial institution transaction id
	Units           Opt[decimal.Decimal]
	UnitPrice       Opt[decimal.Decimal]
	UniqueID        Opt[string] // security, when the units are not in the account currency
	Initiated       Opt[date.Date]
	Posted          Opt[date.Date]
	CheckNumber     Opt[string]
	ReferenceNumber Opt[string]
	Name            Opt[string]
	Memo            Opt[string]
}

// StatementRecord closes the statement of an account.
type StatementRecord struct {
	AccountID     Opt[string]
	Currency      Opt[string]
	Start, End    Opt[date.Date]
	LedgerBalance Opt[decimal.Decimal]
	BalanceDate   Opt[date.Date]
}

// StatusRecord reports a server status of the file.
type StatusRecord struct {
	Code     int
	Severity string
	Message  string
}

// Handler receives the records of an OFX file.
//
// A non nil error rejects that record only: the decoder carries on with the
// next one.
type Handler interface {
	Statement(StatementRecord) error
	Account(AccountRecord) error
	Transaction(TransactionRecord) error
	Security(SecurityRecord) error
	Status(StatusRecord) error
}
