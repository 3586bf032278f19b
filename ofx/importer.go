// Package ofx imports Open Financial Exchange statements into a ledger.Journal.
//
// The OFX document is tokenized by github.com/aclindsa/ofxgo. Decode walks
// the parsed document and reports typed records to a Handler; the Importer
// runs one session Handler per import that maps the statement foreign ids
// to accounts and commodities of the Journal.
package ofx

import (
	"errors"
	"fmt"
	"io"

	"github.com/etnz/ledger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Index remembers statement lines already imported, by account and FITID.
type Index interface {
	Seen(account, fitid string) (bool, error)
	Mark(account, fitid string) error
}

// Importer imports OFX files. The zero value is ready to use.
type Importer struct {
	Log   *zap.Logger // nil disables logging
	Index Index       // nil disables de-duplication
}

var _ ledger.Parser = (*Importer)(nil)

func (*Importer) Format() string { return "ofx" }

func (*Importer) Test(r io.ReadSeeker) (bool, error) { return LooksLike(r) }

// Parse imports r and returns the number of committed entries.
func (im *Importer) Parse(r io.Reader, j *ledger.Journal, master *ledger.Account, source string) (int, error) {
	stats, err := im.Import(r, j, master, source)
	return stats.Committed, err
}

// Import imports r into j. See ledger.Parser.
func (im *Importer) Import(r io.Reader, j *ledger.Journal, master *ledger.Account, source string) (ledger.ImportStats, error) {
	if source == "" {
		return ledger.ImportStats{}, ledger.ErrNoSource
	}
	log := im.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("source", source))

	s := newSession(j, master, im.Index, log)
	rejected, err := Decode(r, s)
	for _, rerr := range rejected {
		switch {
		case errors.Is(rerr, ledger.ErrDuplicate):
			s.stats.Duplicates++
			log.Debug("skip record", zap.Error(rerr))
		case errors.Is(rerr, ledger.ErrUnbalanced):
			s.stats.Rejected++
			log.Warn("reject record", zap.Error(rerr))
		default:
			s.stats.Skipped++
			log.Warn("skip record", zap.Error(rerr))
		}
	}
	if err != nil {
		return s.stats, &ledger.ParseError{Source: source, Err: err}
	}
	log.Info("ofx import", zap.Int("committed", s.stats.Committed), zap.Int("skipped", s.stats.Skipped),
		zap.Int("duplicates", s.stats.Duplicates), zap.Int("rejected", s.stats.Rejected))
	return s.stats, nil
}

// session is the Handler of one import. Its foreign id tables only live for
// the duration of that import.
type session struct {
	journal *ledger.Journal
	master  *ledger.Account
	index   Index
	log     *zap.Logger

	accounts   map[string]*ledger.Account   // account id -> account
	currencies map[string]*ledger.Commodity // account id -> default currency
	securities map[string]*ledger.Commodity // security unique id -> commodity

	stats ledger.ImportStats
}

func newSession(j *ledger.Journal, master *ledger.Account, index Index, log *zap.Logger) *session {
	if master == nil {
		master = j.Master()
	}
	return &session{
		journal:    j,
		master:     master,
		index:      index,
		log:        log,
		accounts:   make(map[string]*ledger.Account),
		currencies: make(map[string]*ledger.Commodity),
		securities: make(map[string]*ledger.Commodity),
	}
}

var one = decimal.NewFromInt(1)

func (s *session) Statement(rec StatementRecord) error {
	s.log.Debug("statement", zap.String("account", rec.AccountID.Value))
	return nil
}

func (s *session) Status(rec StatusRecord) error {
	s.log.Debug("status", zap.Int("code", rec.Code), zap.String("severity", rec.Severity), zap.String("message", rec.Message))
	return nil
}

func (s *session) Account(rec AccountRecord) error {
	if !rec.AccountID.Valid {
		return fmt.Errorf("account id: %w", ledger.ErrMissingField)
	}
	id := rec.AccountID.Value
	name := rec.AccountName
	if name == "" {
		name = id
	}
	s.log.Debug("account", zap.String("name", name))
	s.accounts[id] = s.journal.AddAccount(ledger.NewAccount(s.master, name))

	if rec.Currency.Valid {
		c := s.journal.Commodities().FindOrCreateCurrency(rec.Currency.Value)
		c.AddFlags(ledger.StyleSuffixed | ledger.StyleSeparated)
		if _, ok := s.currencies[id]; !ok {
			s.currencies[id] = c
		}
	}
	return nil
}

func (s *session) Security(rec SecurityRecord) error {
	if !rec.UniqueID.Valid {
		return fmt.Errorf("security unique id: %w", ledger.ErrMissingField)
	}
	var symbol string
	switch {
	case rec.Ticker.Valid:
		symbol = rec.Ticker.Value
	case rec.Currency.Valid:
		symbol = rec.Currency.Value
	default:
		return fmt.Errorf("security symbol: %w", ledger.ErrMissingField)
	}

	registry := s.journal.Commodities()
	c := registry.FindOrCreate(symbol)
	c.AddFlags(ledger.StyleSuffixed | ledger.StyleSeparated)
	if rec.Name.Valid {
		c.SetName(rec.Name.Value)
	}
	if rec.Memo.Valid {
		c.SetNote(rec.Memo.Value)
	}
	if _, ok := s.securities[rec.UniqueID.Value]; !ok {
		s.log.Debug("security", zap.String("symbol", symbol))
		s.securities[rec.UniqueID.Value] = c
	}

	if rec.PriceDate.Valid && rec.UnitPrice.Valid {
		var priceCommodity *ledger.Commodity
		if rec.Ticker.Valid && rec.Currency.Valid {
			priceCommodity = registry.FindOrCreateCurrency(rec.Currency.Value)
		}
		s.log.Debug("price", zap.String("symbol", symbol), zap.Stringer("price", rec.UnitPrice.Value))
		c.AddPrice(rec.PriceDate.Value, ledger.NewAmount(rec.UnitPrice.Value, priceCommodity))
	}
	return nil
}

func (s *session) Transaction(rec TransactionRecord) error {
	if !rec.AccountID.Valid {
		return fmt.Errorf("account id: %w", ledger.ErrMissingField)
	}
	if !rec.Units.Valid {
		return fmt.Errorf("units: %w", ledger.ErrMissingField)
	}
	id := rec.AccountID.Value
	account, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("account %q: %w", id, ledger.ErrUnresolvedReference)
	}

	if rec.FITID.Valid && s.index != nil {
		seen, err := s.index.Seen(id, rec.FITID.Value)
		if err != nil {
			return fmt.Errorf("cannot check import history: %w", err)
		}
		if seen {
			return ledger.ErrDuplicate
		}
	}

	defaultCommodity := s.currencies[id]
	commodity := defaultCommodity
	if rec.UniqueID.Valid {
		commodity = s.securities[rec.UniqueID.Value]
		if commodity == nil {
			return fmt.Errorf("security %q: %w", rec.UniqueID.Value, ledger.ErrUnresolvedReference)
		}
	} else if commodity == nil {
		return fmt.Errorf("currency of account %q: %w", id, ledger.ErrUnresolvedReference)
	}
	hasCost := rec.UnitPrice.Valid && !rec.UnitPrice.Value.Equal(one)
	if hasCost && defaultCommodity == nil {
		return fmt.Errorf("currency of account %q: %w", id, ledger.ErrUnresolvedReference)
	}
	if digits := -rec.Units.Value.Exponent(); digits > 0 {
		commodity.WidenPrecision(int(digits))
	}

	entry := &ledger.Entry{}
	xact := ledger.NewTransaction(account)
	xact.Amount = ledger.NewAmount(rec.Units.Value.Neg(), commodity)
	if hasCost {
		cost := ledger.NewAmount(rec.UnitPrice.Value.Neg(), defaultCommodity)
		xact.Cost = &cost
	}

	switch {
	case rec.Initiated.Valid:
		entry.Date = rec.Initiated.Value
	case rec.Posted.Valid:
		entry.Date = rec.Posted.Value
	}
	switch {
	case rec.CheckNumber.Valid:
		entry.Code = rec.CheckNumber.Value
	case rec.ReferenceNumber.Valid:
		entry.Code = rec.ReferenceNumber.Value
	}
	if rec.Name.Valid {
		entry.Payee = rec.Name.Value
	}
	if rec.Memo.Valid {
		xact.Note = rec.Memo.Value
	}
	entry.AddTransaction(xact)
	s.log.Debug("xact", zap.Stringer("amount", xact.Amount), zap.Stringer("account", account))

	// the statement does not tell where the money went.
	entry.AddTransaction(ledger.NewTransaction(s.journal.FindAccount(ledger.UnknownAccount, true)))

	if err := s.journal.AddEntry(entry); err != nil {
		s.log.Warn("entry does not balance", zap.String("entry", entry.String()))
		return err
	}
	s.stats.Committed++

	if rec.FITID.Valid && s.index != nil {
		if err := s.index.Mark(id, rec.FITID.Value); err != nil {
			s.log.Warn("cannot record imported transaction", zap.String("fitid", rec.FITID.Value), zap.Error(err))
		}
	}
	return nil
}
