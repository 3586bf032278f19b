// Package ledgerxml reads and writes the XML rendition of a ledger.Journal.
//
// The vocabulary is the one written by Writer: a <ledger> root holding
// <entry> elements. Entry fields use the "en:" prefix, transaction fields the
// "tr:" prefix, amounts are <amount> elements holding a <commodity> and a
// <quantity>.
package ledgerxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
	"go.uber.org/zap"
)

// Importer imports ledger XML files. The zero value is ready to use.
type Importer struct {
	Log *zap.Logger // nil disables logging
}

var _ ledger.Parser = (*Importer)(nil)

func (*Importer) Format() string { return "xml" }

func (*Importer) Test(r io.ReadSeeker) (bool, error) { return LooksLike(r) }

// Parse imports r and returns the number of committed entries.
func (im *Importer) Parse(r io.Reader, j *ledger.Journal, master *ledger.Account, source string) (int, error) {
	stats, err := im.Import(r, j, master, source)
	return stats.Committed, err
}

// Import imports r into j. See ledger.Parser.
//
// Account paths are resolved from j's master account: master is only used by
// formats that create statement accounts.
func (im *Importer) Import(r io.Reader, j *ledger.Journal, master *ledger.Account, source string) (ledger.ImportStats, error) {
	log := im.Log
	if log == nil {
		log = zap.NewNop()
	}
	if source == "" {
		source = "<stdin>"
	}
	s := &reader{journal: j, log: log.With(zap.String("source", source))}

	d := xml.NewDecoder(r)
	d.Strict = true
	// files written by older writers spelled '>' as "&rt;".
	d.Entity = map[string]string{"rt": ">"}

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line, _ := d.InputPos()
			var serr *xml.SyntaxError
			if errors.As(err, &serr) {
				line = serr.Line
			}
			return s.stats, &ledger.ParseError{Source: source, Line: line, Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			s.start(name(t.Name), t.Attr)
		case xml.EndElement:
			line, _ := d.InputPos()
			s.end(name(t.Name), line)
		case xml.CharData:
			if s.ignore == 0 {
				s.text.Write(t)
			}
		}
	}
	s.log.Info("xml import", zap.Int("committed", s.stats.Committed), zap.Int("skipped", s.stats.Skipped),
		zap.Int("rejected", s.stats.Rejected))
	return s.stats, nil
}

// name returns the element name as written, "en:date" rather than the
// namespace resolved form.
func name(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// reader is the state of one import.
type reader struct {
	journal *ledger.Journal
	log     *zap.Logger

	entry     *ledger.Entry
	xact      *ledger.Transaction // last transaction of entry
	broken    error               // first failure of the current entry
	state     ledger.State        // inherited by new transactions
	commodity *ledger.Commodity   // waiting for the next quantity
	flags     string              // flags attribute of the current commodity
	inCost    bool
	ignore    int // depth inside a <total> subtree

	text strings.Builder

	stats ledger.ImportStats
}

func (s *reader) start(tag string, attrs []xml.Attr) {
	if s.ignore > 0 {
		if tag == "total" {
			s.ignore++
		}
		return
	}
	s.text.Reset()

	switch tag {
	case "entry":
		if s.entry != nil {
			s.discard(errors.New("entry not closed"))
		}
		s.entry = &ledger.Entry{}
		s.xact, s.broken, s.state = nil, nil, ledger.Uncleared
	case "transaction":
		if s.entry == nil {
			s.log.Warn("transaction outside of an entry")
			s.xact = nil
			return
		}
		s.xact = ledger.NewTransaction(nil)
		if s.state != ledger.Uncleared {
			s.xact.State = s.state
		}
		s.entry.AddTransaction(s.xact)
	case "commodity":
		s.flags = ""
		for _, a := range attrs {
			if a.Name.Local == "flags" {
				s.flags = a.Value
			}
		}
	case "tr:cost":
		s.inCost = true
	case "total":
		s.ignore = 1
	}
}

func (s *reader) end(tag string, line int) {
	if s.ignore > 0 {
		if tag == "total" {
			s.ignore--
		}
		return
	}
	// free text is kept verbatim, values are trimmed where parsed.
	text := s.text.String()
	s.text.Reset()

	if tag == "symbol" {
		s.symbol(strings.TrimSpace(text))
		return
	}
	if s.entry == nil {
		return
	}

	switch tag {
	case "entry":
		s.commit(line)
	case "en:date":
		s.entry.Date = s.date(tag, text)
	case "en:date_eff":
		s.entry.EffectiveDate = s.date(tag, text)
	case "en:code":
		s.entry.Code = text
	case "en:payee":
		s.entry.Payee = text
	case "en:cleared":
		s.state = ledger.Cleared
	case "en:pending":
		s.state = ledger.Pending
	}

	if s.xact == nil {
		return
	}
	switch tag {
	case "tr:date":
		s.xact.Date = s.date(tag, text)
	case "tr:date_eff":
		s.xact.EffectiveDate = s.date(tag, text)
	case "tr:account":
		s.xact.Account = s.journal.FindAccount(accountPath(strings.TrimSpace(text)), true)
	case "tr:cleared":
		s.xact.State = ledger.Cleared
	case "tr:pending":
		s.xact.State = ledger.Pending
	case "tr:virtual":
		s.xact.Flags |= ledger.Virtual
	case "tr:generated":
		s.xact.Flags |= ledger.Generated
	case "tr:note":
		s.xact.Note = text
	case "quantity":
		s.quantity(strings.TrimSpace(text))
	case "tr:amount":
		s.commodity = nil
	case "tr:cost":
		s.commodity = nil
		s.inCost = false
	}
}

func (s *reader) symbol(text string) {
	c := s.journal.Commodities().FindOrCreate(text)
	c.AddFlags(ledger.StyleSuffixed)
	for _, f := range s.flags {
		switch f {
		case 'P':
			c.DropFlags(ledger.StyleSuffixed)
		case 'S':
			c.AddFlags(ledger.StyleSeparated)
		case 'T':
			c.AddFlags(ledger.StyleThousands)
		case 'E':
			c.AddFlags(ledger.StyleEuropean)
		}
	}
	s.flags = ""
	s.commodity = c
}

func (s *reader) quantity(text string) {
	q, digits, err := ledger.ParseQuantity(text)
	if err != nil {
		s.fail(fmt.Errorf("quantity: %w", err))
		return
	}
	c := s.commodity
	s.commodity = nil
	if c != nil {
		c.WidenPrecision(digits)
	}
	amount := ledger.NewAmount(q, c)
	if s.inCost {
		s.xact.Cost = &amount
		return
	}
	s.xact.Amount = amount
}

func (s *reader) date(tag, text string) date.Date {
	d, err := date.Parse(text)
	if err != nil {
		s.fail(fmt.Errorf("%s: %w", tag, err))
	}
	return d
}

// fail marks the current entry as broken, it is discarded when it closes.
func (s *reader) fail(err error) {
	if s.broken == nil {
		s.broken = err
	}
}

// discard drops the current entry.
func (s *reader) discard(err error) {
	s.stats.Skipped++
	s.log.Warn("skip entry", zap.Error(err))
	s.entry, s.xact = nil, nil
}

// commit submits the current entry to the journal. An unbalanced entry gets
// one more transaction to the unknown account and is submitted again.
func (s *reader) commit(line int) {
	e := s.entry
	s.entry, s.xact = nil, nil
	if s.broken != nil {
		s.discard(fmt.Errorf("line %d: %w", line, s.broken))
		return
	}
	for _, t := range e.Transactions {
		if t.Account == nil {
			s.discard(fmt.Errorf("line %d: transaction account: %w", line, ledger.ErrMissingField))
			return
		}
	}

	if err := s.journal.AddEntry(e); err == nil {
		s.stats.Committed++
		return
	}
	unknown := ledger.NewTransaction(s.journal.FindAccount(ledger.UnknownAccount, true))
	e.AddTransaction(unknown)
	if err := s.journal.AddEntry(e); err != nil {
		e.RemoveTransaction(unknown)
		s.stats.Rejected++
		s.log.Warn("entry cannot be balanced", zap.Int("line", line), zap.String("entry", e.String()), zap.Error(err))
		return
	}
	s.stats.Committed++
}

// accountPath maps the display names of reserved accounts back to them.
func accountPath(name string) string {
	switch name {
	case totalName:
		return ledger.TotalAccount
	case unknownName:
		return ledger.UnknownAccount
	}
	return name
}
