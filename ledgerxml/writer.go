package ledgerxml

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
)

// Display names of the reserved accounts.
const (
	totalName   = "[TOTAL]"
	unknownName = "[UNKNOWN]"
)

var (
	escaper       = strings.NewReplacer("<", "&lt;", ">", "&gt;", "&", "&amp;")
	legacyEscaper = strings.NewReplacer("<", "&lt;", ">", "&rt;", "&", "&amp;")
)

// Shown is the display data of one transaction.
type Shown struct {
	// Value, when set, is an aggregated value written instead of the
	// transaction amount.
	Value *ledger.Value
	// Total is the running total written when totals are shown. When nil the
	// writer uses its own running balance.
	Total *ledger.Value
}

// Display selects the transactions that WriteEntry writes. A nil Display
// selects all of them.
type Display map[*ledger.Transaction]Shown

// Writer writes ledger XML.
//
// Errors are sticky: once a write failed, every method returns that error.
type Writer struct {
	// ShowTotals writes a <total> running total after each transaction.
	ShowTotals bool
	// LegacyEntities escapes '>' as "&rt;" like older writers did.
	LegacyEntities bool

	w       *bufio.Writer
	err     error
	running ledger.Balance
}

// NewWriter returns a Writer writing to w. Call Flush (or End) when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Err returns the first error that occurred.
func (w *Writer) Err() error { return w.err }

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err == nil {
		w.err = w.w.Flush()
	}
	return w.err
}

// Begin writes the XML prolog and opens the <ledger> root.
func (w *Writer) Begin() error {
	w.print(0, `<?xml version="1.0"?>`)
	w.print(0, "<ledger>")
	return w.err
}

// End closes the <ledger> root and flushes.
func (w *Writer) End() error {
	w.print(0, "</ledger>")
	return w.Flush()
}

// WriteJournal writes every entry of j in a complete document.
func (w *Writer) WriteJournal(j *ledger.Journal) error {
	w.Begin()
	for e := range j.Entries() {
		w.WriteEntry(e, nil)
	}
	return w.End()
}

// WriteAmount writes a at the given indentation depth.
func (w *Writer) WriteAmount(a ledger.Amount, depth int) error {
	w.print(depth, "<amount>")
	if c := a.Commodity(); c != nil {
		w.print(depth+2, `<commodity flags="`+flags(c.Style())+`">`)
		w.element(depth+4, "symbol", c.Symbol())
		w.print(depth+2, "</commodity>")
	}
	w.print(depth+2, "<quantity>"+a.QuantityString()+"</quantity>")
	w.print(depth, "</amount>")
	return w.err
}

// WriteValue writes v at the given indentation depth.
func (w *Writer) WriteValue(v ledger.Value, depth int) error {
	w.print(depth, `<value type="`+v.Kind().String()+`">`)
	switch v.Kind() {
	case ledger.BooleanValue:
		b := "0"
		if v.Bool() {
			b = "1"
		}
		w.print(depth+2, "<boolean>"+b+"</boolean>")
	case ledger.IntegerValue:
		w.print(depth+2, "<integer>"+strconv.FormatInt(v.Integer(), 10)+"</integer>")
	case ledger.AmountValue:
		w.WriteAmount(v.Amount(), depth+2)
	case ledger.BalanceValue:
		w.print(depth+2, "<balance>")
		for _, a := range v.Balance().Amounts() {
			w.WriteAmount(a, depth+4)
		}
		w.print(depth+2, "</balance>")
	}
	w.print(depth, "</value>")
	return w.err
}

// WriteEntry writes e and its transactions selected by d.
func (w *Writer) WriteEntry(e *ledger.Entry, d Display) error {
	w.print(2, "<entry>")
	if !e.Date.IsZero() {
		w.print(4, "<en:date>"+e.Date.Format(date.SlashFormat)+"</en:date>")
	}
	if !e.EffectiveDate.IsZero() {
		w.print(4, "<en:date_eff>"+e.EffectiveDate.Format(date.SlashFormat)+"</en:date_eff>")
	}
	if e.Code != "" {
		w.element(4, "en:code", e.Code)
	}
	if e.Payee != "" {
		w.element(4, "en:payee", e.Payee)
	}

	first := true
	for _, t := range e.Transactions {
		shown, ok := d[t]
		if d != nil && !ok {
			continue
		}
		if first {
			w.print(4, "<en:transactions>")
			first = false
		}
		w.transaction(t, shown)
	}
	if !first {
		w.print(4, "</en:transactions>")
	}
	w.print(2, "</entry>")
	return w.err
}

func (w *Writer) transaction(t *ledger.Transaction, shown Shown) {
	w.print(6, "<transaction>")
	if !t.Date.IsZero() {
		w.print(8, "<tr:date>"+t.Date.Format(date.SlashFormat)+"</tr:date>")
	}
	if !t.EffectiveDate.IsZero() {
		w.print(8, "<tr:date_eff>"+t.EffectiveDate.Format(date.SlashFormat)+"</tr:date_eff>")
	}
	switch t.State {
	case ledger.Cleared:
		w.print(8, "<tr:cleared/>")
	case ledger.Pending:
		w.print(8, "<tr:pending/>")
	}
	if t.Has(ledger.Virtual) {
		w.print(8, "<tr:virtual/>")
	}
	if t.Has(ledger.Generated) {
		w.print(8, "<tr:generated/>")
	}
	if t.Account != nil {
		w.element(8, "tr:account", displayName(t.Account))
	}

	value := ledger.AmountV(t.Amount)
	if shown.Value != nil {
		value = *shown.Value
	}
	w.print(8, "<tr:amount>")
	w.WriteValue(value, 10)
	w.print(8, "</tr:amount>")

	if t.Cost != nil {
		w.print(8, "<tr:cost>")
		w.WriteValue(ledger.AmountV(*t.Cost), 10)
		w.print(8, "</tr:cost>")
	}
	if t.Note != "" {
		w.element(8, "tr:note", t.Note)
	}

	if w.ShowTotals {
		total := shown.Total
		if total == nil {
			switch value.Kind() {
			case ledger.AmountValue:
				w.running.Add(value.Amount())
			case ledger.BalanceValue:
				w.running.AddBalance(value.Balance())
			}
			v := ledger.BalanceV(w.running)
			total = &v
		}
		w.print(8, "<total>")
		w.WriteValue(*total, 10)
		w.print(8, "</total>")
	}
	w.print(6, "</transaction>")
}

// element writes an element with escaped text content.
func (w *Writer) element(depth int, tag, text string) {
	esc := escaper
	if w.LegacyEntities {
		esc = legacyEscaper
	}
	w.print(depth, "<"+tag+">"+esc.Replace(text)+"</"+tag+">")
}

// print writes one indented line.
func (w *Writer) print(depth int, line string) {
	if w.err != nil {
		return
	}
	if _, err := w.w.WriteString(strings.Repeat(" ", depth) + line + "\n"); err != nil {
		w.err = err
	}
}

// flags returns the style letters of a commodity, in P, S, T, E order.
func flags(s ledger.Style) string {
	var b strings.Builder
	if !s.Has(ledger.StyleSuffixed) {
		b.WriteByte('P')
	}
	if s.Has(ledger.StyleSeparated) {
		b.WriteByte('S')
	}
	if s.Has(ledger.StyleThousands) {
		b.WriteByte('T')
	}
	if s.Has(ledger.StyleEuropean) {
		b.WriteByte('E')
	}
	return b.String()
}

// displayName translates reserved account names.
func displayName(a *ledger.Account) string {
	switch name := a.FullName(); name {
	case ledger.TotalAccount:
		return totalName
	case ledger.UnknownAccount:
		return unknownName
	default:
		return name
	}
}
