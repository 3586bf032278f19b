package ledger

import (
	"iter"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/etnz/ledger/date"
)

// Style is a set of display flags of a Commodity.
type Style uint8

const (
	// StyleSuffixed writes the symbol after the quantity ("10 AAPL"), it is prefixed otherwise ("$10").
	StyleSuffixed Style = 1 << iota
	// StyleSeparated writes a space between the symbol and the quantity.
	StyleSeparated
	// StyleThousands groups the integer part by thousands.
	StyleThousands
	// StyleEuropean uses a decimal comma (and a dot as thousands separator).
	StyleEuropean
)

// Has reports whether all flags in f are set in s.
func (s Style) Has(f Style) bool { return s&f == f }

// Commodity is a currency or a security, identified by its symbol.
//
// Commodities are owned by a Commodities registry, there is exactly one
// Commodity per symbol in a registry.
type Commodity struct {
	ident     int // creation order in the registry
	symbol    string
	name      string
	note      string
	style     Style
	precision int
	prices    date.History[Amount]
}

// Symbol returns the commodity symbol.
func (c *Commodity) Symbol() string { return c.symbol }

// Name returns the display name, if any.
func (c *Commodity) Name() string { return c.name }

// Note returns the commodity note, if any.
func (c *Commodity) Note() string { return c.note }

// SetName sets the display name.
func (c *Commodity) SetName(name string) { c.name = name }

// SetNote sets the commodity note.
func (c *Commodity) SetNote(note string) { c.note = note }

// Style returns the display flags.
func (c *Commodity) Style() Style { return c.style }

// AddFlags sets flags, existing flags are kept.
func (c *Commodity) AddFlags(f Style) { c.style |= f }

// DropFlags clears flags.
func (c *Commodity) DropFlags(f Style) { c.style &^= f }

// Precision returns the number of fractional digits used to display quantities.
func (c *Commodity) Precision() int { return c.precision }

// WidenPrecision raises the precision to at least digits. It never lowers it.
func (c *Commodity) WidenPrecision(digits int) {
	if digits > c.precision {
		c.precision = digits
	}
}

// AddPrice records the unit price of this commodity on a given day.
func (c *Commodity) AddPrice(on date.Date, price Amount) { c.prices.Append(on, price) }

// PriceAsOf returns the most recent unit price on or before 'on'.
func (c *Commodity) PriceAsOf(on date.Date) (Amount, bool) { return c.prices.ValueAsOf(on) }

// Prices iterates over the recorded prices in chronological order.
func (c *Commodity) Prices() iter.Seq2[date.Date, Amount] { return c.prices.Values() }

// String returns the symbol, quoted when it contains characters that would
// be confused with a quantity.
func (c *Commodity) String() string {
	if c == nil {
		return ""
	}
	if strings.ContainsAny(c.symbol, " \t0123456789.,-+*/^&|=<>[](){}@;") {
		return `"` + c.symbol + `"`
	}
	return c.symbol
}

// Commodities is a registry of commodities indexed by symbol.
//
// The registry is not safe for concurrent use.
type Commodities struct {
	bySymbol map[string]*Commodity
	ordered  []*Commodity
}

// NewCommodities creates an empty registry.
func NewCommodities() *Commodities {
	return &Commodities{bySymbol: make(map[string]*Commodity)}
}

// Find returns the commodity for symbol, or nil if unknown.
func (r *Commodities) Find(symbol string) *Commodity { return r.bySymbol[symbol] }

// FindOrCreate returns the commodity for symbol, creating it if needed.
func (r *Commodities) FindOrCreate(symbol string) *Commodity {
	if c, ok := r.bySymbol[symbol]; ok {
		return c
	}
	c := &Commodity{ident: len(r.ordered), symbol: symbol}
	r.bySymbol[symbol] = c
	r.ordered = append(r.ordered, c)
	return c
}

// FindOrCreateCurrency is like FindOrCreate but a newly created commodity
// named after an ISO 4217 code starts with the currency's fraction digits as precision.
func (r *Commodities) FindOrCreateCurrency(code string) *Commodity {
	_, exists := r.bySymbol[code]
	c := r.FindOrCreate(code)
	if !exists {
		if cur := money.GetCurrency(code); cur != nil {
			c.WidenPrecision(cur.Fraction)
		}
	}
	return c
}

// Len returns the number of commodities.
func (r *Commodities) Len() int { return len(r.ordered) }

// All iterates over commodities in creation order.
func (r *Commodities) All() iter.Seq[*Commodity] {
	return func(yield func(*Commodity) bool) {
		for _, c := range r.ordered {
			if !yield(c) {
				return
			}
		}
	}
}
