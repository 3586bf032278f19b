// Package ledger provides the canonical double-entry model used by the
// import and export adapters of this module.
//
// The model is made of:
//   - Accounts: a tree rooted at the Journal master account, addressed by
//     colon separated paths ("Assets:Bank:Checking").
//   - Commodities: currencies and securities, kept in a symbol indexed
//     registry owned by the Journal. A commodity carries its display style,
//     a precision that only ever widens, and a dated price history.
//   - Amounts and Balances: exact decimal quantities tagged with a commodity.
//   - Entries: dated groups of Transactions that must net to zero per
//     commodity before the Journal accepts them.
//
// Adapters for concrete formats live in sub packages (ofx, ledgerxml) and
// implement the Parser interface.
package ledger
