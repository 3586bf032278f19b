package ofx

import (
	"fmt"
	"io"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/etnz/ledger/date"
	"github.com/shopspring/decimal"
)

// Decode parses an OFX document and reports its records to h.
//
// Records are reported in this order: the sign-on status, the securities of
// the security lists, then for each statement (bank, credit card,
// investment) its account, its transactions and the statement itself. So
// securities and accounts are always registered before a transaction
// references them.
//
// Errors returned by h are collected in 'rejected', one per record. err is
// only set when the document itself cannot be parsed.
func Decode(r io.Reader, h Handler) (rejected []error, err error) {
	resp, err := ofxgo.ParseResponse(r)
	if err != nil {
		return nil, err
	}
	d := &decoder{h: h}
	d.status(resp.Signon.Status)

	for _, msg := range resp.SecList {
		list, ok := msg.(*ofxgo.SecurityList)
		if !ok {
			continue
		}
		for _, s := range list.Securities {
			if info, ok := secInfo(s); ok {
				d.security(info)
			}
		}
	}
	for _, msg := range resp.Bank {
		if s, ok := msg.(*ofxgo.StatementResponse); ok {
			d.bank(s)
		}
	}
	for _, msg := range resp.CreditCard {
		if s, ok := msg.(*ofxgo.CCStatementResponse); ok {
			d.creditCard(s)
		}
	}
	for _, msg := range resp.InvStmt {
		if s, ok := msg.(*ofxgo.InvStatementResponse); ok {
			d.investment(s)
		}
	}
	return d.rejected, nil
}

type decoder struct {
	h        Handler
	rejected []error
}

// reject records a handler error.
func (d *decoder) reject(kind, id string, err error) {
	if err == nil {
		return
	}
	if id == "" {
		id = "?"
	}
	d.rejected = append(d.rejected, fmt.Errorf("%s %s: %w", kind, id, err))
}

func (d *decoder) status(s ofxgo.Status) {
	d.reject("status", fmt.Sprint(s.Code), d.h.Status(StatusRecord{
		Code:     int(s.Code),
		Severity: string(s.Severity),
		Message:  string(s.Message),
	}))
}

func (d *decoder) security(info ofxgo.SecInfo) {
	rec := SecurityRecord{
		UniqueID: str(info.SecID.UniqueID),
		Ticker:   str(info.Ticker),
		Name:     str(info.SecName),
		Memo:     str(info.Memo),
	}
	if info.Currency != nil {
		rec.Currency = currency(info.Currency.CurSym)
	}
	if price := amount(&info.UnitPrice); price.Valid && !price.Value.IsZero() {
		rec.UnitPrice = price
	}
	if info.DtAsOf != nil {
		rec.PriceDate = day(*info.DtAsOf)
	}
	d.reject("security", rec.UniqueID.Value, d.h.Security(rec))
}

func (d *decoder) account(rec AccountRecord) {
	d.reject("account", rec.AccountID.Value, d.h.Account(rec))
}

func (d *decoder) transaction(rec TransactionRecord) {
	id := rec.FITID.Value
	if id == "" {
		id = rec.AccountID.Value
	}
	d.reject("transaction", id, d.h.Transaction(rec))
}

func (d *decoder) statement(rec StatementRecord) {
	d.reject("statement", rec.AccountID.Value, d.h.Statement(rec))
}

func (d *decoder) bank(s *ofxgo.StatementResponse) {
	id := accountID(string(s.BankAcctFrom.BankID), string(s.BankAcctFrom.AcctID))
	d.status(s.Status)
	d.account(AccountRecord{
		AccountID:   str(ofxgo.String(id)),
		AccountName: "Bank account " + string(s.BankAcctFrom.AcctID),
		Currency:    currency(s.CurDef),
	})
	stmt := StatementRecord{
		AccountID:     str(ofxgo.String(id)),
		Currency:      currency(s.CurDef),
		LedgerBalance: amount(&s.BalAmt),
		BalanceDate:   day(s.DtAsOf),
	}
	if s.BankTranList != nil {
		d.transactions(id, s.BankTranList)
		stmt.Start, stmt.End = day(s.BankTranList.DtStart), day(s.BankTranList.DtEnd)
	}
	d.statement(stmt)
}

func (d *decoder) creditCard(s *ofxgo.CCStatementResponse) {
	id := accountID("", string(s.CCAcctFrom.AcctID))
	d.status(s.Status)
	d.account(AccountRecord{
		AccountID:   str(ofxgo.String(id)),
		AccountName: "Credit card " + string(s.CCAcctFrom.AcctID),
		Currency:    currency(s.CurDef),
	})
	stmt := StatementRecord{
		AccountID:     str(ofxgo.String(id)),
		Currency:      currency(s.CurDef),
		LedgerBalance: amount(&s.BalAmt),
		BalanceDate:   day(s.DtAsOf),
	}
	if s.BankTranList != nil {
		d.transactions(id, s.BankTranList)
		stmt.Start, stmt.End = day(s.BankTranList.DtStart), day(s.BankTranList.DtEnd)
	}
	d.statement(stmt)
}

func (d *decoder) investment(s *ofxgo.InvStatementResponse) {
	id := accountID(string(s.InvAcctFrom.BrokerID), string(s.InvAcctFrom.AcctID))
	d.status(s.Status)
	d.account(AccountRecord{
		AccountID:   str(ofxgo.String(id)),
		AccountName: "Investment account " + string(s.InvAcctFrom.AcctID),
		Currency:    currency(s.CurDef),
	})
	stmt := StatementRecord{
		AccountID:   str(ofxgo.String(id)),
		Currency:    currency(s.CurDef),
		BalanceDate: day(s.DtAsOf),
	}
	if list := s.InvTranList; list != nil {
		for _, t := range list.InvTransactions {
			if rec, ok := invTransaction(id, t); ok {
				d.transaction(rec)
			}
		}
		for _, bank := range list.BankTransactions {
			for i := range bank.Transactions {
				d.transaction(bankTransaction(id, &bank.Transactions[i]))
			}
		}
		stmt.Start, stmt.End = day(list.DtStart), day(list.DtEnd)
	}
	d.statement(stmt)
}

func (d *decoder) transactions(id string, list *ofxgo.TransactionList) {
	for i := range list.Transactions {
		d.transaction(bankTransaction(id, &list.Transactions[i]))
	}
}

// bankTransaction maps a cash statement line. Its units are in the account
// currency, at a unit price of 1.
func bankTransaction(accountID string, t *ofxgo.Transaction) TransactionRecord {
	rec := TransactionRecord{
		AccountID:       str(ofxgo.String(accountID)),
		FITID:           str(t.FiTID),
		Units:           amount(&t.TrnAmt),
		UnitPrice:       Some(decimal.NewFromInt(1)),
		Posted:          day(t.DtPosted),
		CheckNumber:     str(t.CheckNum),
		ReferenceNumber: str(t.RefNum),
		Name:            str(t.Name),
		Memo:            str(t.Memo),
	}
	if t.DtUser != nil {
		rec.Initiated = day(*t.DtUser)
	}
	if !rec.Name.Valid && t.Payee != nil {
		rec.Name = str(t.Payee.Name)
	}
	return rec
}

// invTransaction maps the security trades of an investment statement.
func invTransaction(accountID string, t ofxgo.InvTransaction) (TransactionRecord, bool) {
	switch v := t.(type) {
	case ofxgo.BuyStock:
		return buy(accountID, v.InvBuy), true
	case ofxgo.BuyMF:
		return buy(accountID, v.InvBuy), true
	case ofxgo.BuyOther:
		return buy(accountID, v.InvBuy), true
	case ofxgo.SellStock:
		return sell(accountID, v.InvSell), true
	case ofxgo.SellMF:
		return sell(accountID, v.InvSell), true
	case ofxgo.SellOther:
		return sell(accountID, v.InvSell), true
	case ofxgo.Reinvest:
		rec := trade(accountID, v.InvTran, v.SecID)
		rec.Units, rec.UnitPrice = amount(&v.Units), amount(&v.UnitPrice)
		return rec, true
	case ofxgo.Income:
		// cash income, in the account currency.
		rec := trade(accountID, v.InvTran, ofxgo.SecurityID{})
		rec.Units = amount(&v.Total)
		rec.UnitPrice = Some(decimal.NewFromInt(1))
		return rec, true
	}
	return TransactionRecord{}, false
}

func buy(accountID string, b ofxgo.InvBuy) TransactionRecord {
	rec := trade(accountID, b.InvTran, b.SecID)
	rec.Units, rec.UnitPrice = amount(&b.Units), amount(&b.UnitPrice)
	return rec
}

func sell(accountID string, s ofxgo.InvSell) TransactionRecord {
	rec := trade(accountID, s.InvTran, s.SecID)
	rec.Units, rec.UnitPrice = amount(&s.Units), amount(&s.UnitPrice)
	return rec
}

func trade(accountID string, t ofxgo.InvTran, sec ofxgo.SecurityID) TransactionRecord {
	rec := TransactionRecord{
		AccountID: str(ofxgo.String(accountID)),
		FITID:     str(t.FiTID),
		UniqueID:  str(sec.UniqueID),
		Initiated: day(t.DtTrade),
		Memo:      str(t.Memo),
	}
	if t.DtSettle != nil {
		rec.Posted = day(*t.DtSettle)
	}
	return rec
}

// secInfo extracts the common part of the security kinds.
func secInfo(s ofxgo.Security) (ofxgo.SecInfo, bool) {
	switch v := s.(type) {
	case ofxgo.StockInfo:
		return v.SecInfo, true
	case ofxgo.MFInfo:
		return v.SecInfo, true
	case ofxgo.DebtInfo:
		return v.SecInfo, true
	case ofxgo.OptInfo:
		return v.SecInfo, true
	case ofxgo.OtherInfo:
		return v.SecInfo, true
	}
	return ofxgo.SecInfo{}, false
}

// accountID joins the institution and account numbers like "123 456".
func accountID(institution, account string) string {
	return strings.TrimSpace(institution + " " + account)
}

func str(s ofxgo.String) Opt[string] {
	v := strings.TrimSpace(string(s))
	return Opt[string]{Value: v, Valid: v != ""}
}

func currency(c ofxgo.CurrSymbol) Opt[string] {
	code := c.String()
	// the zero currency.Unit is "XXX".
	return Opt[string]{Value: code, Valid: code != "" && code != "XXX"}
}

func amount(a *ofxgo.Amount) Opt[decimal.Decimal] {
	q, err := decimal.NewFromString(a.String())
	if err != nil {
		return Opt[decimal.Decimal]{}
	}
	return Some(q)
}

func day(d ofxgo.Date) Opt[date.Date] {
	if d.IsZero() {
		return Opt[date.Date]{}
	}
	return Some(date.Of(d.Time))
}
