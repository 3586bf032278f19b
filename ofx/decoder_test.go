package ofx

import (
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/etnz/ledger/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryHandler records what the decoder reports, in order.
type memoryHandler struct {
	kinds        *[]string
	accounts     *[]AccountRecord
	transactions *[]TransactionRecord
}

func newMemoryHandler() memoryHandler {
	return memoryHandler{kinds: new([]string), accounts: new([]AccountRecord), transactions: new([]TransactionRecord)}
}

func (m memoryHandler) log(kind string) {
	if m.kinds != nil {
		*m.kinds = append(*m.kinds, kind)
	}
}

func (m memoryHandler) Statement(StatementRecord) error { m.log("statement"); return nil }
func (m memoryHandler) Security(SecurityRecord) error   { m.log("security"); return nil }
func (m memoryHandler) Status(StatusRecord) error       { m.log("status"); return nil }

func (m memoryHandler) Account(rec AccountRecord) error {
	m.log("account")
	if m.accounts != nil {
		*m.accounts = append(*m.accounts, rec)
	}
	return nil
}

func (m memoryHandler) Transaction(rec TransactionRecord) error {
	m.log("transaction")
	if m.transactions != nil {
		*m.transactions = append(*m.transactions, rec)
	}
	return nil
}

func TestDecodeOrder(t *testing.T) {
	h := newMemoryHandler()
	rejected, err := Decode(strings.NewReader(bankStatement), h)
	require.NoError(t, err)
	assert.Empty(t, rejected)

	assert.Equal(t, []string{"status", "status", "account", "transaction", "transaction", "statement"}, *h.kinds)

	require.Len(t, *h.accounts, 1)
	acc := (*h.accounts)[0]
	assert.Equal(t, Some("318398732 78346129"), acc.AccountID)
	assert.Equal(t, Some("USD"), acc.Currency)

	tx := *h.transactions
	require.Len(t, tx, 2)
	assert.Equal(t, Some("100"), tx[0].FITID)
	assert.True(t, tx[0].Units.Value.Equal(dec("-42.5")))
	assert.Equal(t, Some("1042"), tx[0].CheckNumber)
	assert.Equal(t, Some(date.New(2017, 1, 5)), tx[0].Posted)
	assert.False(t, tx[0].Initiated.Valid)
	assert.Equal(t, Some(date.New(2017, 1, 9)), tx[1].Initiated)
	assert.Equal(t, Some("R-77"), tx[1].ReferenceNumber)
}

func ofxAmount(s string) ofxgo.Amount {
	var a ofxgo.Amount
	a.SetString(s)
	return a
}

func ofxDate(y int, m time.Month, d int) ofxgo.Date {
	return ofxgo.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func TestInvTransaction(t *testing.T) {
	settle := ofxDate(2025, 3, 5)
	buy := ofxgo.BuyStock{
		InvBuy: ofxgo.InvBuy{
			InvTran:   ofxgo.InvTran{FiTID: "T1", DtTrade: ofxDate(2025, 3, 3), DtSettle: &settle, Memo: "buy apple"},
			SecID:     ofxgo.SecurityID{UniqueID: "037833100", UniqueIDType: "CUSIP"},
			Units:     ofxAmount("10"),
			UnitPrice: ofxAmount("150.25"),
		},
		BuyType: ofxgo.BuyTypeBuy,
	}
	rec, ok := invTransaction("broker 1", buy)
	require.True(t, ok)
	assert.Equal(t, Some("broker 1"), rec.AccountID)
	assert.Equal(t, Some("037833100"), rec.UniqueID)
	assert.True(t, rec.Units.Value.Equal(dec("10")))
	assert.True(t, rec.UnitPrice.Value.Equal(dec("150.25")))
	assert.Equal(t, Some(date.New(2025, 3, 3)), rec.Initiated)
	assert.Equal(t, Some(date.New(2025, 3, 5)), rec.Posted)
	assert.Equal(t, Some("buy apple"), rec.Memo)

	income := ofxgo.Income{
		InvTran: ofxgo.InvTran{FiTID: "D1", DtTrade: ofxDate(2025, 4, 1)},
		SecID:   ofxgo.SecurityID{UniqueID: "037833100", UniqueIDType: "CUSIP"},
		Total:   ofxAmount("3.20"),
	}
	rec, ok = invTransaction("broker 1", income)
	require.True(t, ok)
	assert.False(t, rec.UniqueID.Valid, "income is cash in the account currency")
	assert.True(t, rec.Units.Value.Equal(dec("3.2")))

	_, ok = invTransaction("broker 1", ofxgo.Transfer{})
	assert.False(t, ok)
}

func TestSecInfo(t *testing.T) {
	info, ok := secInfo(ofxgo.MFInfo{SecInfo: ofxgo.SecInfo{Ticker: "VTI"}})
	require.True(t, ok)
	assert.Equal(t, ofxgo.String("VTI"), info.Ticker)
}

func TestAccountID(t *testing.T) {
	assert.Equal(t, "123 456", accountID("123", "456"))
	assert.Equal(t, "456", accountID("", "456"))
}
