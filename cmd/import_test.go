package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const bankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250801120000
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>111
<ACCTID>222
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250701
<DTEND>20250731
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250705
<TRNAMT>-42.50
<FITID>A1
<NAME>Grocery
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>100.00
<DTASOF>20250731
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

const bookXML = `<?xml version="1.0"?>
<ledger>
  <entry>
    <en:date>2025/08/01</en:date>
    <en:payee>Rent</en:payee>
    <en:transactions>
      <transaction>
        <tr:account>Expenses:Rent</tr:account>
        <tr:amount><value type="amount"><amount><commodity flags="S"><symbol>USD</symbol></commodity><quantity>900.00</quantity></amount></value></tr:amount>
      </transaction>
    </en:transactions>
  </entry>
</ledger>
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestDetectFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bank.ofx": bankOFX, "book.xml": bookXML, "notes.txt": "hello\n"})
	ps := parsers(zap.NewNop(), nil)

	for name, want := range map[string]string{"bank.ofx": "ofx", "book.xml": "xml", "notes.txt": "unknown"} {
		got, err := detectFile(filepath.Join(dir, name), ps)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
	_, err := detectFile(filepath.Join(dir, "missing"), ps)
	assert.Error(t, err)
}

func TestImportFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bank.ofx": bankOFX, "book.xml": bookXML, "notes.txt": "hello\n"})
	store, err := history.Open(history.Memory)
	require.NoError(t, err)
	defer store.Close()

	files := []string{filepath.Join(dir, "bank.ofx"), filepath.Join(dir, "notes.txt"), filepath.Join(dir, "book.xml")}
	j := ledger.NewJournal()
	results, err := importFiles(j, files, parsers(zap.NewNop(), newPendingIndex(store)), store, zap.NewNop())
	require.ErrorIs(t, err, errUnknownFormat)
	assert.ErrorContains(t, err, "notes.txt")

	require.Len(t, results, 3)
	assert.Equal(t, "ofx", results[0].Format)
	assert.Equal(t, ledger.ImportStats{Committed: 1}, results[0].Stats)
	assert.ErrorIs(t, results[1].Err, errUnknownFormat)
	assert.Equal(t, "xml", results[2].Format)
	assert.Equal(t, ledger.ImportStats{Committed: 1}, results[2].Stats)
	assert.Equal(t, 2, j.Len())

	sessions, err := store.Sessions(0)
	require.NoError(t, err)
	assert.Len(t, sessions, 2, "one session per recognized file")

	md := summaryMarkdown(j, []result{{File: "a|b.ofx", Format: "ofx", Stats: ledger.ImportStats{Committed: 1}}})
	assert.Contains(t, md, `| a\|b.ofx | ofx | 1 | 0 | 0 | 0 |`)
	assert.Contains(t, md, "Journal: 2 entries")
}

func TestImportMarksLinesOnlyWhenWritten(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bank.ofx": bankOFX})
	bank := filepath.Join(dir, "bank.ofx")
	store, err := history.Open(history.Memory)
	require.NoError(t, err)
	defer store.Close()

	run := func(files ...string) (*ledger.Journal, *pendingIndex, []result) {
		t.Helper()
		pending := newPendingIndex(store)
		j := ledger.NewJournal()
		results, err := importFiles(j, files, parsers(zap.NewNop(), pending), store, zap.NewNop())
		require.NoError(t, err)
		return j, pending, results
	}

	// a preview run writes nothing and marks nothing.
	_, _, results := run(bank)
	assert.Equal(t, ledger.ImportStats{Committed: 1}, results[0].Stats)
	seen, err := store.Seen("111 222", "A1")
	require.NoError(t, err)
	assert.False(t, seen)

	// the same file twice in one run.
	j, pending, results := run(bank, bank)
	assert.Equal(t, ledger.ImportStats{Committed: 1}, results[0].Stats)
	assert.Equal(t, ledger.ImportStats{Duplicates: 1}, results[1].Stats)
	require.NoError(t, writeJournal(filepath.Join(dir, "out.xml"), j, false, false))
	require.NoError(t, pending.Commit())

	seen, err = store.Seen("111 222", "A1")
	require.NoError(t, err)
	assert.True(t, seen)
	_, _, results = run(bank)
	assert.Equal(t, ledger.ImportStats{Duplicates: 1}, results[0].Stats)
}

func TestWriteJournal(t *testing.T) {
	dir := writeFiles(t, map[string]string{"book.xml": bookXML})
	j := ledger.NewJournal()
	_, err := importFiles(j, []string{filepath.Join(dir, "book.xml")}, parsers(zap.NewNop(), nil), nil, zap.NewNop())
	require.NoError(t, err)

	out := filepath.Join(dir, "out.xml")
	require.NoError(t, writeJournal(out, j, true, false))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<?xml version=\"1.0\"?>\n<ledger>\n"))
	assert.Contains(t, string(data), "<tr:account>[UNKNOWN]</tr:account>")
	assert.Contains(t, string(data), "<total>")

	// the export can be imported back.
	back := ledger.NewJournal()
	_, err = importFiles(back, []string{out}, parsers(zap.NewNop(), nil), nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, back.Len())
}

func TestHistoryMarkdown(t *testing.T) {
	assert.Equal(t, "No import recorded yet.\n", historyMarkdown(nil))
	md := historyMarkdown([]history.Session{{Source: "bank.ofx", Format: "ofx", Stats: ledger.ImportStats{Committed: 4}}})
	assert.Contains(t, md, "(unfinished)")
	assert.Contains(t, md, "| bank.ofx | ofx | 4 | 0 | 0 | 0 |")
}
