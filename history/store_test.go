package history

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/ofx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Memory)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// clock returns a deterministic clock advancing one second per call.
func clock() func() time.Time {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestSessions(t *testing.T) {
	s := newTestStore(t)
	s.now = clock()

	first, err := s.Begin("bank.ofx", "ofx")
	require.NoError(t, err)
	require.NoError(t, s.Finish(first, ledger.ImportStats{Committed: 3, Skipped: 1}))

	second, err := s.Begin("book.xml", "xml")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	all, err := s.Sessions(0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "most recent first")
	assert.True(t, all[0].Finished.IsZero(), "second session is still running")

	got := all[1]
	assert.Equal(t, "bank.ofx", got.Source)
	assert.Equal(t, "ofx", got.Format)
	assert.Equal(t, ledger.ImportStats{Committed: 3, Skipped: 1}, got.Stats)
	assert.True(t, got.Finished.After(got.Started))

	last, err := s.Sessions(1)
	require.NoError(t, err)
	assert.Len(t, last, 1)
}

func TestFinishUnknownSession(t *testing.T) {
	s := newTestStore(t)
	err := s.Finish(Session{ID: "nope"}, ledger.ImportStats{})
	assert.ErrorContains(t, err, "unknown session")
}

func TestSeenMark(t *testing.T) {
	s := newTestStore(t)

	seen, err := s.Seen("123 456", "100")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.Mark("123 456", "100"))
	require.NoError(t, s.Mark("123 456", "100"), "marking twice is harmless")

	seen, err = s.Seen("123 456", "100")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = s.Seen("999", "100")
	require.NoError(t, err)
	assert.False(t, seen, "fitids are scoped by account")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Mark("a", "1"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	seen, err := s.Seen("a", "1")
	require.NoError(t, err)
	assert.True(t, seen, "history persists across opens")
}

const statement = `OFXHEADER:100
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
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>2001
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>EUR
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20250701
<DTEND>20250731
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250712
<TRNAMT>-19.99
<FITID>CC-1
<NAME>Bookshop
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-19.99
<DTASOF>20250731
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>
`

func TestStoreDeduplicatesOFX(t *testing.T) {
	s := newTestStore(t)
	im := &ofx.Importer{Index: s}

	for i, want := range []ledger.ImportStats{{Committed: 1}, {Duplicates: 1}} {
		j := ledger.NewJournal()
		stats, err := im.Import(strings.NewReader(statement), j, nil, "card.ofx")
		require.NoError(t, err)
		assert.Equal(t, want, stats, "import #%d", i+1)
	}
}
