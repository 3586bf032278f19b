// Package history records import sessions and the statement lines they
// imported, in a SQLite database.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/ofx"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	format     TEXT NOT NULL,
	started    INTEGER NOT NULL,
	finished   INTEGER NOT NULL DEFAULT 0,
	committed  INTEGER NOT NULL DEFAULT 0,
	skipped    INTEGER NOT NULL DEFAULT 0,
	duplicates INTEGER NOT NULL DEFAULT 0,
	rejected   INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS fitids (
	account   TEXT NOT NULL,
	fitid     TEXT NOT NULL,
	marked_at INTEGER NOT NULL,
	PRIMARY KEY (account, fitid)
);
`

// Session is one import of one source.
type Session struct {
	ID       string
	Source   string
	Format   string
	Started  time.Time
	Finished time.Time // zero while the import runs, or if it never finished
	Stats    ledger.ImportStats
}

// Store is the import history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ ofx.Index = (*Store)(nil)

// Open opens (and creates if needed) the history database at path.
func Open(path string) (*Store, error) {
	dsn := Memory
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("cannot create history directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open history %q: %w", path, err)
	}
	// a single connection, the in-memory database is per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot open history %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot initialize history schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Begin records the start of an import.
func (s *Store) Begin(source, format string) (Session, error) {
	sess := Session{
		ID:      uuid.NewString(),
		Source:  source,
		Format:  format,
		Started: s.now(),
	}
	_, err := s.db.Exec(`INSERT INTO sessions (id, source, format, started) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.Source, sess.Format, sess.Started.UnixNano())
	if err != nil {
		return Session{}, fmt.Errorf("cannot record import session: %w", err)
	}
	return sess, nil
}

// Finish records the outcome of an import.
func (s *Store) Finish(sess Session, stats ledger.ImportStats) error {
	res, err := s.db.Exec(`
		UPDATE sessions
		SET finished = ?, committed = ?, skipped = ?, duplicates = ?, rejected = ?
		WHERE id = ?`,
		s.now().UnixNano(), stats.Committed, stats.Skipped, stats.Duplicates, stats.Rejected, sess.ID)
	if err != nil {
		return fmt.Errorf("cannot finish import session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("cannot finish import session %s: unknown session", sess.ID)
	}
	return nil
}

// Sessions returns the most recent sessions first. limit <= 0 returns them all.
func (s *Store) Sessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	rows, err := s.db.Query(`
		SELECT id, source, format, started, finished, committed, skipped, duplicates, rejected
		FROM sessions
		ORDER BY started DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("cannot list import sessions: %w", err)
	}
	defer rows.Close()

	var res []Session
	for rows.Next() {
		var (
			sess              Session
			started, finished int64
		)
		err := rows.Scan(&sess.ID, &sess.Source, &sess.Format, &started, &finished,
			&sess.Stats.Committed, &sess.Stats.Skipped, &sess.Stats.Duplicates, &sess.Stats.Rejected)
		if err != nil {
			return nil, fmt.Errorf("cannot read import session: %w", err)
		}
		sess.Started = time.Unix(0, started)
		if finished != 0 {
			sess.Finished = time.Unix(0, finished)
		}
		res = append(res, sess)
	}
	return res, rows.Err()
}

// Seen reports whether the statement line fitid of account was imported.
func (s *Store) Seen(account, fitid string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM fitids WHERE account = ? AND fitid = ?`, account, fitid).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cannot look up %s/%s: %w", account, fitid, err)
	}
	return true, nil
}

// Mark records the statement line fitid of account as imported.
func (s *Store) Mark(account, fitid string) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO fitids (account, fitid, marked_at) VALUES (?, ?, ?)`,
		account, fitid, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("cannot mark %s/%s: %w", account, fitid, err)
	}
	return nil
}
