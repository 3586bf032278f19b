package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSource is returned by importers that need a named source.
	ErrNoSource = errors.New("no source")
	// ErrMissingField marks a record skipped because a required field is absent or invalid.
	ErrMissingField = errors.New("missing required field")
	// ErrUnresolvedReference marks a record referencing a foreign identifier never registered.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrUnbalanced marks an entry whose transactions do not net to zero.
	ErrUnbalanced = errors.New("entry does not balance")
	// ErrDuplicate marks a record already imported by a previous session.
	ErrDuplicate = errors.New("already imported")
)

// ParseError is the fatal error of an import: the decoder could not tokenize
// the input. Entries committed before it remain in the Journal.
type ParseError struct {
	Source string
	Line   int // 0 when unknown
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
