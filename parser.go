package ledger

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ImportStats summarizes one import session.
type ImportStats struct {
	Committed  int // entries committed to the journal
	Skipped    int // records dropped: missing fields, unresolved references, bad values
	Duplicates int // records already imported by a previous session
	Rejected   int // entries discarded because they could not be balanced
}

func (s ImportStats) String() string {
	return fmt.Sprintf("committed=%d skipped=%d duplicates=%d rejected=%d", s.Committed, s.Skipped, s.Duplicates, s.Rejected)
}

// Parser is an import adapter for one input format.
type Parser interface {
	// Format names the input format ("ofx", "xml").
	Format() string
	// Test reports whether r looks like this format. r's position is
	// unchanged on return.
	Test(r io.ReadSeeker) (bool, error)
	// Import reads entries from r into j. Accounts created by the import are
	// placed under master, or j.Master() when nil. source names the input
	// for diagnostics. Only a decoder failure returns an error, as a *ParseError.
	Import(r io.Reader, j *Journal, master *Account, source string) (ImportStats, error)
}

// maxHeaderLine bounds the bytes read per header line when sniffing.
const maxHeaderLine = 80

// PeekLines returns up to n leading lines of r (without line terminators,
// truncated to 79 bytes) and seeks r back to where it was.
func PeekLines(r io.ReadSeeker, n int) (lines []string, err error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("cannot locate stream position: %w", err)
	}
	defer func() {
		if _, serr := r.Seek(start, io.SeekStart); serr != nil && err == nil {
			err = fmt.Errorf("cannot restore stream position: %w", serr)
		}
	}()

	br := bufio.NewReaderSize(io.LimitReader(r, int64(n)*4096), 4096)
	for len(lines) < n {
		line, rerr := br.ReadString('\n')
		if line != "" || rerr == nil {
			line = strings.TrimRight(line, "\r\n")
			if len(line) > maxHeaderLine-1 {
				line = line[:maxHeaderLine-1]
			}
			lines = append(lines, line)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return lines, fmt.Errorf("cannot read header: %w", rerr)
		}
	}
	return lines, nil
}
