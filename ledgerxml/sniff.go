package ledgerxml

import (
	"io"
	"strings"

	"github.com/etnz/ledger"
)

// LooksLike reports whether r starts like a ledger XML document: an XML
// prolog on the first line and a "<ledger" root on the second one. The
// position of r is unchanged on return.
func LooksLike(r io.ReadSeeker) (bool, error) {
	lines, err := ledger.PeekLines(r, 2)
	if err != nil || len(lines) < 2 {
		return false, err
	}
	return strings.HasPrefix(lines[0], "<?xml") && strings.Contains(lines[1], "<ledger"), nil
}
