package ofx

import (
	"io"
	"strings"

	"github.com/etnz/ledger"
)

// LooksLike reports whether r starts like an OFX document: either an SGML
// "OFXHEADER" header, or an XML prolog followed by an OFX processing
// instruction. The position of r is unchanged on return.
func LooksLike(r io.ReadSeeker) (bool, error) {
	lines, err := ledger.PeekLines(r, 2)
	if err != nil || len(lines) == 0 {
		return false, err
	}
	if strings.HasPrefix(lines[0], "OFXHEADER") {
		return true, nil
	}
	if !strings.HasPrefix(lines[0], "<?xml") || len(lines) < 2 {
		return false, nil
	}
	return strings.HasPrefix(lines[1], "<?OFX") || strings.HasPrefix(lines[1], "<?ofx"), nil
}
