package renderer

import (
	"fmt"
	"strings"

	"github.com/finvik/coinbooks"
)

// VerificationMarkdown generates a markdown report of a chain verification.
func VerificationMarkdown(v coinbooks.Verification) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Journal Verification\n\n")
	fmt.Fprintf(&b, "Entries checked: %d\n\n", v.TotalEntries)
	if v.IsValid {
		fmt.Fprint(&b, "The hash chain is **intact**: every entry hash recomputes and every link holds.\n")
		return b.String()
	}

	fmt.Fprint(&b, "The hash chain is **broken**.\n\n")
	fmt.Fprintln(&b, "| Position | Entry | Reason |")
	fmt.Fprintln(&b, "|---:|:---|:---|")
	fmt.Fprintf(&b, "| %d | %s | %s |\n", v.BrokenIndex, v.BrokenAt, v.Reason)
	fmt.Fprint(&b, "\nEntries after the break are untrustworthy; the journal refuses further appends until reloaded from a repaired source.\n")

	return b.String()
}

// ProofMarkdown generates a markdown rendering of an entry's chain proof.
func ProofMarkdown(entryID string, proof []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Chain Proof for %s\n\n", entryID)
	fmt.Fprint(&b, "Hashes from genesis to the entry, each feeding the next:\n\n")
	for i, h := range proof {
		switch i {
		case 0:
			fmt.Fprintf(&b, "%4d. `%s` (genesis)\n", i, h)
		case len(proof) - 1:
			fmt.Fprintf(&b, "%4d. `%s` (entry)\n", i, h)
		default:
			fmt.Fprintf(&b, "%4d. `%s`\n", i, h)
		}
	}

	return b.String()
}
