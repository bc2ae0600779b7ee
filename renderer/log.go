package renderer

import (
	"fmt"
	"strings"

	"github.com/finvik/coinbooks"
)

// LogMarkdown generates a markdown report of journal entries between two
// dates, postings indented under each entry.
func LogMarkdown(j *coinbooks.Journal, from, to coinbooks.Date) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Journal from %s to %s\n\n", from, to)
	var shown int
	for _, e := range j.Entries() {
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		shown++
		fmt.Fprintf(&b, "## %s %s\n\n", e.Date, e.Description)
		if e.Reference != "" {
			fmt.Fprintf(&b, "Reference: %s\n", e.Reference)
		}
		fmt.Fprintf(&b, "Entry `%s`, hash `%.12s`\n\n", e.ID, e.Hash)

		fmt.Fprintln(&b, "| Account | Asset | Debit | Credit |")
		fmt.Fprintln(&b, "|:---|:---|---:|---:|")
		for _, p := range e.Postings {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", p.Account, p.Asset, cell(p.Debit), cell(p.Credit))
		}
		fmt.Fprint(&b, "\n")
	}
	if shown == 0 {
		fmt.Fprint(&b, "No entries in this period.\n")
	}

	return b.String()
}

// BalanceMarkdown generates a one-table markdown report for account balances.
func BalanceMarkdown(balances []coinbooks.Balance) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Book Balances\n\n")
	fmt.Fprintln(&b, "| Account | Asset | As Of | Balance | Postings |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|")
	for _, bal := range balances {
		asset := bal.Asset
		if asset == "" {
			asset = "all"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d |\n", bal.Account, asset, bal.AsOf, bal.Amount.SignedString(), bal.Postings)
	}

	return b.String()
}

// cell renders a posting amount, hiding zero legs.
func cell(m coinbooks.Money) string {
	if m.IsZero() {
		return ""
	}
	return m.String()
}
