package renderer

import (
	"fmt"
	"strings"

	"github.com/finvik/coinbooks"
)

// ReconciliationMarkdown generates a markdown report of reconciliation
// records, typically one run's worth.
func ReconciliationMarkdown(records []coinbooks.WalletReconciliation) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Wallet Reconciliation\n\n")
	if len(records) == 0 {
		fmt.Fprint(&b, "No wallet-asset pairs were reconciled.\n")
		return b.String()
	}

	fmt.Fprintln(&b, "| Wallet | Asset | On-Chain | Book | Variance | Variance % | Status |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|:---|")
	var flagged int
	for _, r := range records {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s%% | %s |\n",
			r.Address, r.Asset, r.OnChainBalance, r.BookBalance, r.Variance, r.VariancePercent.StringFixed(2), status(r))
		if !r.WithinThreshold {
			flagged++
		}
	}

	if flagged == 0 {
		fmt.Fprint(&b, "\nAll pairs are within their variance thresholds.\n")
	} else {
		fmt.Fprintf(&b, "\n%d pair(s) out of threshold.\n", flagged)
	}
	return b.String()
}

func status(r coinbooks.WalletReconciliation) string {
	if r.AlertSent {
		return string(r.Status) + " (alert sent)"
	}
	return string(r.Status)
}
