package renderer

import (
	"fmt"
	"strings"

	"github.com/finvik/coinbooks"
)

// GainsMarkdown generates a markdown report of realized gains, one row per
// disposal, with per-asset subtotals.
func GainsMarkdown(inv *coinbooks.Inventory, from, to coinbooks.Date) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Realized Gains Report from %s to %s\n\n", from, to)
	fmt.Fprintln(&b, "| Date | Asset | Quantity | Cost Basis | Proceeds | Realized P&L |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|")

	byAsset := map[string]coinbooks.Money{}
	var assets []string
	var total coinbooks.Money
	for d := range inv.Disposals() {
		if d.DisposedOn.Before(from) || d.DisposedOn.After(to) {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			d.DisposedOn, d.Asset, d.Quantity, d.CostBasis, d.Proceeds, d.RealizedPnL.SignedString())
		if _, seen := byAsset[d.Asset]; !seen {
			assets = append(assets, d.Asset)
		}
		byAsset[d.Asset] = byAsset[d.Asset].Add(d.RealizedPnL)
		total = total.Add(d.RealizedPnL)
	}

	fmt.Fprint(&b, "\n## Per Asset\n\n")
	fmt.Fprintln(&b, "| Asset | Realized P&L |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, asset := range assets {
		fmt.Fprintf(&b, "| %s | %s |\n", asset, byAsset[asset].SignedString())
	}
	fmt.Fprintf(&b, "| **Total** | **%s** |\n", total.SignedString())

	return b.String()
}
