package renderer

import (
	"fmt"
	"strings"

	"github.com/finvik/coinbooks"
)

// LotsMarkdown generates a markdown report of the inventory's lots. An empty
// asset reports every asset; exhausted lots are skipped unless all is set.
func LotsMarkdown(inv *coinbooks.Inventory, asset string, all bool) string {
	var b strings.Builder

	if asset == "" {
		fmt.Fprint(&b, "# Lot Inventory\n\n")
	} else {
		fmt.Fprintf(&b, "# Lot Inventory for %s\n\n", asset)
	}
	fmt.Fprintln(&b, "| Acquired | Asset | Source | Quantity | Remaining | Cost Basis | Unit Cost |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|---:|")

	var remaining coinbooks.Quantity
	for lot := range inv.Lots(asset) {
		if lot.Remaining.IsZero() && !all {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			lot.AcquiredOn, lot.Asset, lot.Source, lot.Quantity, lot.Remaining, lot.CostBasis, lot.UnitCost())
		remaining = remaining.Add(lot.Remaining)
	}
	if asset != "" {
		fmt.Fprintf(&b, "\nRemaining %s: %s\n", asset, remaining)
	}

	return b.String()
}
