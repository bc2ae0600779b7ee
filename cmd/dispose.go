package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/finvik/coinbooks"
	"github.com/google/subcommands"
)

type disposeCmd struct {
	asset    string
	quantity string
	proceeds string
	date     string
	method   string
	lotID    string
	account  string
	cash     string
}

func (*disposeCmd) Name() string     { return "dispose" }
func (*disposeCmd) Synopsis() string { return "dispose of asset quantity, realizing gains from lots" }
func (*disposeCmd) Usage() string {
	return `cbk dispose -asset <symbol> -q <quantity> -proceeds <amount> [-d <date>] [-method fifo|lifo|specific] [-lot <id>]

  Consumes quantity from the asset's lots, realizes the gain or loss, and
  posts the matching journal entry: proceeds are debited to the cash
  account, the wallet account is credited with the cost basis, and the
  difference goes to realized gains or losses.

Usage Examples:
# Sell 0.2 BTC for 9000 USD, oldest lots first.
$ cbk dispose -asset BTC -q 0.2 -proceeds 9000
# Dispose from one chosen lot.
$ cbk dispose -asset BTC -q 0.2 -proceeds 9000 -method specific -lot 0f2c...
`
}

func (c *disposeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Asset symbol, e.g. BTC")
	f.StringVar(&c.quantity, "q", "", "Quantity disposed of")
	f.StringVar(&c.proceeds, "proceeds", "", "Total proceeds in the reporting currency")
	f.StringVar(&c.date, "d", "", "Disposal date. Defaults to today.")
	f.StringVar(&c.method, "method", "fifo", "Disposal method (fifo, lifo, specific)")
	f.StringVar(&c.lotID, "lot", "", "Lot id, required with -method specific")
	f.StringVar(&c.account, "account", "assets:wallet:main", "Wallet account to credit with the cost basis")
	f.StringVar(&c.cash, "cash", "assets:cash", "Account to debit with the proceeds")
}

func (c *disposeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" || c.quantity == "" || c.proceeds == "" {
		fmt.Fprintln(os.Stderr, "-asset, -q and -proceeds are required")
		return subcommands.ExitUsageError
	}
	method, err := coinbooks.ParseDisposalMethod(c.method)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing method: %v\n", err)
		return subcommands.ExitUsageError
	}
	if method == coinbooks.Specific && c.lotID == "" {
		fmt.Fprintln(os.Stderr, "-lot is required with -method specific")
		return subcommands.ExitUsageError
	}
	quantity, err := coinbooks.ParseQuantity(c.quantity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing quantity: %v\n", err)
		return subcommands.ExitUsageError
	}
	on := coinbooks.Today()
	if c.date != "" {
		if on, err = coinbooks.ParseDate(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	books, err := OpenBooks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading books: %v\n", err)
		return subcommands.ExitFailure
	}
	proceeds, err := coinbooks.ParseMoney(c.proceeds, books.Journal.Currency())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing proceeds: %v\n", err)
		return subcommands.ExitUsageError
	}

	result, err := books.Inventory.Dispose(c.asset, quantity, proceeds, on, method, c.lotID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error disposing: %v\n", err)
		return subcommands.ExitFailure
	}

	// Proceeds = cost basis + realized P&L, so the entry balances: the gain
	// is credited to income, a loss debited to expenses.
	pnl := result.TotalRealizedPnL
	draft := coinbooks.EntryDraft{
		Date:        on,
		Description: fmt.Sprintf("dispose %s %s (%s)", quantity, c.asset, method),
		Postings: []coinbooks.Posting{
			{Account: c.cash, Debit: proceeds},
			{Account: c.account, Credit: result.TotalCostBasis, Asset: c.asset},
		},
	}
	switch {
	case pnl.IsPositive():
		draft.Postings = append(draft.Postings, coinbooks.Posting{Account: "income:realized-gains", Credit: pnl, Asset: c.asset})
	case pnl.IsNegative():
		draft.Postings = append(draft.Postings, coinbooks.Posting{Account: "expenses:realized-losses", Debit: pnl.Neg(), Asset: c.asset})
	}

	validator := coinbooks.NewValidator(chart{})
	if draft, err = validator.Validate(draft); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid entry: %v\n", err)
		return subcommands.ExitFailure
	}
	entry, err := books.Journal.Append(draft)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error appending entry: %v\n", err)
		return subcommands.ExitFailure
	}
	for i := range result.Disposals {
		result.Disposals[i].EntryID = entry.ID
	}

	if status := appendEntry(entry); status != subcommands.ExitSuccess {
		return status
	}
	if status := appendDisposals(result.Disposals); status != subcommands.ExitSuccess {
		return status
	}

	fmt.Printf("Disposed %s %s: cost basis %s, realized P&L %s over %d lot(s)\n",
		quantity, c.asset, result.TotalCostBasis, pnl.SignedString(), len(result.Disposals))
	return subcommands.ExitSuccess
}
