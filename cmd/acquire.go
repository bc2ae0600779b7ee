package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/finvik/coinbooks"
	"github.com/google/subcommands"
)

type acquireCmd struct {
	asset    string
	quantity string
	cost     string
	date     string
	source   string
	account  string
	funding  string
}

func (*acquireCmd) Name() string     { return "acquire" }
func (*acquireCmd) Synopsis() string { return "record an asset acquisition as a lot and a journal entry" }
func (*acquireCmd) Usage() string {
	return `cbk acquire -asset <symbol> -q <quantity> -cost <amount> [-d <date>] [-source <source>]

  Creates an acquisition lot for the asset and posts the matching journal
  entry: the wallet account is debited with the cost basis, the funding
  account credited.

Usage Examples:
# Buy 0.5 BTC for 20000 USD.
$ cbk acquire -asset BTC -q 0.5 -cost 20000
# Record mined ETH.
$ cbk acquire -asset ETH -q 1.2 -cost 1800 -source mining
`
}

func (c *acquireCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Asset symbol, e.g. BTC")
	f.StringVar(&c.quantity, "q", "", "Quantity acquired")
	f.StringVar(&c.cost, "cost", "", "Total cost basis in the reporting currency")
	f.StringVar(&c.date, "d", "", "Acquisition date. Defaults to today.")
	f.StringVar(&c.source, "source", string(coinbooks.SourcePurchase), "Acquisition source (purchase, mining, staking, airdrop, transfer-in)")
	f.StringVar(&c.account, "account", "assets:wallet:main", "Wallet account to debit")
	f.StringVar(&c.funding, "funding", "assets:cash", "Account to credit with the cost")
}

func (c *acquireCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" || c.quantity == "" || c.cost == "" {
		fmt.Fprintln(os.Stderr, "-asset, -q and -cost are required")
		return subcommands.ExitUsageError
	}
	source, err := coinbooks.ParseLotSource(c.source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing source: %v\n", err)
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
	cost, err := coinbooks.ParseMoney(c.cost, books.Journal.Currency())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing cost: %v\n", err)
		return subcommands.ExitUsageError
	}

	draft := coinbooks.EntryDraft{
		Date:        on,
		Description: fmt.Sprintf("acquire %s %s (%s)", quantity, c.asset, source),
		Postings: []coinbooks.Posting{
			{Account: c.account, Debit: cost, Asset: c.asset},
			{Account: c.funding, Credit: cost},
		},
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

	lot, err := books.Inventory.CreateLot(c.asset, quantity, cost, on, source, entry.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating lot: %v\n", err)
		return subcommands.ExitFailure
	}

	if status := appendEntry(entry); status != subcommands.ExitSuccess {
		return status
	}
	if status := appendLot(lot); status != subcommands.ExitSuccess {
		return status
	}

	fmt.Printf("Acquired %s %s at %s (lot %s, entry %s)\n", quantity, c.asset, cost, lot.ID, entry.ID)
	return subcommands.ExitSuccess
}
