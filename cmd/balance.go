package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/finvik/coinbooks"
	"github.com/finvik/coinbooks/renderer"
	"github.com/google/subcommands"
)

type balanceCmd struct {
	asset string
	date  string
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "book balance of accounts as of a date" }
func (*balanceCmd) Usage() string {
	return `cbk balance [-asset <symbol>] [-d <date>] <account>...

  Computes the book balance of each account by replaying the journal's
  postings up to the given date. With -asset, only postings tagged with
  that asset (plus untagged ones) are considered.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Restrict to one asset symbol")
	f.StringVar(&c.date, "d", coinbooks.Today().String(), "Balance as of this date")
}

func (c *balanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one account is required")
		return subcommands.ExitUsageError
	}
	on, err := coinbooks.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	books, err := OpenBooks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading books: %v\n", err)
		return subcommands.ExitFailure
	}

	balances := make([]coinbooks.Balance, 0, f.NArg())
	for _, account := range f.Args() {
		balances = append(balances, books.Journal.BalanceAsOf(account, c.asset, on))
	}
	printMarkdown(renderer.BalanceMarkdown(balances))
	return subcommands.ExitSuccess
}
