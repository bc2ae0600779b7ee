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

type gainsCmd struct {
	start string
	end   string
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized gains report over a period" }
func (*gainsCmd) Usage() string {
	return `cbk gains [-s <date>] [-d <date>]

  Reports the realized profit and loss of every disposal in the period,
  with per-asset subtotals.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "-1y", "Start date of the reporting period. See 'cbk topic dates' for formats.")
	f.StringVar(&c.end, "d", coinbooks.Today().String(), "End date of the reporting period.")
}

func (c *gainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := coinbooks.ParseDate(c.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := coinbooks.ParseDate(c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
		return subcommands.ExitUsageError
	}

	books, err := OpenBooks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading books: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.GainsMarkdown(books.Inventory, from, to))
	return subcommands.ExitSuccess
}
