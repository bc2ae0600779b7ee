package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/finvik/coinbooks/renderer"
	"github.com/google/subcommands"
)

type lotsCmd struct {
	asset string
	all   bool
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "list acquisition lots and their remaining quantities" }
func (*lotsCmd) Usage() string {
	return `cbk lots [-asset <symbol>] [-a]

  Lists the inventory's lots with their remaining quantities and cost
  bases. Exhausted lots are hidden unless -a is given.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Restrict to one asset symbol")
	f.BoolVar(&c.all, "a", false, "Also show exhausted lots")
}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	books, err := OpenBooks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading books: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.LotsMarkdown(books.Inventory, c.asset, c.all))
	return subcommands.ExitSuccess
}
