package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/finvik/coinbooks"
	"github.com/google/subcommands"
)

type initCmd struct {
	currency string
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create a new empty set of books" }
func (*initCmd) Usage() string {
	return `cbk init [-currency <code>]

  Creates the books folder with an empty journal in the given reporting
  currency. Refuses to overwrite existing books.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "USD", "Reporting currency of all monetary amounts")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if _, err := coinbooks.InitBooks(*booksDir, c.currency); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing books: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Initialized empty %s books in %s\n", c.currency, *booksDir)
	return subcommands.ExitSuccess
}
