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

type logCmd struct {
	start string
	end   string
}

func (*logCmd) Name() string     { return "log" }
func (*logCmd) Synopsis() string { return "show the journal entries of a period" }
func (*logCmd) Usage() string {
	return `cbk log [-s <date>] [-d <date>]

  Shows every journal entry of the period with its postings and hash.
`
}

func (c *logCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "-1m", "Start date of the period. See 'cbk topic dates' for formats.")
	f.StringVar(&c.end, "d", coinbooks.Today().String(), "End date of the period.")
}

func (c *logCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	printMarkdown(renderer.LogMarkdown(books.Journal, from, to))
	return subcommands.ExitSuccess
}
