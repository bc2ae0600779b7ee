package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "verifies and rewrites the books files into canonical form"
}
func (*fmtCmd) Usage() string {
	return `cbk fmt

  Reads the whole books, verifies the journal's hash chain, and rewrites
  the data files in canonical JSONL form. Refuses to rewrite a journal
  whose chain is broken.
`
}

func (*fmtCmd) SetFlags(_ *flag.FlagSet) {}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	books, err := OpenBooks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading books: %v\n", err)
		return subcommands.ExitFailure
	}

	if v := books.Journal.VerifyChain(); !v.IsValid {
		fmt.Fprintf(os.Stderr, "Refusing to rewrite a broken journal: %s\n", v.Reason)
		return subcommands.ExitFailure
	}

	if err := books.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving books: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Formatted books in %s.\n", books.Dir())
	return subcommands.ExitSuccess
}
