package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/finvik/coinbooks/renderer"
	"github.com/google/subcommands"
)

type verifyCmd struct{}

func (*verifyCmd) Name() string     { return "verify" }
func (*verifyCmd) Synopsis() string { return "recompute and check the journal's hash chain" }
func (*verifyCmd) Usage() string {
	return `cbk verify

  Recomputes every entry hash and checks every link of the journal's hash
  chain. Exits nonzero if the chain is broken.
`
}

func (*verifyCmd) SetFlags(_ *flag.FlagSet) {}

func (c *verifyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	books, err := OpenBooks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading books: %v\n", err)
		return subcommands.ExitFailure
	}

	v := books.Journal.VerifyChain()
	printMarkdown(renderer.VerificationMarkdown(v))
	if !v.IsValid {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
