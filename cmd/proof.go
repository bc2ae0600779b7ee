package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/finvik/coinbooks/renderer"
	"github.com/google/subcommands"
)

type proofCmd struct{}

func (*proofCmd) Name() string     { return "proof" }
func (*proofCmd) Synopsis() string { return "print the hash path from genesis to an entry" }
func (*proofCmd) Usage() string {
	return `cbk proof <entry-id>

  Prints the ordered list of entry hashes from genesis up to the given
  entry, for external verification of its inclusion.
`
}

func (*proofCmd) SetFlags(_ *flag.FlagSet) {}

func (c *proofCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "exactly one entry id is required")
		return subcommands.ExitUsageError
	}
	entryID := f.Arg(0)

	books, err := OpenBooks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading books: %v\n", err)
		return subcommands.ExitFailure
	}

	proof, err := books.Journal.Proof(entryID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building proof: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.ProofMarkdown(entryID, proof))
	return subcommands.ExitSuccess
}
