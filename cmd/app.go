// Package cmd implements the cbk CLI application to keep crypto-asset books.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/finvik/coinbooks"
	"github.com/google/subcommands"
)

// Commands lists every subcommand. A main package registers them all and
// executes the user-selected one.
var Commands = []subcommands.Command{
	&initCmd{},
	&postCmd{},
	&acquireCmd{},
	&disposeCmd{},
	&lotsCmd{},
	&gainsCmd{},
	&balanceCmd{},
	&verifyCmd{},
	&proofCmd{},
	&logCmd{},
	&reconcileCmd{},
	&fmtCmd{},
	&topicCmd{},
	&AssistCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var booksDir = flag.String("books-dir", ".books", "Path to the books folder (journal, lots, reconciliations)")

// BooksDir returns the app's books folder.
func BooksDir() string { return *booksDir }

// OpenBooks is the central function to open the app's books.
func OpenBooks() (*coinbooks.Books, error) {
	return coinbooks.OpenBooks(*booksDir)
}

// accountRE constrains account codes to lowercase segments separated by colons,
// e.g. "assets:wallet:main".
var accountRE = regexp.MustCompile(`^[a-z0-9-]+(:[a-z0-9-]+)*$`)

// chart is the app's Directory: it accepts any well-formed account code and
// any nonempty dimension value. The firm's real chart of accounts lives
// outside these books.
type chart struct{}

func (chart) ResolveAccount(code string) bool { return accountRE.MatchString(code) }
func (chart) ResolveDimensionValue(dimension, value string) bool {
	return dimension != "" && value != ""
}

// appendEntry appends a single journal entry to the app's journal file.
func appendEntry(entry coinbooks.JournalEntry) subcommands.ExitStatus {
	return appendRecords("journal.jsonl", func(f *os.File) error {
		return coinbooks.EncodeEntry(f, entry)
	})
}

// appendLot appends a single lot record to the app's lots file.
func appendLot(lot coinbooks.Lot) subcommands.ExitStatus {
	return appendRecords("lots.jsonl", func(f *os.File) error {
		return coinbooks.EncodeLot(f, lot)
	})
}

// appendDisposals appends disposal records to the app's lots file.
func appendDisposals(disposals []coinbooks.LotDisposal) subcommands.ExitStatus {
	return appendRecords("lots.jsonl", func(f *os.File) error {
		for _, d := range disposals {
			if err := coinbooks.EncodeDisposal(f, d); err != nil {
				return err
			}
		}
		return nil
	})
}

// appendReconciliations appends reconciliation records to the app's
// reconciliations file.
func appendReconciliations(records []coinbooks.WalletReconciliation) subcommands.ExitStatus {
	return appendRecords("reconciliations.jsonl", func(f *os.File) error {
		for _, r := range records {
			if err := coinbooks.EncodeReconciliation(f, r); err != nil {
				return err
			}
		}
		return nil
	})
}

// appendRecords opens one of the books' files in append mode, creating it if
// it doesn't exist, and runs the encoder against it. Committed records are
// never rewritten.
func appendRecords(file string, encode func(*os.File) error) subcommands.ExitStatus {
	filename := filepath.Join(*booksDir, file)
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening books file %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if err := encode(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to books file %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
