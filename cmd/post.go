package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/finvik/coinbooks"
	"github.com/google/subcommands"
)

// leg is one parsed -debit or -credit flag value.
type leg struct {
	account string
	amount  string
	asset   string
}

// legList accumulates repeated -debit or -credit flags. Each value is
// "account=amount" optionally followed by "@asset".
type legList []leg

func (l *legList) String() string {
	parts := make([]string, 0, len(*l))
	for _, g := range *l {
		parts = append(parts, g.account+"="+g.amount)
	}
	return strings.Join(parts, ",")
}

func (l *legList) Set(value string) error {
	account, rest, found := strings.Cut(value, "=")
	if !found || account == "" || rest == "" {
		return fmt.Errorf("want account=amount[@asset], got %q", value)
	}
	amount, asset, _ := strings.Cut(rest, "@")
	if amount == "" {
		return fmt.Errorf("want account=amount[@asset], got %q", value)
	}
	*l = append(*l, leg{account: account, amount: amount, asset: asset})
	return nil
}

type postCmd struct {
	date        string
	description string
	reference   string
	debits      legList
	credits     legList
}

func (*postCmd) Name() string     { return "post" }
func (*postCmd) Synopsis() string { return "append a balanced entry to the journal" }
func (*postCmd) Usage() string {
	return `cbk post -m <description> -debit <account=amount[@asset]> -credit <account=amount[@asset]> [-d <date>] [-ref <reference>]

  Appends a balanced double-entry to the journal. The -debit and -credit
  flags repeat, one per leg; total debits must equal total credits.

Usage Examples:
# Record a 100 USD BTC purchase.
$ cbk post -m "buy BTC otc" -debit "assets:wallet:main=100@BTC" -credit "assets:cash=100"
`
}

func (c *postCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Entry date. Defaults to today. See 'cbk topic dates' for formats.")
	f.StringVar(&c.description, "m", "", "Description of the entry")
	f.StringVar(&c.reference, "ref", "", "External reference (trade id, tx hash)")
	f.Var(&c.debits, "debit", "Debit leg as account=amount[@asset]. Repeatable.")
	f.Var(&c.credits, "credit", "Credit leg as account=amount[@asset]. Repeatable.")
}

func (c *postCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.description == "" {
		fmt.Fprintln(os.Stderr, "-m is required")
		return subcommands.ExitUsageError
	}
	if len(c.debits) == 0 || len(c.credits) == 0 {
		fmt.Fprintln(os.Stderr, "at least one -debit and one -credit leg are required")
		return subcommands.ExitUsageError
	}

	books, err := OpenBooks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading books: %v\n", err)
		return subcommands.ExitFailure
	}
	currency := books.Journal.Currency()

	draft := coinbooks.EntryDraft{
		Description: c.description,
		Reference:   c.reference,
	}
	if c.date != "" {
		if draft.Date, err = coinbooks.ParseDate(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	for _, g := range c.debits {
		amount, err := coinbooks.ParseMoney(g.amount, currency)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing debit amount %q: %v\n", g.amount, err)
			return subcommands.ExitUsageError
		}
		draft.Postings = append(draft.Postings, coinbooks.Posting{Account: g.account, Debit: amount, Asset: g.asset})
	}
	for _, g := range c.credits {
		amount, err := coinbooks.ParseMoney(g.amount, currency)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing credit amount %q: %v\n", g.amount, err)
			return subcommands.ExitUsageError
		}
		draft.Postings = append(draft.Postings, coinbooks.Posting{Account: g.account, Credit: amount, Asset: g.asset})
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
	if status := appendEntry(entry); status != subcommands.ExitSuccess {
		return status
	}

	fmt.Printf("Posted entry %s (hash %.12s)\n", entry.ID, entry.Hash)
	return subcommands.ExitSuccess
}
