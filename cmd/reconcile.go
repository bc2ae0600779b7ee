package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/finvik/coinbooks"
	"github.com/finvik/coinbooks/renderer"
	"github.com/google/subcommands"
)

type reconcileCmd struct {
	account        string
	address        string
	assets         string
	threshold      string
	alertThreshold string
	explorerURL    string
	date           string
}

func (*reconcileCmd) Name() string { return "reconcile" }
func (*reconcileCmd) Synopsis() string {
	return "compare book balances against on-chain balances and alert on variances"
}
func (*reconcileCmd) Usage() string {
	return `cbk reconcile -address <address> -assets <sym,sym,...> [-account <code>] [-threshold <qty>] [-d <date>]

  Fetches the wallet's on-chain balances from the block-explorer API and
  compares them with the book balances as of the given date. Out-of-
  threshold variances are flagged; variances reaching the alert threshold
  are alerted once until they clear.

Usage Examples:
$ cbk reconcile -address bc1qexample -assets BTC,ETH -threshold 0.001
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "assets:wallet:main", "Wallet account in the books")
	f.StringVar(&c.address, "address", "", "On-chain address of the wallet")
	f.StringVar(&c.assets, "assets", "", "Comma-separated asset symbols to reconcile")
	f.StringVar(&c.threshold, "threshold", "0", "Tolerated absolute variance per asset")
	f.StringVar(&c.alertThreshold, "alert-threshold", "", "Minimum absolute variance to alert on. Defaults to the threshold.")
	f.StringVar(&c.explorerURL, "explorer-url", "https://api.chainlookup.example", "Base URL of the block-explorer API")
	f.StringVar(&c.date, "d", coinbooks.Today().String(), "Reconcile book balances as of this date")
}

// logDispatcher delivers alerts to the operator's terminal. Wiring a pager
// or chat webhook here is a deployment concern, not a bookkeeping one.
type logDispatcher struct{}

func (logDispatcher) SendBatchAlert(_ context.Context, alerts []coinbooks.Alert) error {
	for _, a := range alerts {
		log.Printf("ALERT [%s] %s", a.Severity, a.Message)
	}
	return nil
}

func (c *reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.address == "" || c.assets == "" {
		fmt.Fprintln(os.Stderr, "-address and -assets are required")
		return subcommands.ExitUsageError
	}
	on, err := coinbooks.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	threshold, err := coinbooks.ParseQuantity(c.threshold)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing threshold: %v\n", err)
		return subcommands.ExitUsageError
	}
	alertThreshold := threshold
	if c.alertThreshold != "" {
		if alertThreshold, err = coinbooks.ParseQuantity(c.alertThreshold); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing alert threshold: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	books, err := OpenBooks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading books: %v\n", err)
		return subcommands.ExitFailure
	}

	wallet := coinbooks.Wallet{
		Account:        c.account,
		Address:        c.address,
		Assets:         strings.Split(c.assets, ","),
		Threshold:      threshold,
		AlertThreshold: alertThreshold,
	}

	engine := coinbooks.NewReconciler(books.Journal, coinbooks.NewExplorer(c.explorerURL), logDispatcher{})
	engine.Restore(books.Reconciliations...)

	records, err := engine.Run(ctx, wallet, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reconciling: %v\n", err)
		return subcommands.ExitFailure
	}

	if status := appendReconciliations(records); status != subcommands.ExitSuccess {
		return status
	}
	printMarkdown(renderer.ReconciliationMarkdown(records))

	for _, r := range records {
		if !r.WithinThreshold {
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
