package renderer

import (
	"strings"
	"testing"

	"github.com/finvik/coinbooks"
)

func TestGainsMarkdown(t *testing.T) {
	inv := coinbooks.NewInventory()
	if _, err := inv.CreateLot("BTC", coinbooks.Q(10), coinbooks.M(100, "USD"), coinbooks.MustParse("2025-01-01"), coinbooks.SourcePurchase, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := inv.Dispose("BTC", coinbooks.Q(4), coinbooks.M(80, "USD"), coinbooks.MustParse("2025-02-01"), coinbooks.FIFO, ""); err != nil {
		t.Fatal(err)
	}

	got := GainsMarkdown(inv, coinbooks.MustParse("2025-01-01"), coinbooks.MustParse("2025-12-31"))

	for _, want := range []string{
		"# Realized Gains Report from 2025-01-01 to 2025-12-31",
		"| 2025-02-01 | BTC | 4 |",
		"+$40.00", // proceeds 80 against cost 40
		"**Total**",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("GainsMarkdown() missing %q in:\n%s", want, got)
		}
	}

	// Out-of-period disposals are excluded.
	got = GainsMarkdown(inv, coinbooks.MustParse("2025-03-01"), coinbooks.MustParse("2025-12-31"))
	if strings.Contains(got, "2025-02-01") {
		t.Errorf("GainsMarkdown() includes out-of-period disposal:\n%s", got)
	}
}

func TestLotsMarkdown_hidesExhaustedLots(t *testing.T) {
	inv := coinbooks.NewInventory()
	if _, err := inv.CreateLot("BTC", coinbooks.Q(4), coinbooks.M(40, "USD"), coinbooks.MustParse("2025-01-01"), coinbooks.SourcePurchase, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := inv.CreateLot("BTC", coinbooks.Q(6), coinbooks.M(90, "USD"), coinbooks.MustParse("2025-01-02"), coinbooks.SourceMining, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := inv.Dispose("BTC", coinbooks.Q(4), coinbooks.M(50, "USD"), coinbooks.MustParse("2025-02-01"), coinbooks.FIFO, ""); err != nil {
		t.Fatal(err)
	}

	got := LotsMarkdown(inv, "BTC", false)
	if strings.Contains(got, "2025-01-01") {
		t.Errorf("LotsMarkdown() shows exhausted lot:\n%s", got)
	}
	if !strings.Contains(got, "| 2025-01-02 | BTC | mining | 6 | 6 |") {
		t.Errorf("LotsMarkdown() missing open lot row:\n%s", got)
	}
	if !strings.Contains(got, "Remaining BTC: 6") {
		t.Errorf("LotsMarkdown() missing remaining total:\n%s", got)
	}

	if got := LotsMarkdown(inv, "BTC", true); !strings.Contains(got, "2025-01-01") {
		t.Errorf("LotsMarkdown(all) hides exhausted lot:\n%s", got)
	}
}

func TestVerificationMarkdown(t *testing.T) {
	valid := coinbooks.Verification{IsValid: true, TotalEntries: 3, BrokenIndex: -1}
	if got := VerificationMarkdown(valid); !strings.Contains(got, "**intact**") {
		t.Errorf("VerificationMarkdown(valid) = %q, want intact", got)
	}

	broken := coinbooks.Verification{TotalEntries: 3, BrokenAt: "abc", BrokenIndex: 1, Reason: "stored hash mismatch"}
	got := VerificationMarkdown(broken)
	if !strings.Contains(got, "**broken**") || !strings.Contains(got, "| 1 | abc | stored hash mismatch |") {
		t.Errorf("VerificationMarkdown(broken) = %q", got)
	}
}

func TestReconciliationMarkdown(t *testing.T) {
	records := []coinbooks.WalletReconciliation{
		{
			Address:        "bc1qexample",
			Asset:          "BTC",
			OnChainBalance: coinbooks.Q(105),
			BookBalance:    coinbooks.Q(100),
			Variance:       coinbooks.Q(5),
			Status:         coinbooks.StatusAlerted,
			AlertSent:      true,
		},
	}
	got := ReconciliationMarkdown(records)
	if !strings.Contains(got, "alerted (alert sent)") {
		t.Errorf("ReconciliationMarkdown() missing alert marker:\n%s", got)
	}
	if !strings.Contains(got, "1 pair(s) out of threshold") {
		t.Errorf("ReconciliationMarkdown() missing out-of-threshold summary:\n%s", got)
	}

	if got := ReconciliationMarkdown(nil); !strings.Contains(got, "No wallet-asset pairs") {
		t.Errorf("ReconciliationMarkdown(nil) = %q", got)
	}
}

func TestLogMarkdown(t *testing.T) {
	j := coinbooks.NewJournal("USD")
	_, err := j.Append(coinbooks.EntryDraft{
		Date:        coinbooks.MustParse("2025-01-10"),
		Description: "opening position",
		Postings: []coinbooks.Posting{
			{Account: "assets:wallet:main", Debit: coinbooks.M(100, "USD"), Asset: "BTC"},
			{Account: "equity:opening", Credit: coinbooks.M(100, "USD")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	got := LogMarkdown(j, coinbooks.MustParse("2025-01-01"), coinbooks.MustParse("2025-01-31"))
	if !strings.Contains(got, "## 2025-01-10 opening position") {
		t.Errorf("LogMarkdown() missing entry heading:\n%s", got)
	}
	if !strings.Contains(got, "| assets:wallet:main | BTC | $100.00 |  |") {
		t.Errorf("LogMarkdown() missing posting row:\n%s", got)
	}

	empty := LogMarkdown(j, coinbooks.MustParse("2025-02-01"), coinbooks.MustParse("2025-02-28"))
	if !strings.Contains(empty, "No entries in this period.") {
		t.Errorf("LogMarkdown() on empty period = %q", empty)
	}
}
