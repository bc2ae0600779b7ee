package coinbooks

import "testing"

func TestJournal_BalanceAsOf(t *testing.T) {
	j := NewJournal("USD")
	post := func(day string, postings ...Posting) {
		t.Helper()
		if _, err := j.Append(EntryDraft{Date: MustParse(day), Description: "test", Postings: postings}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	post("2025-01-10",
		Posting{Account: "assets:wallet:main", Debit: M(100, "USD"), Asset: "BTC"},
		Posting{Account: "income:trading", Credit: M(100, "USD")},
	)
	post("2025-01-15",
		Posting{Account: "assets:wallet:main", Debit: M(40, "USD"), Asset: "ETH"},
		Posting{Account: "income:trading", Credit: M(40, "USD")},
	)
	post("2025-02-01",
		Posting{Account: "assets:wallet:main", Credit: M(25, "USD"), Asset: "BTC"},
		Posting{Account: "income:trading", Debit: M(25, "USD")},
	)
	// An untagged posting applies to the account whatever asset is filtered.
	post("2025-02-05",
		Posting{Account: "assets:wallet:main", Debit: M(10, "USD")},
		Posting{Account: "income:trading", Credit: M(10, "USD")},
	)

	testCases := []struct {
		name         string
		account      string
		asset        string
		date         string
		wantAmount   Money
		wantPostings int
	}{
		{"before any entry", "assets:wallet:main", "", "2025-01-09", M(0, "USD"), 0},
		{"on the first entry day", "assets:wallet:main", "", "2025-01-10", M(100, "USD"), 1},
		{"all assets, all entries", "assets:wallet:main", "", "2025-03-01", M(125, "USD"), 4},
		{"BTC only, untagged included", "assets:wallet:main", "BTC", "2025-03-01", M(85, "USD"), 3},
		{"ETH only, untagged included", "assets:wallet:main", "ETH", "2025-03-01", M(50, "USD"), 2},
		{"BTC before the credit", "assets:wallet:main", "BTC", "2025-01-31", M(100, "USD"), 1},
		{"counterparty account", "income:trading", "", "2025-03-01", M(-125, "USD"), 4},
		{"unknown account", "assets:vault", "", "2025-03-01", M(0, "USD"), 0},
		{"unknown asset, untagged only", "assets:wallet:main", "DOGE", "2025-03-01", M(10, "USD"), 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := j.BalanceAsOf(tc.account, tc.asset, MustParse(tc.date))
			if !b.Amount.Equal(tc.wantAmount) {
				t.Errorf("BalanceAsOf(%q, %q, %s).Amount = %s, want %s", tc.account, tc.asset, tc.date, b.Amount, tc.wantAmount)
			}
			if b.Postings != tc.wantPostings {
				t.Errorf("BalanceAsOf(%q, %q, %s).Postings = %d, want %d", tc.account, tc.asset, tc.date, b.Postings, tc.wantPostings)
			}
		})
	}
}
