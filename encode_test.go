package coinbooks

import (
	"bytes"
	"strings"
	"testing"
)

func TestJournal_encodeRoundTrip(t *testing.T) {
	j := NewJournal("EUR")
	for i, day := range []string{"2025-01-10", "2025-01-11", "2025-01-12"} {
		d := EntryDraft{
			Date:        MustParse(day),
			Description: "entry",
			Reference:   "tx-ref",
			Postings: []Posting{
				{Account: "assets:wallet:main", Debit: M(10*(i+1), "EUR"), Asset: "BTC", Dimensions: map[string]string{"desk": "otc"}},
				{Account: "income:trading", Credit: M(10*(i+1), "EUR")},
			},
			Metadata: map[string]string{"batch": "nightly"},
		}
		if _, err := j.Append(d); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	var buf bytes.Buffer
	if err := EncodeJournal(&buf, j); err != nil {
		t.Fatalf("EncodeJournal() error = %v", err)
	}

	got, err := DecodeJournal(&buf)
	if err != nil {
		t.Fatalf("DecodeJournal() error = %v", err)
	}
	if got.Currency() != "EUR" {
		t.Errorf("Currency() = %q, want EUR", got.Currency())
	}
	if got.Len() != j.Len() {
		t.Fatalf("decoded %d entries, want %d", got.Len(), j.Len())
	}
	if got.Head() != j.Head() {
		t.Errorf("decoded Head() = %.8s, want %.8s", got.Head(), j.Head())
	}

	// The decoded chain must verify: the canonical serialization round-trips
	// every byte the hashes cover.
	if v := got.VerifyChain(); !v.IsValid {
		t.Errorf("decoded chain invalid: %s", v.Reason)
	}
}

func TestDecodeJournal_rejectsTamperedFile(t *testing.T) {
	j := NewJournal("USD")
	if _, err := j.Append(draft("2025-01-10", "honest entry", 100)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeJournal(&buf, j); err != nil {
		t.Fatalf("EncodeJournal() error = %v", err)
	}
	doctored := strings.Replace(buf.String(), "honest entry", "doctored entry", 1)

	got, err := DecodeJournal(strings.NewReader(doctored))
	if err != nil {
		t.Fatalf("DecodeJournal() error = %v", err)
	}
	if v := got.VerifyChain(); v.IsValid {
		t.Error("VerifyChain() valid on a journal edited on disk")
	}
}

func TestDecodeJournal_requiresInit(t *testing.T) {
	if _, err := DecodeJournal(strings.NewReader("")); err == nil {
		t.Error("DecodeJournal() on empty file: want error")
	}
	line := `{"type":"entry","id":"x","date":"2025-01-10","description":"d","postings":[],"hash":"h","prevHash":"p","createdAt":"2025-01-10T00:00:00Z"}` + "\n"
	if _, err := DecodeJournal(strings.NewReader(line)); err == nil {
		t.Error("DecodeJournal() without init record: want error")
	}
}

func TestInventory_encodeRoundTrip(t *testing.T) {
	inv := NewInventory()
	if _, err := inv.CreateLot("BTC", Q(10), M(100, "USD"), MustParse("2025-01-01"), SourcePurchase, "entry-1"); err != nil {
		t.Fatalf("CreateLot() error = %v", err)
	}
	if _, err := inv.CreateLot("BTC", Q(5), M(60, "USD"), MustParse("2025-01-02"), SourceMining, ""); err != nil {
		t.Fatalf("CreateLot() error = %v", err)
	}
	if _, err := inv.Dispose("BTC", Q(12), M(150, "USD"), MustParse("2025-02-01"), FIFO, ""); err != nil {
		t.Fatalf("Dispose() error = %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeInventory(&buf, inv); err != nil {
		t.Fatalf("EncodeInventory() error = %v", err)
	}

	got, err := DecodeInventory(&buf)
	if err != nil {
		t.Fatalf("DecodeInventory() error = %v", err)
	}

	// Replaying the disposals must reconstruct the remaining quantities.
	if !got.Remaining("BTC").Equal(Q(3)) {
		t.Errorf("decoded Remaining(BTC) = %s, want 3", got.Remaining("BTC"))
	}
	var disposals int
	for d := range got.Disposals() {
		disposals++
		if d.Asset != "BTC" {
			t.Errorf("decoded disposal asset = %q, want BTC", d.Asset)
		}
	}
	if disposals != 2 {
		t.Errorf("decoded %d disposals, want 2", disposals)
	}

	// A further disposal on the decoded inventory behaves as on the original.
	if _, err := got.Dispose("BTC", Q(4), M(10, "USD"), MustParse("2025-03-01"), FIFO, ""); err == nil {
		t.Error("Dispose() of 4 with 3 remaining: want InsufficientLotsError")
	}
}

func TestReconciliations_encodeRoundTrip(t *testing.T) {
	j := bookedJournal(t, "assets:wallet:main", "BTC", 100)
	source := &stubSource{balances: map[string]Quantity{"BTC": Q(105)}}
	r := NewReconciler(j, source, &captureDispatcher{})
	if _, err := r.Run(t.Context(), testWallet(), MustParse("2025-02-01")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	records := r.Records()

	var buf bytes.Buffer
	for _, rec := range records {
		if err := EncodeReconciliation(&buf, rec); err != nil {
			t.Fatalf("EncodeReconciliation() error = %v", err)
		}
	}

	got, err := DecodeReconciliations(&buf)
	if err != nil {
		t.Fatalf("DecodeReconciliations() error = %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("decoded %d records, want %d", len(got), len(records))
	}
	want, have := records[0], got[0]
	if have.ID != want.ID || have.Status != want.Status || have.AlertSent != want.AlertSent {
		t.Errorf("decoded record = %+v, want %+v", have, want)
	}
	if !have.Variance.Equal(want.Variance) || !have.VariancePercent.Equal(want.VariancePercent) {
		t.Errorf("decoded variance = %s (%s%%), want %s (%s%%)", have.Variance, have.VariancePercent, want.Variance, want.VariancePercent)
	}
}

func TestBooks_saveAndOpen(t *testing.T) {
	dir := t.TempDir()
	b, err := InitBooks(dir, "USD")
	if err != nil {
		t.Fatalf("InitBooks() error = %v", err)
	}
	if _, err := b.Journal.Append(draft("2025-01-10", "opening", 100)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, err := b.Inventory.CreateLot("BTC", Q(2), M(100, "USD"), MustParse("2025-01-10"), SourcePurchase, ""); err != nil {
		t.Fatalf("CreateLot() error = %v", err)
	}
	if err := b.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := OpenBooks(dir)
	if err != nil {
		t.Fatalf("OpenBooks() error = %v", err)
	}
	if got.Journal.Len() != 1 {
		t.Errorf("reopened journal has %d entries, want 1", got.Journal.Len())
	}
	if v := got.Journal.VerifyChain(); !v.IsValid {
		t.Errorf("reopened chain invalid: %s", v.Reason)
	}
	if !got.Inventory.Remaining("BTC").Equal(Q(2)) {
		t.Errorf("reopened Remaining(BTC) = %s, want 2", got.Inventory.Remaining("BTC"))
	}

	// Double init must refuse to overwrite.
	if _, err := InitBooks(dir, "USD"); err == nil {
		t.Error("InitBooks() on existing books: want error")
	}
}
