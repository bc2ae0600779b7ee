package coinbooks

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// draft returns a balanced two-posting draft for tests.
func draft(day, desc string, amount float64) EntryDraft {
	return EntryDraft{
		Date:        MustParse(day),
		Description: desc,
		Postings: []Posting{
			{Account: "assets:wallet:main", Debit: M(amount, "USD"), Asset: "BTC"},
			{Account: "income:trading", Credit: M(amount, "USD")},
		},
	}
}

func TestJournal_Append_chainsEntries(t *testing.T) {
	j := NewJournal("USD")

	e1, err := j.Append(draft("2025-01-10", "first", 100))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if e1.PrevHash != GenesisHash {
		t.Errorf("first entry PrevHash = %q, want genesis", e1.PrevHash)
	}
	if e1.ID == "" || e1.Hash == "" {
		t.Errorf("first entry missing ID or Hash: %+v", e1)
	}

	e2, err := j.Append(draft("2025-01-11", "second", 50))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if e2.PrevHash != e1.Hash {
		t.Errorf("second entry PrevHash = %.8s, want %.8s", e2.PrevHash, e1.Hash)
	}
	if j.Head() != e2.Hash {
		t.Errorf("Head() = %.8s, want %.8s", j.Head(), e2.Hash)
	}
}

func TestJournal_Append_rejectsImbalanced(t *testing.T) {
	j := NewJournal("USD")
	d := EntryDraft{
		Date:        MustParse("2025-01-10"),
		Description: "lopsided",
		Postings: []Posting{
			{Account: "assets:wallet:main", Debit: M(100, "USD")},
			{Account: "income:trading", Credit: M(99, "USD")},
		},
	}
	_, err := j.Append(d)
	var imbalanced *ImbalancedEntryError
	if !errors.As(err, &imbalanced) {
		t.Fatalf("Append() error = %v, want ImbalancedEntryError", err)
	}
	if j.Len() != 0 {
		t.Errorf("journal length = %d after rejected append, want 0", j.Len())
	}
}

func TestJournal_Append_rejectsEmptyDraft(t *testing.T) {
	j := NewJournal("USD")
	_, err := j.Append(EntryDraft{Date: MustParse("2025-01-10")})
	var invalid *InvalidPostingError
	if !errors.As(err, &invalid) {
		t.Fatalf("Append() error = %v, want InvalidPostingError", err)
	}
}

func TestHashEntry_deterministic(t *testing.T) {
	d := draft("2025-01-10", "same content", 42)

	h1, err := hashEntry(d, GenesisHash)
	if err != nil {
		t.Fatalf("hashEntry() error = %v", err)
	}
	h2, err := hashEntry(d, GenesisHash)
	if err != nil {
		t.Fatalf("hashEntry() error = %v", err)
	}
	if h1 != h2 {
		t.Errorf("same draft hashed to %.8s and %.8s", h1, h2)
	}

	h3, _ := hashEntry(d, h1)
	if h3 == h1 {
		t.Errorf("different prevHash produced the same hash %.8s", h3)
	}
}

func TestJournal_VerifyChain(t *testing.T) {
	j := NewJournal("USD")
	var entries []JournalEntry
	for i, day := range []string{"2025-01-10", "2025-01-11", "2025-01-12"} {
		e, err := j.Append(draft(day, "entry", float64(10*(i+1))))
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		entries = append(entries, e)
	}

	v := j.VerifyChain()
	if !v.IsValid {
		t.Fatalf("VerifyChain() on untouched journal: %s", v.Reason)
	}
	if v.TotalEntries != 3 || v.BrokenIndex != -1 {
		t.Errorf("VerifyChain() = %+v, want 3 entries, broken index -1", v)
	}

	// Tamper with the middle entry's content.
	j.entries[1].Description = "altered after the fact"

	v = j.VerifyChain()
	if v.IsValid {
		t.Fatal("VerifyChain() valid on tampered journal")
	}
	if v.BrokenIndex != 1 || v.BrokenAt != entries[1].ID {
		t.Errorf("break located at (%d, %s), want (1, %s)", v.BrokenIndex, v.BrokenAt, entries[1].ID)
	}

	// The journal is latched: appends must be refused with the same error.
	_, err := j.Append(draft("2025-01-13", "after the break", 5))
	var broken *ChainIntegrityError
	if !errors.As(err, &broken) {
		t.Fatalf("Append() after broken chain: error = %v, want ChainIntegrityError", err)
	}
	if broken.Index != 1 {
		t.Errorf("latched error index = %d, want 1", broken.Index)
	}
}

func TestJournal_VerifyChain_detectsRelink(t *testing.T) {
	j := NewJournal("USD")
	for _, day := range []string{"2025-01-10", "2025-01-11"} {
		if _, err := j.Append(draft(day, "entry", 10)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	// Rewriting an entry hash without touching content breaks the linkage.
	j.entries[1].PrevHash = GenesisHash

	v := j.VerifyChain()
	if v.IsValid {
		t.Fatal("VerifyChain() valid on relinked journal")
	}
	if v.BrokenIndex != 1 {
		t.Errorf("break located at %d, want 1", v.BrokenIndex)
	}
}

func TestJournal_Proof(t *testing.T) {
	j := NewJournal("USD")
	var entries []JournalEntry
	for _, day := range []string{"2025-01-10", "2025-01-11", "2025-01-12"} {
		e, err := j.Append(draft(day, "entry", 10))
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		entries = append(entries, e)
	}

	proof, err := j.Proof(entries[1].ID)
	if err != nil {
		t.Fatalf("Proof() error = %v", err)
	}
	want := []string{GenesisHash, entries[0].Hash, entries[1].Hash}
	if len(proof) != len(want) {
		t.Fatalf("Proof() returned %d hashes, want %d", len(proof), len(want))
	}
	for i := range want {
		if proof[i] != want[i] {
			t.Errorf("proof[%d] = %.8s, want %.8s", i, proof[i], want[i])
		}
	}

	if _, err := j.Proof("no-such-entry"); err == nil {
		t.Error("Proof() on unknown entry: want error")
	}
}

func TestJournal_concurrentAppend(t *testing.T) {
	j := NewJournal("USD")

	const writers, each = 8, 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range each {
				if _, err := j.Append(draft("2025-03-01", fmt.Sprintf("trade %d-%d", w, i), 10)); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Append() error = %v", err)
	}

	if j.Len() != writers*each {
		t.Fatalf("Len() = %d, want %d", j.Len(), writers*each)
	}

	// Appends must serialize into one unforked chain.
	prev := GenesisHash
	for i, e := range j.Entries() {
		if e.PrevHash != prev {
			t.Fatalf("entry %d PrevHash = %.8s, want %.8s", i, e.PrevHash, prev)
		}
		prev = e.Hash
	}
	if v := j.VerifyChain(); !v.IsValid {
		t.Errorf("VerifyChain() = %+v, want valid", v)
	}
}
