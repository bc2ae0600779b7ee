package coinbooks

import (
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Journal is the append-only, hash-chained record of journal entries.
//
// Entries are kept in append order. Every entry's hash covers its content
// and the previous entry's hash, so the sequence is tamper-evident: any
// later modification of a persisted entry breaks the chain at that point.
//
// A Journal is safe for concurrent use. Appends are strictly serialized by
// a single writer lock: two concurrent appends must never compute their
// prevHash from the same prior head, or the chain would fork. Reads take
// the read lock so they always observe fully linked entries.
type Journal struct {
	mu      sync.RWMutex
	cur     string // reporting currency of all monetary amounts
	entries []JournalEntry
	byID    map[string]int

	// broken holds the first detected integrity failure. Once set, further
	// appends are refused until the journal is reloaded from a repaired
	// source; it is never cleared automatically.
	broken *ChainIntegrityError
}

// NewJournal creates an empty journal whose amounts are expressed in the
// given reporting currency.
func NewJournal(currency string) *Journal {
	return &Journal{
		cur:     currency,
		entries: make([]JournalEntry, 0),
		byID:    make(map[string]int),
	}
}

// Currency returns the journal's reporting currency.
func (j *Journal) Currency() string { return j.cur }

// Len returns the number of entries in the journal.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// Head returns the hash of the most recently appended entry, or GenesisHash
// if the journal is empty.
func (j *Journal) Head() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.head()
}

func (j *Journal) head() string {
	if len(j.entries) == 0 {
		return GenesisHash
	}
	return j.entries[len(j.entries)-1].Hash
}

// Append admits a validated, balanced draft to the journal: it links the
// draft to the current head, computes its content hash, and stores it as an
// immutable entry. It returns the stored entry with ID, Hash and PrevHash
// populated.
//
// The whole operation holds the writer lock: appends are strictly ordered.
// Balance is rechecked here so an imbalanced draft can never reach the
// chain, whatever path produced it.
func (j *Journal) Append(draft EntryDraft) (JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.broken != nil {
		return JournalEntry{}, j.broken
	}
	if len(draft.Postings) == 0 {
		return JournalEntry{}, &InvalidPostingError{Posting: 0, Reason: "entry has no postings"}
	}
	if !draft.Balanced() {
		return JournalEntry{}, &ImbalancedEntryError{Debits: draft.Debits(), Credits: draft.Credits()}
	}
	if draft.Date.IsZero() {
		draft.Date = Today()
	}

	prev := j.head()
	hash, err := hashEntry(draft, prev)
	if err != nil {
		return JournalEntry{}, fmt.Errorf("could not hash entry: %w", err)
	}

	entry := JournalEntry{
		ID:          uuid.NewString(),
		Date:        draft.Date,
		Description: draft.Description,
		Reference:   draft.Reference,
		Postings:    draft.Postings,
		Metadata:    draft.Metadata,
		Hash:        hash,
		PrevHash:    prev,
		CreatedAt:   time.Now().UTC(),
	}
	j.entries = append(j.entries, entry)
	j.byID[entry.ID] = len(j.entries) - 1
	return entry, nil
}

// restore appends an already-hashed entry as read from persistent storage.
// No hash is recomputed here; VerifyChain is the integrity check for
// restored journals.
func (j *Journal) restore(entry JournalEntry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
	j.byID[entry.ID] = len(j.entries) - 1
}

// Entry returns the entry with the given id.
func (j *Journal) Entry(id string) (JournalEntry, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	i, ok := j.byID[id]
	if !ok {
		return JournalEntry{}, false
	}
	return j.entries[i], true
}

// Entries returns an iterator over all entries in append order. The
// snapshot is taken under the read lock, so a concurrent append can never
// tear an iteration.
func (j *Journal) Entries() iter.Seq2[int, JournalEntry] {
	j.mu.RLock()
	snapshot := make([]JournalEntry, len(j.entries))
	copy(snapshot, j.entries)
	j.mu.RUnlock()

	return func(yield func(int, JournalEntry) bool) {
		for i, e := range snapshot {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Verification is the outcome of a full chain verification.
type Verification struct {
	IsValid      bool
	TotalEntries int
	BrokenAt     string // id of the first broken entry, empty when valid
	BrokenIndex  int    // position of the first broken entry, -1 when valid
	Reason       string
}

// Err returns nil for a valid chain, or the ChainIntegrityError describing
// the first break.
func (v Verification) Err() error {
	if v.IsValid {
		return nil
	}
	return &ChainIntegrityError{Index: v.BrokenIndex, EntryID: v.BrokenAt, Reason: v.Reason}
}

// VerifyChain scans all entries in append order, recomputes every content
// hash and checks every prev-hash link. It never mutates entries, but it
// excludes writers for its duration so the verdict is consistent at a point
// in time.
//
// A detected break latches the journal: subsequent appends fail with the
// same ChainIntegrityError until the journal is reloaded. Corruption is an
// operator-level event, never auto-repaired.
func (j *Journal) VerifyChain() Verification {
	j.mu.Lock()
	defer j.mu.Unlock()

	prev := GenesisHash
	for i, e := range j.entries {
		v := Verification{IsValid: false, TotalEntries: len(j.entries), BrokenAt: e.ID, BrokenIndex: i}
		if e.PrevHash != prev {
			v.Reason = fmt.Sprintf("prevHash %.8s does not match previous entry hash %.8s", e.PrevHash, prev)
			j.latch(v)
			return v
		}
		expected, err := hashEntry(e.Draft(), e.PrevHash)
		if err != nil {
			v.Reason = fmt.Sprintf("could not recompute hash: %v", err)
			j.latch(v)
			return v
		}
		if expected != e.Hash {
			v.Reason = fmt.Sprintf("stored hash %.8s does not match recomputed %.8s", e.Hash, expected)
			j.latch(v)
			return v
		}
		prev = e.Hash
	}
	return Verification{IsValid: true, TotalEntries: len(j.entries), BrokenIndex: -1}
}

// latch records the first detected integrity failure. Called with the
// writer lock held.
func (j *Journal) latch(v Verification) {
	err, _ := v.Err().(*ChainIntegrityError)
	j.broken = err
}

// Proof returns the ordered list of entry hashes from genesis up to and
// including the given entry. An external verifier holding the entry's
// content can replay the digests without access to the full journal.
func (j *Journal) Proof(entryID string) ([]string, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	i, ok := j.byID[entryID]
	if !ok {
		return nil, fmt.Errorf("unknown entry %q", entryID)
	}
	proof := make([]string, 0, i+2)
	proof = append(proof, GenesisHash)
	for k := 0; k <= i; k++ {
		proof = append(proof, j.entries[k].Hash)
	}
	return proof, nil
}
