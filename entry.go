package coinbooks

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
)

// epsilon is the tolerance under which two monetary sums are considered
// equal. Arithmetic is exact decimal, but drafts may originate from sources
// that rounded independently on each side.
var epsilon = decimal.New(1, -9) // 1e-9

// GenesisHash is the previous-hash value of the very first journal entry.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Posting is one leg of a journal entry: a debit or a credit against an
// account, optionally tagged with an asset symbol and analytical dimensions.
//
// Exactly one of Debit and Credit is expected to be positive; the validator
// enforces it. The asset tag is an explicit field, not free-form metadata:
// balance queries filter on it.
type Posting struct {
	Account     string            `json:"account"`
	Debit       Money             `json:"debit"`
	Credit      Money             `json:"credit"`
	Asset       string            `json:"asset,omitempty"`
	Description string            `json:"description,omitempty"`
	Dimensions  map[string]string `json:"dimensions,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface for Posting with a
// deterministic field order, as these bytes feed the entry hash.
func (p Posting) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("account", p.Account)
	w.Append("debit", p.Debit.Decimal())
	w.Append("credit", p.Credit.Decimal())
	w.Optional("asset", p.Asset)
	w.Optional("description", p.Description)
	// json.Marshal sorts map keys, so dimensions serialize deterministically.
	if len(p.Dimensions) > 0 {
		w.Append("dimensions", p.Dimensions)
	}
	return w.MarshalJSON()
}

// EntryDraft is the candidate payload for a new journal entry, before it is
// validated, hashed and admitted to the journal.
type EntryDraft struct {
	Date        Date              `json:"date"`
	Description string            `json:"description"`
	Reference   string            `json:"reference,omitempty"`
	Postings    []Posting         `json:"postings"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Debits returns the sum of all posting debits.
func (d EntryDraft) Debits() Money {
	var sum Money
	for _, p := range d.Postings {
		sum = sum.Add(p.Debit)
	}
	return sum
}

// Credits returns the sum of all posting credits.
func (d EntryDraft) Credits() Money {
	var sum Money
	for _, p := range d.Postings {
		sum = sum.Add(p.Credit)
	}
	return sum
}

// Balanced reports whether debits equal credits within tolerance.
func (d EntryDraft) Balanced() bool {
	diff := d.Debits().Decimal().Sub(d.Credits().Decimal()).Abs()
	return diff.LessThanOrEqual(epsilon)
}

// JournalEntry is an immutable, hash-chained record of a balanced financial
// event. Once appended it is never modified or deleted; corrections are new
// reversing entries.
type JournalEntry struct {
	ID          string
	Date        Date
	Description string
	Reference   string
	Postings    []Posting
	Metadata    map[string]string
	Hash        string
	PrevHash    string
	CreatedAt   time.Time
}

// Draft returns the entry's content as a draft, the part of the entry
// covered by its hash.
func (e JournalEntry) Draft() EntryDraft {
	return EntryDraft{
		Date:        e.Date,
		Description: e.Description,
		Reference:   e.Reference,
		Postings:    e.Postings,
		Metadata:    e.Metadata,
	}
}

// hashEntry computes the content hash of a draft chained to prevHash.
//
// The digest covers the canonical serialization of the draft's content plus
// the previous entry's hash, so recomputing it on an unaltered entry always
// reproduces the stored value, and any mutation of a persisted entry is
// detectable.
func hashEntry(draft EntryDraft, prevHash string) (string, error) {
	var w jsonObjectWriter
	w.Append("date", draft.Date)
	w.Append("description", draft.Description)
	w.Optional("reference", draft.Reference)
	w.Append("postings", draft.Postings)
	if len(draft.Metadata) > 0 {
		w.Append("metadata", draft.Metadata)
	}
	w.Append("prevHash", prevHash)
	content, err := w.MarshalJSON()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]), nil
}

// MarshalJSON implements the json.Marshaler interface for JournalEntry with
// a deterministic field order.
func (e JournalEntry) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", e.ID)
	w.Append("date", e.Date)
	w.Append("description", e.Description)
	w.Optional("reference", e.Reference)
	w.Append("postings", e.Postings)
	if len(e.Metadata) > 0 {
		w.Append("metadata", e.Metadata)
	}
	w.Append("hash", e.Hash)
	w.Append("prevHash", e.PrevHash)
	w.Append("createdAt", e.CreatedAt.UTC().Format(DatetimeFormat))
	return w.MarshalJSON()
}
