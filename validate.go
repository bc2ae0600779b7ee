package coinbooks

// Directory resolves account codes and dimension values against the chart
// of accounts, which is owned outside this engine. Implementations must be
// safe for concurrent use.
type Directory interface {
	// ResolveAccount reports whether the account code exists.
	ResolveAccount(code string) bool
	// ResolveDimensionValue reports whether the value code exists for the
	// given dimension code.
	ResolveDimensionValue(dimension, value string) bool
}

// Validator checks entry drafts for double-entry balance and account and
// dimension well-formedness before they are admitted to the journal.
type Validator struct {
	dir Directory
}

// NewValidator creates a validator backed by the given directory.
func NewValidator(dir Directory) *Validator {
	return &Validator{dir: dir}
}

// Validate checks a draft for correctness and returns it unchanged, or the
// typed error naming the offending posting.
//
// The checks, in order: at least one posting; every posting references a
// known account and known dimension values; debit and credit are both
// nonnegative with at most one of them positive; total debits equal total
// credits within tolerance.
func (v *Validator) Validate(draft EntryDraft) (EntryDraft, error) {
	if len(draft.Postings) == 0 {
		return draft, &InvalidPostingError{Posting: 0, Reason: "entry has no postings"}
	}

	for i, p := range draft.Postings {
		if p.Account == "" || !v.dir.ResolveAccount(p.Account) {
			return draft, &UnknownAccountError{Posting: i, Account: p.Account}
		}
		for dim, val := range p.Dimensions {
			if !v.dir.ResolveDimensionValue(dim, val) {
				return draft, &UnknownDimensionError{Posting: i, Dimension: dim, Value: val}
			}
		}
		if p.Debit.IsNegative() {
			return draft, &InvalidPostingError{Posting: i, Reason: "negative debit"}
		}
		if p.Credit.IsNegative() {
			return draft, &InvalidPostingError{Posting: i, Reason: "negative credit"}
		}
		if p.Debit.Decimal().GreaterThan(epsilon) && p.Credit.Decimal().GreaterThan(epsilon) {
			return draft, &InvalidPostingError{Posting: i, Reason: "both debit and credit are set"}
		}
	}

	if !draft.Balanced() {
		return draft, &ImbalancedEntryError{Debits: draft.Debits(), Credits: draft.Credits()}
	}
	return draft, nil
}
