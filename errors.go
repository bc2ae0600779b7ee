package coinbooks

import "fmt"

// The errors below form the engine's failure taxonomy. Validation and
// resource errors are caller-correctable and rejected before any mutation.
// ChainIntegrityError is alarm-class: it is never auto-repaired, and the
// journal refuses further appends once it has been detected.

// ImbalancedEntryError reports an entry whose debits and credits do not sum
// to the same amount within tolerance.
type ImbalancedEntryError struct {
	Debits  Money
	Credits Money
}

func (e *ImbalancedEntryError) Error() string {
	return fmt.Sprintf("entry is imbalanced: debits %s != credits %s", e.Debits.Decimal(), e.Credits.Decimal())
}

// UnknownAccountError reports a posting that references an account code the
// directory cannot resolve.
type UnknownAccountError struct {
	Posting int // index of the offending posting
	Account string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("posting %d references unknown account %q", e.Posting, e.Account)
}

// UnknownDimensionError reports a posting tagged with a dimension or
// dimension value the directory cannot resolve.
type UnknownDimensionError struct {
	Posting   int // index of the offending posting
	Dimension string
	Value     string
}

func (e *UnknownDimensionError) Error() string {
	return fmt.Sprintf("posting %d references unknown dimension value %s=%q", e.Posting, e.Dimension, e.Value)
}

// InvalidPostingError reports a posting with a negative side, or with both
// a debit and a credit.
type InvalidPostingError struct {
	Posting int
	Reason  string
}

func (e *InvalidPostingError) Error() string {
	return fmt.Sprintf("posting %d is invalid: %s", e.Posting, e.Reason)
}

// InvalidQuantityError reports a lot operation with a non-positive quantity
// or a negative cost basis.
type InvalidQuantityError struct {
	Asset  string
	Reason string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity for %s: %s", e.Asset, e.Reason)
}

// InsufficientLotsError reports a disposal that requested more than the
// total remaining quantity across an asset's lots. The disposal is rejected
// as a whole: no lot is touched.
type InsufficientLotsError struct {
	Asset     string
	Requested Quantity
	Available Quantity
}

func (e *InsufficientLotsError) Error() string {
	return fmt.Sprintf("insufficient %s lots: requested %s, available %s", e.Asset, e.Requested, e.Available)
}

// ChainIntegrityError reports a broken hash chain: either an entry's stored
// hash does not match its recomputed content hash, or its prevHash does not
// match the preceding entry's hash.
type ChainIntegrityError struct {
	Index   int    // position of the first broken entry
	EntryID string // id of the first broken entry
	Reason  string
}

func (e *ChainIntegrityError) Error() string {
	return fmt.Sprintf("journal chain broken at entry %d (%s): %s", e.Index, e.EntryID, e.Reason)
}
