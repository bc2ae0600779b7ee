package coinbooks

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OnChainBalance is a balance reported by an external source for one asset
// held at an address.
type OnChainBalance struct {
	Asset       string
	Balance     Quantity
	BlockNumber int64
	Timestamp   time.Time
}

// BalanceSource reports externally observed balances, typically from a
// chain indexer. The engine never talks to a node directly.
type BalanceSource interface {
	Balances(ctx context.Context, address string, assets []string) ([]OnChainBalance, error)
}

// Severity classifies a reconciliation alert.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is one out-of-threshold variance to be dispatched.
type Alert struct {
	WalletAddress   string
	Asset           string
	Variance        Quantity
	VariancePercent decimal.Decimal
	Message         string
	Severity        Severity
}

// AlertDispatcher delivers reconciliation alerts. Implementations must
// accept an empty batch as a no-op.
type AlertDispatcher interface {
	SendBatchAlert(ctx context.Context, alerts []Alert) error
}

// RunStatus is the terminal state of a wallet-asset pair for one
// reconciliation run. Every run starts a pair at pending again.
type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusReconciled RunStatus = "reconciled" // within threshold
	StatusFlagged    RunStatus = "flagged"    // out of threshold, no alert due
	StatusAlerted    RunStatus = "alerted"    // out of threshold, alert sent
)

// Wallet describes one wallet account to reconcile.
type Wallet struct {
	Account        string // account code of the wallet in the books
	Address        string
	Assets         []string
	Threshold      Quantity // tolerated absolute variance
	AlertThreshold Quantity // minimum absolute variance to alert on
}

// WalletReconciliation is the persisted outcome of one reconciliation of a
// wallet-asset pair.
type WalletReconciliation struct {
	ID              string
	WalletAccount   string
	Address         string
	Asset           string
	OnChainBalance  Quantity
	BookBalance     Quantity
	Variance        Quantity // OnChainBalance - BookBalance
	VariancePercent decimal.Decimal
	Threshold       Quantity
	WithinThreshold bool
	AlertSent       bool
	Status          RunStatus
	BlockNumber     int64
	CheckedAt       time.Time
}

// Reconciler compares book balances against externally observed balances
// and raises alerts on out-of-threshold variances.
//
// The alertSent flag is a one-way latch per wallet-asset pair: an
// unresolved, unchanged variance alerts at most once across repeated runs.
// The latch clears only when a later run finds the pair back within
// threshold, so a variance must clear and reappear to alert again.
type Reconciler struct {
	journal *Journal
	source  BalanceSource
	alerts  AlertDispatcher

	mu      sync.Mutex
	records []WalletReconciliation
	latched map[string]bool // wallet address + asset -> already alerted
}

// NewReconciler creates a reconciliation engine over the journal, using the
// given balance source and alert dispatcher.
func NewReconciler(journal *Journal, source BalanceSource, alerts AlertDispatcher) *Reconciler {
	return &Reconciler{
		journal: journal,
		source:  source,
		alerts:  alerts,
		latched: make(map[string]bool),
	}
}

// Restore reloads past reconciliation records, rebuilding the alert latches
// so reruns do not duplicate notifications.
func (r *Reconciler) Restore(records ...WalletReconciliation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		r.records = append(r.records, rec)
		key := latchKey(rec.Address, rec.Asset)
		if rec.WithinThreshold {
			delete(r.latched, key)
		} else if rec.AlertSent {
			r.latched[key] = true
		}
	}
}

// Records returns a copy of all reconciliation records in creation order.
func (r *Reconciler) Records() []WalletReconciliation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.records)
}

func latchKey(address, asset string) string { return address + "/" + asset }

// Run reconciles every asset of the wallet as of the given date. The book
// balance and the on-chain balance are taken at the same as-of instant; a
// balance-source failure aborts this run only and leaves the books
// untouched.
func (r *Reconciler) Run(ctx context.Context, wallet Wallet, on Date) ([]WalletReconciliation, error) {
	onChain, err := r.source.Balances(ctx, wallet.Address, wallet.Assets)
	if err != nil {
		return nil, fmt.Errorf("could not fetch balances for %s: %w", wallet.Address, err)
	}
	reported := make(map[string]OnChainBalance, len(onChain))
	for _, b := range onChain {
		reported[b.Asset] = b
	}

	var results []WalletReconciliation
	var alerts []Alert
	now := time.Now().UTC()

	for _, asset := range wallet.Assets {
		observed := reported[asset] // zero balance when the source omits the asset
		book := r.journal.BalanceAsOf(wallet.Account, asset, on)
		bookQty := Q(book.Amount.Decimal())

		rec := WalletReconciliation{
			ID:             uuid.NewString(),
			WalletAccount:  wallet.Account,
			Address:        wallet.Address,
			Asset:          asset,
			OnChainBalance: observed.Balance,
			BookBalance:    bookQty,
			Variance:       observed.Balance.Sub(bookQty),
			Threshold:      wallet.Threshold,
			BlockNumber:    observed.BlockNumber,
			Status:         StatusPending,
			CheckedAt:      now,
		}
		rec.VariancePercent = variancePercent(rec.Variance, bookQty)
		rec.WithinThreshold = rec.Variance.Abs().LessThanOrEqual(wallet.Threshold)

		key := latchKey(wallet.Address, asset)
		switch {
		case rec.WithinThreshold:
			rec.Status = StatusReconciled
			r.mu.Lock()
			delete(r.latched, key) // variance cleared, future alerts rearm
			r.mu.Unlock()
		case rec.Variance.Abs().GreaterThanOrEqual(wallet.AlertThreshold) && !r.isLatched(key):
			rec.Status = StatusAlerted
			rec.AlertSent = true
			alerts = append(alerts, Alert{
				WalletAddress:   wallet.Address,
				Asset:           asset,
				Variance:        rec.Variance,
				VariancePercent: rec.VariancePercent,
				Message: fmt.Sprintf("wallet %s %s: on-chain %s vs book %s (variance %s, %s%%)",
					wallet.Address, asset, rec.OnChainBalance, rec.BookBalance, rec.Variance, rec.VariancePercent.StringFixed(2)),
				Severity: severity(rec.VariancePercent),
			})
		default:
			rec.Status = StatusFlagged
		}

		results = append(results, rec)
	}

	// A batch with zero alerts is a required no-op for the dispatcher, but
	// skipping the call entirely keeps quiet runs quiet.
	if len(alerts) > 0 {
		if err := r.alerts.SendBatchAlert(ctx, alerts); err != nil {
			// The alert channel failing must not lose the reconciliation
			// verdicts; the latch stays unset so the next run retries.
			for i := range results {
				if results[i].Status == StatusAlerted {
					results[i].Status = StatusFlagged
					results[i].AlertSent = false
				}
			}
		}
	}

	r.mu.Lock()
	for _, rec := range results {
		if rec.AlertSent {
			r.latched[latchKey(rec.Address, rec.Asset)] = true
		}
	}
	r.records = append(r.records, results...)
	r.mu.Unlock()

	return results, nil
}

func (r *Reconciler) isLatched(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latched[key]
}

// variancePercent returns the variance as a percentage of the book balance.
// A zero book balance yields 100% when any on-chain balance exists, and 0%
// otherwise.
func variancePercent(variance, book Quantity) decimal.Decimal {
	if book.IsZero() {
		if variance.IsZero() {
			return decimal.Zero
		}
		return decimal.NewFromInt(100)
	}
	return variance.Decimal().Div(book.Decimal()).Mul(decimal.NewFromInt(100))
}

// severity classifies a variance: above 10% of the book balance it is
// critical, otherwise a warning.
func severity(variancePercent decimal.Decimal) Severity {
	if variancePercent.Abs().GreaterThan(decimal.NewFromInt(10)) {
		return SeverityCritical
	}
	return SeverityWarning
}
