package coinbooks

import (
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LotSource identifies how a lot was acquired.
type LotSource string

const (
	SourcePurchase   LotSource = "purchase"
	SourceMining     LotSource = "mining"
	SourceStaking    LotSource = "staking"
	SourceAirdrop    LotSource = "airdrop"
	SourceTransferIn LotSource = "transfer-in"
)

// ParseLotSource parses a string into a LotSource.
func ParseLotSource(s string) (LotSource, error) {
	switch LotSource(s) {
	case SourcePurchase, SourceMining, SourceStaking, SourceAirdrop, SourceTransferIn:
		return LotSource(s), nil
	default:
		return "", fmt.Errorf("unknown lot source: %q", s)
	}
}

// DisposalMethod defines the order in which lots are consumed by a disposal.
type DisposalMethod int

const (
	// FIFO consumes the oldest remaining lots first.
	FIFO DisposalMethod = iota
	// LIFO consumes the newest remaining lots first.
	LIFO
	// Specific targets one explicit lot.
	Specific
)

func (m DisposalMethod) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case Specific:
		return "specific"
	default:
		return "unknown"
	}
}

// ParseDisposalMethod parses a string into a DisposalMethod.
func ParseDisposalMethod(s string) (DisposalMethod, error) {
	switch s {
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	case "specific":
		return Specific, nil
	default:
		return 0, fmt.Errorf("unknown disposal method: %q", s)
	}
}

// Lot is a discrete acquisition of an asset at a specific cost basis and
// date. Its remaining quantity only ever decreases, through disposals.
type Lot struct {
	ID         string
	Asset      string
	Quantity   Quantity // original quantity acquired
	Remaining  Quantity // remaining quantity, <= Quantity
	CostBasis  Money    // total cost of the original quantity
	AcquiredOn Date
	Source     LotSource
	EntryID    string // originating journal entry, if journalized
	seq        int    // insertion sequence, tie-break for same-day lots
}

// UnitCost returns the cost basis of one unit of the lot.
func (l Lot) UnitCost() Money {
	if l.Quantity.IsZero() {
		return M(0, l.CostBasis.Currency())
	}
	return l.CostBasis.Div(l.Quantity)
}

// LotDisposal records the consumption of (part of) one lot by a disposal.
// It is immutable once created.
type LotDisposal struct {
	ID          string
	LotID       string
	Asset       string
	Quantity    Quantity // quantity consumed from the lot
	CostBasis   Money    // cost allocated proportionally from the lot
	Proceeds    Money    // proceeds allocated proportionally to the quantity
	RealizedPnL Money    // Proceeds - CostBasis
	DisposedOn  Date
	EntryID     string // journal entry recording the gain/loss, if any
	CreatedAt   time.Time
}

// DisposalResult is the outcome of a disposal across one or more lots.
type DisposalResult struct {
	Disposals        []LotDisposal
	TotalCostBasis   Money
	TotalRealizedPnL Money
}

// Inventory tracks acquisition lots per asset and consumes them on
// disposals.
//
// Two locks cooperate. The per-asset lock serializes whole disposals on one
// queue: two concurrent disposals racing on the same asset would
// double-spend remaining quantities. inv.mu guards every access to shared
// lot state, so snapshot readers and writers on different assets never
// observe a half-applied mutation. Every write to a lot's fields holds
// both; reads hold at least one. Different assets still dispose in
// parallel.
type Inventory struct {
	mu        sync.Mutex             // guards lots, disposals, locks, seq and all lot fields
	locks     map[string]*sync.Mutex // one lock per asset symbol
	lots      map[string][]*Lot      // per asset, ordered by (AcquiredOn, seq)
	disposals []LotDisposal
	seq       int
}

// NewInventory creates an empty lot inventory.
func NewInventory() *Inventory {
	return &Inventory{
		locks: make(map[string]*sync.Mutex),
		lots:  make(map[string][]*Lot),
	}
}

// assetLock returns the lock dedicated to one asset's queue, creating it on
// first use.
func (inv *Inventory) assetLock(asset string) *sync.Mutex {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if _, exists := inv.locks[asset]; !exists {
		inv.locks[asset] = &sync.Mutex{}
	}
	return inv.locks[asset]
}

// CreateLot appends a new acquisition lot for the asset. The lot starts
// with its full quantity remaining.
func (inv *Inventory) CreateLot(asset string, quantity Quantity, costBasis Money, acquiredOn Date, source LotSource, entryID string) (Lot, error) {
	if !quantity.IsPositive() {
		return Lot{}, &InvalidQuantityError{Asset: asset, Reason: "lot quantity must be positive"}
	}
	if costBasis.IsNegative() {
		return Lot{}, &InvalidQuantityError{Asset: asset, Reason: "cost basis cannot be negative"}
	}
	if acquiredOn.IsZero() {
		acquiredOn = Today()
	}

	lock := inv.assetLock(asset)
	lock.Lock()
	defer lock.Unlock()

	inv.mu.Lock()
	inv.seq++
	lot := &Lot{
		ID:         uuid.NewString(),
		Asset:      asset,
		Quantity:   quantity,
		Remaining:  quantity,
		CostBasis:  costBasis,
		AcquiredOn: acquiredOn,
		Source:     source,
		EntryID:    entryID,
		seq:        inv.seq,
	}
	inv.lots[asset] = append(inv.lots[asset], lot)
	// Keep the queue ordered by acquisition date, insertion order breaking
	// ties, so FIFO stays deterministic for same-day acquisitions.
	slices.SortStableFunc(inv.lots[asset], func(a, b *Lot) int {
		if a.AcquiredOn.Before(b.AcquiredOn) {
			return -1
		}
		if a.AcquiredOn.After(b.AcquiredOn) {
			return 1
		}
		return a.seq - b.seq
	})
	inv.mu.Unlock()
	return *lot, nil
}

// Dispose consumes quantity from the asset's lots in the order given by
// method, allocating cost basis and proceeds proportionally across the lots
// touched.
//
// The operation is all-or-nothing: if the remaining quantity across the
// queue is less than requested, it fails with InsufficientLotsError and no
// lot or disposal record is mutated or created.
func (inv *Inventory) Dispose(asset string, quantity Quantity, proceeds Money, disposedOn Date, method DisposalMethod, lotID string) (DisposalResult, error) {
	if !quantity.IsPositive() {
		return DisposalResult{}, &InvalidQuantityError{Asset: asset, Reason: "disposal quantity must be positive"}
	}
	if disposedOn.IsZero() {
		disposedOn = Today()
	}

	lock := inv.assetLock(asset)
	lock.Lock()
	defer lock.Unlock()

	inv.mu.Lock()
	queue := slices.Clone(inv.lots[asset])
	inv.mu.Unlock()

	switch method {
	case FIFO:
		// queue is already oldest-first
	case LIFO:
		slices.Reverse(queue)
	case Specific:
		queue = slices.DeleteFunc(queue, func(l *Lot) bool { return l.ID != lotID })
		if len(queue) == 0 {
			return DisposalResult{}, fmt.Errorf("unknown lot %q for asset %s", lotID, asset)
		}
	default:
		return DisposalResult{}, fmt.Errorf("unsupported disposal method: %v", method)
	}

	var available Quantity
	for _, l := range queue {
		available = available.Add(l.Remaining)
	}
	if available.LessThan(quantity) {
		return DisposalResult{}, &InsufficientLotsError{Asset: asset, Requested: quantity, Available: available}
	}

	// Plan the allocation first; mutate only once the whole disposal is known
	// to succeed.
	type allocation struct {
		lot      *Lot
		consumed Quantity
		cost     Money
	}
	var plan []allocation
	left := quantity
	for _, l := range queue {
		if left.IsZero() {
			break
		}
		if l.Remaining.IsZero() {
			continue
		}
		consumed := l.Remaining
		if left.LessThan(consumed) {
			consumed = left
		}
		// Partial consumption splits the cost basis proportionally to the
		// original quantity.
		cost := l.CostBasis.Mul(consumed).Div(l.Quantity)
		plan = append(plan, allocation{lot: l, consumed: consumed, cost: cost})
		left = left.Sub(consumed)
	}

	result := DisposalResult{
		TotalCostBasis:   M(0, proceeds.Currency()),
		TotalRealizedPnL: M(0, proceeds.Currency()),
	}
	now := time.Now().UTC()

	// Apply the plan under inv.mu, so a concurrent snapshot of another
	// asset's queue never reads a remaining quantity mid-write.
	inv.mu.Lock()
	for _, a := range plan {
		// Proceeds are allocated proportionally to the quantity consumed.
		share := proceeds.Mul(a.consumed).Div(quantity)
		d := LotDisposal{
			ID:          uuid.NewString(),
			LotID:       a.lot.ID,
			Asset:       asset,
			Quantity:    a.consumed,
			CostBasis:   a.cost,
			Proceeds:    share,
			RealizedPnL: share.Sub(a.cost),
			DisposedOn:  disposedOn,
			CreatedAt:   now,
		}
		a.lot.Remaining = a.lot.Remaining.Sub(a.consumed)
		result.Disposals = append(result.Disposals, d)
		result.TotalCostBasis = result.TotalCostBasis.Add(a.cost)
		result.TotalRealizedPnL = result.TotalRealizedPnL.Add(d.RealizedPnL)
	}
	inv.disposals = append(inv.disposals, result.Disposals...)
	inv.mu.Unlock()
	return result, nil
}

// Lots returns an iterator over the asset's lots, oldest first. An empty
// asset iterates over every asset's lots.
//
// The lots are copied by value while the lock is held: the iteration is a
// consistent snapshot, unaffected by disposals applied after the call.
func (inv *Inventory) Lots(asset string) iter.Seq[Lot] {
	inv.mu.Lock()
	var snapshot []Lot
	copyLots := func(queue []*Lot) {
		for _, l := range queue {
			snapshot = append(snapshot, *l)
		}
	}
	if asset == "" {
		assets := make([]string, 0, len(inv.lots))
		for a := range inv.lots {
			assets = append(assets, a)
		}
		slices.Sort(assets)
		for _, a := range assets {
			copyLots(inv.lots[a])
		}
	} else {
		copyLots(inv.lots[asset])
	}
	inv.mu.Unlock()

	return func(yield func(Lot) bool) {
		for _, l := range snapshot {
			if !yield(l) {
				return
			}
		}
	}
}

// Disposals returns an iterator over all disposal records in creation order.
func (inv *Inventory) Disposals() iter.Seq[LotDisposal] {
	inv.mu.Lock()
	snapshot := slices.Clone(inv.disposals)
	inv.mu.Unlock()

	return func(yield func(LotDisposal) bool) {
		for _, d := range snapshot {
			if !yield(d) {
				return
			}
		}
	}
}

// Remaining returns the total remaining quantity across the asset's lots.
func (inv *Inventory) Remaining(asset string) Quantity {
	var total Quantity
	for l := range inv.Lots(asset) {
		total = total.Add(l.Remaining)
	}
	return total
}

// restoreLot re-inserts a lot as read from persistent storage.
func (inv *Inventory) restoreLot(lot Lot) {
	lock := inv.assetLock(lot.Asset)
	lock.Lock()
	defer lock.Unlock()

	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.seq++
	lot.seq = inv.seq
	l := lot
	inv.lots[lot.Asset] = append(inv.lots[lot.Asset], &l)
}

// restoreDisposal re-applies a disposal record as read from persistent
// storage, reducing the referenced lot's remaining quantity.
func (inv *Inventory) restoreDisposal(d LotDisposal) error {
	lock := inv.assetLock(d.Asset)
	lock.Lock()
	defer lock.Unlock()

	inv.mu.Lock()
	defer inv.mu.Unlock()
	for _, l := range inv.lots[d.Asset] {
		if l.ID == d.LotID {
			if l.Remaining.LessThan(d.Quantity) {
				return fmt.Errorf("disposal %s consumes more than lot %s has remaining", d.ID, d.LotID)
			}
			l.Remaining = l.Remaining.Sub(d.Quantity)
			inv.disposals = append(inv.disposals, d)
			return nil
		}
	}
	return fmt.Errorf("disposal %s references unknown lot %s", d.ID, d.LotID)
}
