package coinbooks

// Balance is a point-in-time book balance for an account, computed by
// replaying the journal's postings.
type Balance struct {
	Account  string
	Asset    string // empty when the balance is not filtered by asset
	AsOf     Date
	Amount   Money // sum of debits minus sum of credits
	Postings int   // number of postings considered
}

// BalanceAsOf replays all postings against the account whose entry date is
// on or before the given date and returns their debit minus credit total.
//
// When asset is non-empty, only postings tagged with that asset are
// considered, plus untagged postings: a posting without an asset tag applies
// to the account as a whole, whatever asset is being filtered.
//
// The computation runs on a snapshot of the journal, so it can never
// observe a partially appended entry.
func (j *Journal) BalanceAsOf(account, asset string, on Date) Balance {
	b := Balance{
		Account: account,
		Asset:   asset,
		AsOf:    on,
		Amount:  M(0, j.cur),
	}
	for _, e := range j.Entries() {
		if e.Date.After(on) {
			continue
		}
		for _, p := range e.Postings {
			if p.Account != account {
				continue
			}
			if asset != "" && p.Asset != "" && p.Asset != asset {
				continue
			}
			b.Amount = b.Amount.Add(p.Debit).Sub(p.Credit)
			b.Postings++
		}
	}
	return b
}
