package coinbooks

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// RecordType is a typed string identifying the kind of a JSONL record.
type RecordType string

// Record types used in the books' data files.
const (
	RecInit           RecordType = "init"
	RecEntry          RecordType = "entry"
	RecLot            RecordType = "lot"
	RecDisposal       RecordType = "disposal"
	RecReconciliation RecordType = "reconciliation"
)

// amountRec is a specialized struct to read an amount in two fields.
type amountRec struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (a amountRec) Money() Money { return M(a.Amount, a.Currency) }

// postingRec is a specialized struct for decoding postings.
type postingRec struct {
	Account     string            `json:"account"`
	Debit       decimal.Decimal   `json:"debit"`
	Credit      decimal.Decimal   `json:"credit"`
	Asset       string            `json:"asset"`
	Description string            `json:"description"`
	Dimensions  map[string]string `json:"dimensions"`
}

func (p postingRec) Posting(currency string) Posting {
	return Posting{
		Account:     p.Account,
		Debit:       M(p.Debit, currency),
		Credit:      M(p.Credit, currency),
		Asset:       p.Asset,
		Description: p.Description,
		Dimensions:  p.Dimensions,
	}
}

// entryRec is a specialized struct for decoding journal entries.
type entryRec struct {
	ID          string            `json:"id"`
	Date        Date              `json:"date"`
	Description string            `json:"description"`
	Reference   string            `json:"reference"`
	Postings    []postingRec      `json:"postings"`
	Metadata    map[string]string `json:"metadata"`
	Hash        string            `json:"hash"`
	PrevHash    string            `json:"prevHash"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// EncodeJournal writes the whole journal as JSONL: an init record declaring
// the reporting currency, then one record per entry in append order.
func EncodeJournal(w io.Writer, j *Journal) error {
	var init jsonObjectWriter
	init.Append("type", RecInit)
	init.Append("currency", j.Currency())
	if err := writeLine(w, &init); err != nil {
		return err
	}
	for _, e := range j.Entries() {
		if err := EncodeEntry(w, e); err != nil {
			return err
		}
	}
	return nil
}

// EncodeEntry writes a single journal entry record. Used by EncodeJournal
// and by callers appending to an open journal file.
func EncodeEntry(w io.Writer, e JournalEntry) error {
	var rec jsonObjectWriter
	rec.Append("type", RecEntry)
	rec.EmbedFrom(e)
	return writeLine(w, &rec)
}

// DecodeJournal reads a journal from a stream of JSONL data. The chain is
// restored as stored; callers should run VerifyChain before trusting it.
func DecodeJournal(r io.Reader) (*Journal, error) {
	var journal *Journal
	scanner := newLineScanner(r)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		rtype, err := identify(lineBytes)
		if err != nil {
			return nil, err
		}

		switch rtype {
		case RecInit:
			var temp struct {
				Currency string `json:"currency"`
			}
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			journal = NewJournal(temp.Currency)
		case RecEntry:
			if journal == nil {
				return nil, fmt.Errorf("journal file must start with an %q record", RecInit)
			}
			var temp entryRec
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			postings := make([]Posting, 0, len(temp.Postings))
			for _, p := range temp.Postings {
				postings = append(postings, p.Posting(journal.Currency()))
			}
			journal.restore(JournalEntry{
				ID:          temp.ID,
				Date:        temp.Date,
				Description: temp.Description,
				Reference:   temp.Reference,
				Postings:    postings,
				Metadata:    temp.Metadata,
				Hash:        temp.Hash,
				PrevHash:    temp.PrevHash,
				CreatedAt:   temp.CreatedAt,
			})
		default:
			return nil, fmt.Errorf("unexpected record type %q in journal file", rtype)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if journal == nil {
		return nil, fmt.Errorf("journal file is empty, missing %q record", RecInit)
	}
	return journal, nil
}

// MarshalJSON implements the json.Marshaler interface for Lot with a
// deterministic field order.
func (l Lot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", l.ID)
	w.Append("asset", l.Asset)
	w.Append("quantity", l.Quantity)
	w.Append("costBasis", l.CostBasis)
	w.Append("acquiredOn", l.AcquiredOn)
	w.Append("source", l.Source)
	w.Optional("entryId", l.EntryID)
	return w.MarshalJSON()
}

// MarshalJSON implements the json.Marshaler interface for LotDisposal with a
// deterministic field order.
func (d LotDisposal) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", d.ID)
	w.Append("lotId", d.LotID)
	w.Append("asset", d.Asset)
	w.Append("quantity", d.Quantity)
	w.Append("costBasis", d.CostBasis)
	w.Append("proceeds", d.Proceeds)
	w.Append("realizedPnl", d.RealizedPnL)
	w.Append("disposedOn", d.DisposedOn)
	w.Optional("entryId", d.EntryID)
	w.Append("createdAt", d.CreatedAt.UTC().Format(DatetimeFormat))
	return w.MarshalJSON()
}

// EncodeInventory writes the whole inventory as JSONL: lots at their
// original quantity followed by every disposal, so a replay reconstructs
// each lot's remaining quantity. Records are append-mostly: new lots and
// disposals are appended, committed records are never rewritten.
func EncodeInventory(w io.Writer, inv *Inventory) error {
	for lot := range inv.Lots("") {
		if err := EncodeLot(w, lot); err != nil {
			return err
		}
	}
	for d := range inv.Disposals() {
		if err := EncodeDisposal(w, d); err != nil {
			return err
		}
	}
	return nil
}

// EncodeLot writes a single lot record at its original quantity.
func EncodeLot(w io.Writer, lot Lot) error {
	var rec jsonObjectWriter
	rec.Append("type", RecLot)
	rec.EmbedFrom(lot)
	return writeLine(w, &rec)
}

// EncodeDisposal writes a single disposal record.
func EncodeDisposal(w io.Writer, d LotDisposal) error {
	var rec jsonObjectWriter
	rec.Append("type", RecDisposal)
	rec.EmbedFrom(d)
	return writeLine(w, &rec)
}

// lotRec is a specialized struct for decoding lots.
type lotRec struct {
	ID         string    `json:"id"`
	Asset      string    `json:"asset"`
	Quantity   Quantity  `json:"quantity"`
	CostBasis  amountRec `json:"costBasis"`
	AcquiredOn Date      `json:"acquiredOn"`
	Source     LotSource `json:"source"`
	EntryID    string    `json:"entryId"`
}

// disposalRec is a specialized struct for decoding disposals.
type disposalRec struct {
	ID          string    `json:"id"`
	LotID       string    `json:"lotId"`
	Asset       string    `json:"asset"`
	Quantity    Quantity  `json:"quantity"`
	CostBasis   amountRec `json:"costBasis"`
	Proceeds    amountRec `json:"proceeds"`
	RealizedPnL amountRec `json:"realizedPnl"`
	DisposedOn  Date      `json:"disposedOn"`
	EntryID     string    `json:"entryId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DecodeInventory reads an inventory from a stream of JSONL data, replaying
// disposals against their lots to reconstruct remaining quantities.
func DecodeInventory(r io.Reader) (*Inventory, error) {
	inv := NewInventory()
	scanner := newLineScanner(r)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}

		rtype, err := identify(lineBytes)
		if err != nil {
			return nil, err
		}

		switch rtype {
		case RecLot:
			var temp lotRec
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			inv.restoreLot(Lot{
				ID:         temp.ID,
				Asset:      temp.Asset,
				Quantity:   temp.Quantity,
				Remaining:  temp.Quantity,
				CostBasis:  temp.CostBasis.Money(),
				AcquiredOn: temp.AcquiredOn,
				Source:     temp.Source,
				EntryID:    temp.EntryID,
			})
		case RecDisposal:
			var temp disposalRec
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, err
			}
			d := LotDisposal{
				ID:          temp.ID,
				LotID:       temp.LotID,
				Asset:       temp.Asset,
				Quantity:    temp.Quantity,
				CostBasis:   temp.CostBasis.Money(),
				Proceeds:    temp.Proceeds.Money(),
				RealizedPnL: temp.RealizedPnL.Money(),
				DisposedOn:  temp.DisposedOn,
				EntryID:     temp.EntryID,
				CreatedAt:   temp.CreatedAt,
			}
			if err := inv.restoreDisposal(d); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unexpected record type %q in inventory file", rtype)
		}
	}
	return inv, scanner.Err()
}

// MarshalJSON implements the json.Marshaler interface for
// WalletReconciliation with a deterministic field order.
func (r WalletReconciliation) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", r.ID)
	w.Append("walletAccount", r.WalletAccount)
	w.Append("address", r.Address)
	w.Append("asset", r.Asset)
	w.Append("onChainBalance", r.OnChainBalance)
	w.Append("bookBalance", r.BookBalance)
	w.Append("variance", r.Variance)
	w.Append("variancePercent", r.VariancePercent)
	w.Append("threshold", r.Threshold)
	w.Append("withinThreshold", r.WithinThreshold)
	w.Append("alertSent", r.AlertSent)
	w.Append("status", r.Status)
	w.Optional("blockNumber", r.BlockNumber)
	w.Append("checkedAt", r.CheckedAt.UTC().Format(DatetimeFormat))
	return w.MarshalJSON()
}

// EncodeReconciliation writes a single reconciliation record.
func EncodeReconciliation(w io.Writer, rec WalletReconciliation) error {
	var row jsonObjectWriter
	row.Append("type", RecReconciliation)
	row.EmbedFrom(rec)
	return writeLine(w, &row)
}

// reconciliationRec is a specialized struct for decoding reconciliations.
type reconciliationRec struct {
	ID              string          `json:"id"`
	WalletAccount   string          `json:"walletAccount"`
	Address         string          `json:"address"`
	Asset           string          `json:"asset"`
	OnChainBalance  Quantity        `json:"onChainBalance"`
	BookBalance     Quantity        `json:"bookBalance"`
	Variance        Quantity        `json:"variance"`
	VariancePercent decimal.Decimal `json:"variancePercent"`
	Threshold       Quantity        `json:"threshold"`
	WithinThreshold bool            `json:"withinThreshold"`
	AlertSent       bool            `json:"alertSent"`
	Status          RunStatus       `json:"status"`
	BlockNumber     int64           `json:"blockNumber"`
	CheckedAt       time.Time       `json:"checkedAt"`
}

// DecodeReconciliations reads reconciliation records from a stream of JSONL
// data, in file order.
func DecodeReconciliations(r io.Reader) ([]WalletReconciliation, error) {
	var records []WalletReconciliation
	scanner := newLineScanner(r)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}

		rtype, err := identify(lineBytes)
		if err != nil {
			return nil, err
		}
		if rtype != RecReconciliation {
			return nil, fmt.Errorf("unexpected record type %q in reconciliations file", rtype)
		}

		var temp reconciliationRec
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return nil, err
		}
		records = append(records, WalletReconciliation{
			ID:              temp.ID,
			WalletAccount:   temp.WalletAccount,
			Address:         temp.Address,
			Asset:           temp.Asset,
			OnChainBalance:  temp.OnChainBalance,
			BookBalance:     temp.BookBalance,
			Variance:        temp.Variance,
			VariancePercent: temp.VariancePercent,
			Threshold:       temp.Threshold,
			WithinThreshold: temp.WithinThreshold,
			AlertSent:       temp.AlertSent,
			Status:          temp.Status,
			BlockNumber:     temp.BlockNumber,
			CheckedAt:       temp.CheckedAt,
		})
	}
	return records, scanner.Err()
}

// identify extracts the record type from a JSONL line.
func identify(lineBytes []byte) (RecordType, error) {
	var identifier struct {
		Type RecordType `json:"type"`
	}
	if err := json.Unmarshal(lineBytes, &identifier); err != nil {
		return "", fmt.Errorf("could not identify record in line %q: %w", string(lineBytes), err)
	}
	return identifier.Type, nil
}

// writeLine marshals the object and writes it followed by a newline.
func writeLine(w io.Writer, obj *jsonObjectWriter) error {
	b, err := obj.MarshalJSON()
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}

// newLineScanner returns a bufio.Scanner sized for long journal lines.
func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
