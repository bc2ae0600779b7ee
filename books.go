package coinbooks

import (
	"fmt"
	"os"
	"path/filepath"
)

// File names of the three data files that make up a set of books.
const (
	journalFile         = "journal.jsonl"
	lotsFile            = "lots.jsonl"
	reconciliationsFile = "reconciliations.jsonl"
)

// Books is one set of books on disk: a directory holding the journal, the
// lot inventory and the reconciliation history as JSONL files.
//
// The journal file is the source of truth; the lots and reconciliations
// files are operational state derived from, but not recomputable without,
// the operations that produced them.
type Books struct {
	dir string

	Journal         *Journal
	Inventory       *Inventory
	Reconciliations []WalletReconciliation
}

// NewBooks creates an empty in-memory set of books bound to the directory,
// in the given reporting currency. Nothing is written until Save.
func NewBooks(dir, currency string) *Books {
	return &Books{
		dir:       dir,
		Journal:   NewJournal(currency),
		Inventory: NewInventory(),
	}
}

// Dir returns the directory the books are bound to.
func (b *Books) Dir() string { return b.dir }

// OpenBooks loads a set of books from the directory. A missing lots or
// reconciliations file is treated as empty; a missing journal file is an
// error, as InitBooks is the explicit way to start books.
func OpenBooks(dir string) (*Books, error) {
	b := &Books{dir: dir}

	f, err := os.Open(filepath.Join(dir, journalFile))
	if err != nil {
		return nil, fmt.Errorf("could not open books in %q: %w", dir, err)
	}
	b.Journal, err = DecodeJournal(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("could not decode journal in %q: %w", dir, err)
	}

	b.Inventory, err = openInventory(filepath.Join(dir, lotsFile))
	if err != nil {
		return nil, fmt.Errorf("could not decode lots in %q: %w", dir, err)
	}

	b.Reconciliations, err = openReconciliations(filepath.Join(dir, reconciliationsFile))
	if err != nil {
		return nil, fmt.Errorf("could not decode reconciliations in %q: %w", dir, err)
	}
	return b, nil
}

func openInventory(path string) (*Inventory, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewInventory(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeInventory(f)
}

func openReconciliations(path string) ([]WalletReconciliation, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeReconciliations(f)
}

// InitBooks creates the directory and an empty journal file in the given
// reporting currency. It refuses to overwrite existing books.
func InitBooks(dir, currency string) (*Books, error) {
	if _, err := os.Stat(filepath.Join(dir, journalFile)); err == nil {
		return nil, fmt.Errorf("books already exist in %q", dir)
	}
	b := NewBooks(dir, currency)
	if err := b.Save(); err != nil {
		return nil, err
	}
	return b, nil
}

// Save writes all three data files back to the books directory. Each file is
// rewritten whole; the journal's own hash chain, not the file system, is
// what makes tampering evident.
func (b *Books) Save() error {
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return fmt.Errorf("could not create books directory %q: %w", b.dir, err)
	}

	if err := saveFile(filepath.Join(b.dir, journalFile), func(f *os.File) error {
		return EncodeJournal(f, b.Journal)
	}); err != nil {
		return err
	}

	if err := saveFile(filepath.Join(b.dir, lotsFile), func(f *os.File) error {
		return EncodeInventory(f, b.Inventory)
	}); err != nil {
		return err
	}

	return saveFile(filepath.Join(b.dir, reconciliationsFile), func(f *os.File) error {
		for _, rec := range b.Reconciliations {
			if err := EncodeReconciliation(f, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveFile(path string, encode func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error opening %q for writing: %w", path, err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("error writing %q: %w", path, err)
	}
	return f.Close()
}
