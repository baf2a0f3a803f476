package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// Snapshot is the portable form of a ledger.
type Snapshot struct {
	Transactions []model.Transaction `json:"transactions"`
	Categories   []model.Category    `json:"categories"`
}

// ImportResult describes what an import changed.
type ImportResult struct {
	Transactions int
	Categories   int
	Skipped      int
}

// WriteSnapshot writes snap as indented JSON.
func WriteSnapshot(w io.Writer, snap Snapshot) error {
	if snap.Transactions == nil {
		snap.Transactions = []model.Transaction{}
	}
	if snap.Categories == nil {
		snap.Categories = []model.Category{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ReadSnapshot decodes a snapshot document. Each collection may be a JSON
// array or a string holding one, as in a raw dump of the key-value store.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	var snap Snapshot
	if err := decodeField(raw[KeyTransactions], &snap.Transactions); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrCorruptData, KeyTransactions, err)
	}
	if err := decodeField(raw[KeyCategories], &snap.Categories); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrCorruptData, KeyCategories, err)
	}
	return snap, nil
}

func decodeField[T any](data json.RawMessage, dst *[]T) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		data = []byte(inner)
	}
	return json.Unmarshal(data, dst)
}

// Export returns a copy of both collections.
func (l *Ledger) Export() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Transactions: slices.Clone(l.transactions),
		Categories:   slices.Clone(l.categories),
	}
}

// Import loads snap into the ledger. With replace the snapshot becomes the
// ledger, and a snapshot without categories gets the default ones. Otherwise
// the snapshot is merged: transactions are appended under fresh ids, and
// categories are added unless a category with the same name exists. Merged
// transactions keep their category as given, so a blank category written by
// PolicyBlank survives a round trip.
func (l *Ledger) Import(ctx context.Context, snap Snapshot, replace bool) (ImportResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if replace {
		return l.replace(ctx, snap)
	}
	return l.merge(ctx, snap)
}

func (l *Ledger) replace(ctx context.Context, snap Snapshot) (ImportResult, error) {
	if err := uniqueIDs(snap.Transactions, func(t model.Transaction) int64 { return t.ID }); err != nil {
		return ImportResult{}, fmt.Errorf("%w: transactions: %v", ErrCorruptData, err)
	}
	if err := uniqueIDs(snap.Categories, func(c model.Category) int64 { return c.ID }); err != nil {
		return ImportResult{}, fmt.Errorf("%w: categories: %v", ErrCorruptData, err)
	}
	for _, txn := range snap.Transactions {
		if _, err := model.ParseAmount(string(txn.Amount)); err != nil || !txn.Type.IsValid() {
			return ImportResult{}, fmt.Errorf("%w: transaction %d has type %q and amount %q",
				ErrCorruptData, txn.ID, txn.Type, txn.Amount)
		}
	}
	for i, cat := range snap.Categories {
		if err := (model.CategoryDraft{Name: cat.Name, Type: cat.Type}).Validate(); err != nil {
			return ImportResult{}, fmt.Errorf("%w: category %d: %v", ErrCorruptData, cat.ID, err)
		}
		if hasCategory(snap.Categories[:i], cat.Name) {
			return ImportResult{}, fmt.Errorf("%w: category %d: name %q is used twice",
				ErrCorruptData, cat.ID, cat.Name)
		}
	}

	txns := slices.Clone(snap.Transactions)
	if txns == nil {
		txns = []model.Transaction{}
	}
	cats := slices.Clone(snap.Categories)
	if cats == nil {
		cats = model.DefaultCategories()
	}

	if err := l.save(ctx, txns, cats, KeyTransactions, KeyCategories); err != nil {
		return ImportResult{}, err
	}
	l.setState(txns, cats)

	slog.Info("replaced ledger from snapshot",
		"transactions", len(txns),
		"categories", len(cats))
	return ImportResult{Transactions: len(txns), Categories: len(cats)}, nil
}

func (l *Ledger) merge(ctx context.Context, snap Snapshot) (ImportResult, error) {
	var result ImportResult

	cats := slices.Clone(l.categories)
	nextCatID := l.nextCatID
	for _, in := range snap.Categories {
		name := strings.TrimSpace(in.Name)
		if name == "" || !in.Type.IsValid() || hasCategory(cats, name) {
			result.Skipped++
			continue
		}
		cats = append(cats, model.Category{ID: nextCatID, Name: name, Type: in.Type})
		nextCatID++
		result.Categories++
	}

	txns := slices.Clone(l.transactions)
	nextTxnID := l.nextTxnID
	for _, in := range snap.Transactions {
		amount, err := model.ParseAmount(string(in.Amount))
		if err != nil || !in.Type.IsValid() {
			result.Skipped++
			continue
		}
		txn := in
		txn.ID = nextTxnID
		txn.Amount = amount
		txn.Category = strings.TrimSpace(in.Category)
		if txn.Date == "" {
			txn.Date = l.now().Format(model.DateLayout)
		}
		txns = append(txns, txn)
		nextTxnID++
		result.Transactions++
	}

	if result.Transactions == 0 && result.Categories == 0 {
		return result, nil
	}
	if err := l.save(ctx, txns, cats, KeyTransactions, KeyCategories); err != nil {
		return ImportResult{}, err
	}
	l.nextTxnID = nextTxnID
	l.nextCatID = nextCatID

	slog.Info("merged snapshot into ledger",
		"transactions", result.Transactions,
		"categories", result.Categories,
		"skipped", result.Skipped)
	return result, nil
}

func hasCategory(cats []model.Category, name string) bool {
	return slices.ContainsFunc(cats, func(c model.Category) bool {
		return model.SameName(c.Name, name)
	})
}

func uniqueIDs[T any](items []T, id func(T) int64) error {
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		key := id(item)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("duplicate id %d", key)
		}
		seen[key] = struct{}{}
	}
	return nil
}
