package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// AddTransaction validates draft, records it with the next id and the
// current time, and persists the transaction list.
func (l *Ledger) AddTransaction(ctx context.Context, draft model.TransactionDraft) (model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn, err := draft.Build(l.nextTxnID, l.now())
	if err != nil {
		return model.Transaction{}, err
	}

	next := append(slices.Clone(l.transactions), txn)
	if err := l.save(ctx, next, l.categories, KeyTransactions); err != nil {
		return model.Transaction{}, err
	}
	l.nextTxnID++

	slog.Debug("added transaction",
		"id", txn.ID,
		"type", txn.Type,
		"category", txn.Category,
		"amount", txn.Amount)
	return txn, nil
}

// UpdateTransaction applies patch to the transaction with the given id.
// It reports false without error when no transaction has that id.
func (l *Ledger) UpdateTransaction(ctx context.Context, id int64, patch model.TransactionPatch) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.transactionIndex(id)
	if idx < 0 {
		return false, nil
	}
	if patch.IsEmpty() {
		return true, nil
	}

	updated, err := patch.Apply(l.transactions[idx])
	if err != nil {
		return false, err
	}

	next := slices.Clone(l.transactions)
	next[idx] = updated
	if err := l.save(ctx, next, l.categories, KeyTransactions); err != nil {
		return false, err
	}

	slog.Debug("updated transaction", "id", id)
	return true, nil
}

// DeleteTransaction removes the transaction with the given id. Deleting an
// unknown id reports false and changes nothing.
func (l *Ledger) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.transactionIndex(id)
	if idx < 0 {
		return false, nil
	}

	next := slices.Delete(slices.Clone(l.transactions), idx, idx+1)
	if err := l.save(ctx, next, l.categories, KeyTransactions); err != nil {
		return false, err
	}

	slog.Debug("deleted transaction", "id", id)
	return true, nil
}

// AddCategory creates a category. Names are trimmed and must be unique
// regardless of case.
func (l *Ledger) AddCategory(ctx context.Context, draft model.CategoryDraft) (model.Category, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return model.Category{}, err
	}
	for _, existing := range l.categories {
		if model.SameName(existing.Name, draft.Name) {
			return model.Category{}, fmt.Errorf("%w: %q", model.ErrDuplicateCategory, existing.Name)
		}
	}

	cat := model.Category{
		ID:   l.nextCatID,
		Name: draft.Name,
		Type: draft.Type,
	}
	next := append(slices.Clone(l.categories), cat)
	if err := l.save(ctx, l.transactions, next, KeyCategories); err != nil {
		return model.Category{}, err
	}
	l.nextCatID++

	slog.Info("created new category", "id", cat.ID, "name", cat.Name, "type", cat.Type)
	return cat, nil
}

// DeleteCategory removes the category with the given id according to the
// ledger's delete policy. Under PolicyProtect a category still named by a
// transaction is refused with model.ErrCategoryInUse. Under PolicyBlank
// those transactions lose their category.
func (l *Ledger) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.categoryIndex(id)
	if idx < 0 {
		return false, nil
	}
	cat := l.categories[idx]
	inUse := l.usage(cat.Name)

	nextCats := slices.Delete(slices.Clone(l.categories), idx, idx+1)

	if inUse == 0 {
		if err := l.save(ctx, l.transactions, nextCats, KeyCategories); err != nil {
			return false, err
		}
		slog.Info("deleted category", "id", id, "name", cat.Name)
		return true, nil
	}

	if l.policy != PolicyBlank {
		return false, fmt.Errorf("%w: %q is used by %d transaction(s)", model.ErrCategoryInUse, cat.Name, inUse)
	}

	nextTxns := slices.Clone(l.transactions)
	for i := range nextTxns {
		if nextTxns[i].Category == cat.Name {
			nextTxns[i].Category = ""
		}
	}
	if err := l.save(ctx, nextTxns, nextCats, KeyTransactions, KeyCategories); err != nil {
		return false, err
	}

	slog.Info("deleted category",
		"id", id,
		"name", cat.Name,
		"cleared_transactions", inUse)
	return true, nil
}
