// Package ledger owns the transaction and category collections and keeps
// them in sync with the durable store. Every mutation goes through a Ledger,
// and every mutation is written to the store before it becomes visible.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// Store keys.
const (
	KeyTransactions = "transactions"
	KeyCategories   = "categories"
)

// ErrCorruptData is returned when stored collections cannot be decoded.
var ErrCorruptData = errors.New("corrupt ledger data")

// Option configures a Ledger.
type Option func(*Ledger)

// WithDeletePolicy selects what happens to transactions when their category is deleted.
func WithDeletePolicy(p DeletePolicy) Option {
	return func(l *Ledger) {
		l.policy = p
	}
}

// WithClock replaces time.Now for date stamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// Ledger is the state manager for transactions and categories.
type Ledger struct {
	store        service.Storage
	now          func() time.Time
	policy       DeletePolicy
	transactions []model.Transaction
	categories   []model.Category
	nextTxnID    int64
	nextCatID    int64
	mu           sync.Mutex
}

// New creates a ledger over store holding the initial collections: no
// transactions and the default categories. Call Init to load stored data.
func New(store service.Storage, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		now:    time.Now,
		policy: PolicyProtect,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.setState(nil, model.DefaultCategories())
	return l
}

// Open creates a ledger and loads it from store.
func Open(ctx context.Context, store service.Storage, opts ...Option) (*Ledger, error) {
	l := New(store, opts...)
	if err := l.Init(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Init replaces the in-memory collections with the stored ones. A missing
// categories key yields the default categories; a missing transactions key
// yields an empty list.
func (l *Ledger) Init(ctx context.Context) error {
	if !l.policy.IsValid() {
		return fmt.Errorf("invalid delete policy %q", l.policy)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	txns, err := loadCollection[model.Transaction](ctx, l.store, KeyTransactions)
	if err != nil {
		return err
	}
	cats, err := loadCollection[model.Category](ctx, l.store, KeyCategories)
	if err != nil {
		return err
	}
	if cats == nil {
		cats = model.DefaultCategories()
	}

	// Older files can repeat an id. Later repeats get fresh ids so every
	// id names exactly one record.
	var dirty []string
	if n := renumberDuplicates(txns, func(t *model.Transaction) *int64 { return &t.ID }); n > 0 {
		slog.Warn("renumbered duplicate transaction ids", "count", n)
		dirty = append(dirty, KeyTransactions)
	}
	if n := renumberDuplicates(cats, func(c *model.Category) *int64 { return &c.ID }); n > 0 {
		slog.Warn("renumbered duplicate category ids", "count", n)
		dirty = append(dirty, KeyCategories)
	}
	if len(dirty) > 0 {
		if err := l.save(ctx, txns, cats, dirty...); err != nil {
			return err
		}
	}

	l.setState(txns, cats)

	slog.Debug("loaded ledger",
		"transactions", len(l.transactions),
		"categories", len(l.categories),
		"policy", l.policy)
	return nil
}

// Persist writes both collections to the store.
func (l *Ledger) Persist(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.save(ctx, l.transactions, l.categories, KeyTransactions, KeyCategories)
}

// Policy returns the category delete policy in effect.
func (l *Ledger) Policy() DeletePolicy {
	return l.policy
}

// Reset deletes both collections from the store and returns to the initial state.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.DeleteMany(ctx, KeyTransactions, KeyCategories); err != nil {
		return fmt.Errorf("failed to reset ledger: %w", err)
	}
	l.setState(nil, model.DefaultCategories())

	slog.Info("reset ledger")
	return nil
}

// Transactions returns a copy of all transactions in insertion order.
func (l *Ledger) Transactions() []model.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.transactions)
}

// TransactionsByType returns the transactions of type t.
func (l *Ledger) TransactionsByType(t model.TransactionType) []model.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []model.Transaction
	for _, txn := range l.transactions {
		if txn.Type == t {
			out = append(out, txn)
		}
	}
	return out
}

// Transaction returns the transaction with the given id.
func (l *Ledger) Transaction(id int64) (model.Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.transactionIndex(id)
	if idx < 0 {
		return model.Transaction{}, false
	}
	return l.transactions[idx], true
}

// Categories returns a copy of all categories in insertion order.
func (l *Ledger) Categories() []model.Category {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.categories)
}

// CategoriesByType returns the categories of type t.
func (l *Ledger) CategoriesByType(t model.TransactionType) []model.Category {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []model.Category
	for _, cat := range l.categories {
		if cat.Type == t {
			out = append(out, cat)
		}
	}
	return out
}

// Category returns the category with the given id.
func (l *Ledger) Category(id int64) (model.Category, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.categoryIndex(id)
	if idx < 0 {
		return model.Category{}, false
	}
	return l.categories[idx], true
}

// CategoryByName finds a category by name, ignoring case.
func (l *Ledger) CategoryByName(name string) (model.Category, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, cat := range l.categories {
		if model.SameName(cat.Name, name) {
			return cat, true
		}
	}
	return model.Category{}, false
}

// CategoryUsage counts the transactions filed under the category's name.
func (l *Ledger) CategoryUsage(id int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.categoryIndex(id)
	if idx < 0 {
		return 0
	}
	return l.usage(l.categories[idx].Name)
}

// setState installs the collections and recomputes the id counters.
func (l *Ledger) setState(txns []model.Transaction, cats []model.Category) {
	l.transactions = txns
	l.categories = cats

	l.nextTxnID = 1
	for _, txn := range txns {
		if txn.ID >= l.nextTxnID {
			l.nextTxnID = txn.ID + 1
		}
	}
	l.nextCatID = 1
	for _, cat := range cats {
		if cat.ID >= l.nextCatID {
			l.nextCatID = cat.ID + 1
		}
	}
}

// renumberDuplicates gives each repeated id, after its first occurrence, a
// fresh id above the current maximum. It returns how many ids changed.
func renumberDuplicates[T any](items []T, id func(*T) *int64) int {
	next := int64(1)
	for i := range items {
		if v := *id(&items[i]); v >= next {
			next = v + 1
		}
	}

	seen := make(map[int64]struct{}, len(items))
	changed := 0
	for i := range items {
		p := id(&items[i])
		if _, ok := seen[*p]; ok {
			*p = next
			next++
			changed++
		}
		seen[*p] = struct{}{}
	}
	return changed
}

// save writes the named collections and, only once the write succeeded,
// makes them the current state. Must be called with l.mu held.
func (l *Ledger) save(ctx context.Context, txns []model.Transaction, cats []model.Category, keys ...string) error {
	entries := make(map[string]string, len(keys))
	for _, key := range keys {
		var (
			value string
			err   error
		)
		switch key {
		case KeyTransactions:
			value, err = encodeCollection(txns)
		case KeyCategories:
			value, err = encodeCollection(cats)
		default:
			return fmt.Errorf("unknown ledger key %q", key)
		}
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		entries[key] = value
	}

	if err := l.store.SetMany(ctx, entries); err != nil {
		return fmt.Errorf("failed to persist ledger: %w", err)
	}

	l.transactions = txns
	l.categories = cats
	return nil
}

func (l *Ledger) transactionIndex(id int64) int {
	return slices.IndexFunc(l.transactions, func(t model.Transaction) bool { return t.ID == id })
}

func (l *Ledger) categoryIndex(id int64) int {
	return slices.IndexFunc(l.categories, func(c model.Category) bool { return c.ID == id })
}

func (l *Ledger) usage(name string) int {
	count := 0
	for _, txn := range l.transactions {
		if txn.Category == name {
			count++
		}
	}
	return count
}
