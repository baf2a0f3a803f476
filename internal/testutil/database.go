// Package testutil provides fixtures for tests that need a populated ledger.
// It offers a ledger over an isolated store, a fixed clock and helpers for
// seeding transactions.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/storage"
	"github.com/Veraticus/spice-ledger/internal/testutil/categories"
)

// FixedTime is the moment returned by Clock.
var FixedTime = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.Local)

// Clock always returns FixedTime.
func Clock() time.Time {
	return FixedTime
}

// TestDB is a ledger over a throwaway store.
type TestDB struct {
	Storage    service.Storage
	Ledger     *ledger.Ledger
	t          *testing.T
	Categories categories.Categories
}

// SetupTestDB creates a ledger over an in-memory SQLite database, adding
// the given categories on top of the defaults.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		categories.NewBuilder(t).
//			WithFixture(categories.FixtureHousehold),
//	)
func SetupTestDB(t *testing.T, builder categories.Builder) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Categories: builder})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	Categories  categories.Builder
	CustomSetup func(context.Context, *ledger.Ledger) error
	Clock       func() time.Time
	Policy      ledger.DeletePolicy
	// Memory selects storage.MemoryStorage instead of SQLite.
	Memory bool
}

// SetupTestDBWithOptions creates a test ledger with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()
	ctx := context.Background()

	var store service.Storage
	if opts.Memory {
		store = storage.NewMemoryStorage()
	} else {
		sqlite, err := storage.NewSQLiteStorage(":memory:")
		if err != nil {
			t.Fatalf("failed to create test database: %v", err)
		}
		store = sqlite
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	clock := opts.Clock
	if clock == nil {
		clock = Clock
	}
	ledgerOpts := []ledger.Option{ledger.WithClock(clock)}
	if opts.Policy != "" {
		ledgerOpts = append(ledgerOpts, ledger.WithDeletePolicy(opts.Policy))
	}

	l, err := ledger.Open(ctx, store, ledgerOpts...)
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}

	var cats categories.Categories
	if opts.Categories != nil {
		cats, err = opts.Categories.Build(ctx, l)
		if err != nil {
			t.Fatalf("failed to build categories: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, l); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage:    store,
		Ledger:     l,
		Categories: cats,
		t:          t,
	}
}

// MustAddTransaction records a transaction or fails the test.
func (db *TestDB) MustAddTransaction(typ model.TransactionType, category, amount string) model.Transaction {
	db.t.Helper()
	txn, err := db.Ledger.AddTransaction(context.Background(), model.TransactionDraft{
		Type:     typ,
		Category: category,
		Amount:   amount,
	})
	if err != nil {
		db.t.Fatalf("failed to add transaction: %v", err)
	}
	return txn
}

// MustGetCategory returns the category with the given name or fails the test.
func (db *TestDB) MustGetCategory(name categories.CategoryName) model.Category {
	db.t.Helper()
	cat, ok := db.Ledger.CategoryByName(name.String())
	if !ok {
		db.t.Fatalf("category %q not found in ledger", name)
	}
	return cat
}

// Reopen loads a second ledger from the same store.
func (db *TestDB) Reopen(opts ...ledger.Option) *ledger.Ledger {
	db.t.Helper()
	l, err := ledger.Open(context.Background(), db.Storage, append([]ledger.Option{ledger.WithClock(Clock)}, opts...)...)
	if err != nil {
		db.t.Fatalf("failed to reopen ledger: %v", err)
	}
	return l
}
