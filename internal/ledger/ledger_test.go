package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
	"github.com/Veraticus/spice-ledger/internal/testutil"
	"github.com/Veraticus/spice-ledger/internal/testutil/categories"
)

func ptr[T any](v T) *T {
	return &v
}

func TestOpen_EmptyStoreUsesDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)

	assert.Empty(t, db.Ledger.Transactions())
	assert.Equal(t, model.DefaultCategories(), db.Ledger.Categories())
	assert.Equal(t, ledger.PolicyProtect, db.Ledger.Policy())
}

func TestOpen_LegacyData(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Set(ctx, ledger.KeyTransactions,
		`[{"id":1710000000000,"type":"expense","category":"Food","amount":250,"date":"3/15/2024, 10:30:00 AM"}]`))

	l, err := ledger.Open(ctx, store, ledger.WithClock(testutil.Clock))
	require.NoError(t, err)

	txns := l.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, model.Amount("250"), txns[0].Amount)
	assert.Equal(t, "3/15/2024, 10:30:00 AM", txns[0].Date)
	assert.Equal(t, model.DefaultCategories(), l.Categories(), "missing categories key falls back to defaults")

	added, err := l.AddTransaction(ctx, model.TransactionDraft{Type: model.TypeIncome, Category: "Salary", Amount: "10"})
	require.NoError(t, err)
	assert.Equal(t, int64(1710000000001), added.ID)
}

func TestOpen_CorruptData(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Set(ctx, ledger.KeyCategories, `{not json`))

	_, err := ledger.Open(ctx, store)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrCorruptData))
}

func TestOpen_DuplicateIDsAreRenumbered(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Set(ctx, ledger.KeyTransactions,
		`[{"id":5,"type":"expense","category":"Food","amount":"1","date":"d"},`+
			`{"id":5,"type":"expense","category":"Food","amount":"2","date":"d"}]`))

	l, err := ledger.Open(ctx, store, ledger.WithClock(testutil.Clock))
	require.NoError(t, err)

	txns := l.Transactions()
	require.Len(t, txns, 2)
	assert.Equal(t, int64(5), txns[0].ID)
	assert.Equal(t, int64(6), txns[1].ID)

	deleted, err := l.DeleteTransaction(ctx, 5)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = l.DeleteTransaction(ctx, 5)
	require.NoError(t, err)
	assert.False(t, deleted, "deleting twice removes only one record")

	remaining := l.Transactions()
	require.Len(t, remaining, 1)
	assert.Equal(t, model.Amount("2"), remaining[0].Amount)

	reopened, err := ledger.Open(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, remaining, reopened.Transactions())

	_, ok, err := store.Get(ctx, ledger.KeyCategories)
	require.NoError(t, err)
	assert.False(t, ok, "only the renumbered collection is written")
}

func TestOpen_InvalidPolicy(t *testing.T) {
	_, err := ledger.Open(context.Background(), storage.NewMemoryStorage(), ledger.WithDeletePolicy("merge"))
	assert.Error(t, err)
}

func TestAddTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	ctx := context.Background()

	drafts := []model.TransactionDraft{
		{Type: model.TypeIncome, Category: "Salary", Amount: "50000"},
		{Type: model.TypeExpense, Category: "Food", Amount: "12.50"},
		{Type: model.TypeExpense, Category: " Transport ", Amount: "0"},
	}
	for i, draft := range drafts {
		txn, err := db.Ledger.AddTransaction(ctx, draft)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), txn.ID)
		assert.Equal(t, "2024-03-15 10:30:00", txn.Date)
	}

	txns := db.Ledger.Transactions()
	require.Len(t, txns, len(drafts))
	assert.Equal(t, model.Amount("12.5"), txns[1].Amount)
	assert.Equal(t, "Transport", txns[2].Category)
}

func TestAddTransaction_InvalidDraft(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		draft model.TransactionDraft
	}{
		{name: "missing category", draft: model.TransactionDraft{Type: model.TypeExpense, Category: "  ", Amount: "5"}},
		{name: "missing amount", draft: model.TransactionDraft{Type: model.TypeExpense, Category: "Food"}},
		{name: "negative amount", draft: model.TransactionDraft{Type: model.TypeExpense, Category: "Food", Amount: "-5"}},
		{name: "unknown type", draft: model.TransactionDraft{Type: "transfer", Category: "Food", Amount: "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Ledger.AddTransaction(ctx, tt.draft)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrInvalidTransaction))
			assert.Empty(t, db.Ledger.Transactions())
		})
	}

	txn := db.MustAddTransaction(model.TypeExpense, "Food", "5")
	assert.Equal(t, int64(1), txn.ID, "rejected drafts must not consume ids")
}

func TestUpdateTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	ctx := context.Background()

	first := db.MustAddTransaction(model.TypeExpense, "Food", "10")
	second := db.MustAddTransaction(model.TypeExpense, "Transport", "20")

	ok, err := db.Ledger.UpdateTransaction(ctx, first.ID, model.TransactionPatch{Amount: ptr("15.75")})
	require.NoError(t, err)
	assert.True(t, ok)

	updated, found := db.Ledger.Transaction(first.ID)
	require.True(t, found)
	assert.Equal(t, model.Amount("15.75"), updated.Amount)
	assert.Equal(t, first.Type, updated.Type)
	assert.Equal(t, first.Category, updated.Category)
	assert.Equal(t, first.Date, updated.Date)

	untouched, _ := db.Ledger.Transaction(second.ID)
	assert.Equal(t, second, untouched)

	ok, err = db.Ledger.UpdateTransaction(ctx, first.ID, model.TransactionPatch{
		Type:     ptr(model.TypeIncome),
		Category: ptr("Freelance"),
	})
	require.NoError(t, err)
	assert.True(t, ok)
	updated, _ = db.Ledger.Transaction(first.ID)
	assert.Equal(t, model.TypeIncome, updated.Type)
	assert.Equal(t, "Freelance", updated.Category)
	assert.Equal(t, model.Amount("15.75"), updated.Amount)
}

func TestUpdateTransaction_UnknownID(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	txn := db.MustAddTransaction(model.TypeExpense, "Food", "10")

	ok, err := db.Ledger.UpdateTransaction(context.Background(), 99, model.TransactionPatch{Amount: ptr("1")})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []model.Transaction{txn}, db.Ledger.Transactions())
}

func TestUpdateTransaction_InvalidPatch(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	txn := db.MustAddTransaction(model.TypeExpense, "Food", "10")

	ok, err := db.Ledger.UpdateTransaction(context.Background(), txn.ID, model.TransactionPatch{
		Category: ptr("Transport"),
		Amount:   ptr("abc"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidTransaction))
	assert.False(t, ok)
	assert.Equal(t, []model.Transaction{txn}, db.Ledger.Transactions())
}

func TestDeleteTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	ctx := context.Background()

	first := db.MustAddTransaction(model.TypeExpense, "Food", "10")
	second := db.MustAddTransaction(model.TypeIncome, "Salary", "100")

	ok, err := db.Ledger.DeleteTransaction(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []model.Transaction{second}, db.Ledger.Transactions())

	ok, err = db.Ledger.DeleteTransaction(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second delete of the same id is a no-op")
	assert.Equal(t, []model.Transaction{second}, db.Ledger.Transactions())

	third := db.MustAddTransaction(model.TypeExpense, "Food", "1")
	assert.Equal(t, int64(3), third.ID, "ids are never reused")
}

func TestAddCategory(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	ctx := context.Background()

	cat, err := db.Ledger.AddCategory(ctx, model.CategoryDraft{Name: "  Rent ", Type: model.TypeExpense})
	require.NoError(t, err)
	assert.Equal(t, model.Category{ID: 5, Name: "Rent", Type: model.TypeExpense}, cat)

	before := db.Ledger.Categories()

	tests := []struct {
		want  error
		name  string
		draft model.CategoryDraft
	}{
		{name: "case-insensitive duplicate", draft: model.CategoryDraft{Name: "food", Type: model.TypeExpense}, want: model.ErrDuplicateCategory},
		{name: "duplicate across types", draft: model.CategoryDraft{Name: "RENT", Type: model.TypeIncome}, want: model.ErrDuplicateCategory},
		{name: "empty name", draft: model.CategoryDraft{Name: "   ", Type: model.TypeIncome}, want: model.ErrEmptyCategoryName},
		{name: "unknown type", draft: model.CategoryDraft{Name: "Bonus", Type: "other"}, want: model.ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Ledger.AddCategory(ctx, tt.draft)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, before, db.Ledger.Categories())
		})
	}
}

func TestCategoriesByType(t *testing.T) {
	db := testutil.SetupTestDB(t, categories.NewBuilder(t).WithFixture(categories.FixtureHousehold))

	income := db.Ledger.CategoriesByType(model.TypeIncome)
	names := make([]string, 0, len(income))
	for _, c := range income {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Salary", "Freelance", "Interest"}, names)
	assert.Len(t, db.Ledger.CategoriesByType(model.TypeExpense), 6)
}

func TestDeleteCategory_Unused(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	ctx := context.Background()

	ok, err := db.Ledger.DeleteCategory(ctx, 4)
	require.NoError(t, err)
	assert.True(t, ok)
	_, found := db.Ledger.Category(4)
	assert.False(t, found)

	ok, err = db.Ledger.DeleteCategory(ctx, 4)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteCategory_ProtectPolicy(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	txn := db.MustAddTransaction(model.TypeExpense, "Food", "10")
	food := db.MustGetCategory(categories.CategoryFood)

	txnsBefore := db.Ledger.Transactions()
	catsBefore := db.Ledger.Categories()

	ok, err := db.Ledger.DeleteCategory(context.Background(), food.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrCategoryInUse))
	assert.False(t, ok)
	assert.Equal(t, txnsBefore, db.Ledger.Transactions())
	assert.Equal(t, catsBefore, db.Ledger.Categories())
	assert.Equal(t, 1, db.Ledger.CategoryUsage(food.ID))

	// Once the transaction is gone the category can be deleted.
	_, err = db.Ledger.DeleteTransaction(context.Background(), txn.ID)
	require.NoError(t, err)
	ok, err = db.Ledger.DeleteCategory(context.Background(), food.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteCategory_BlankPolicy(t *testing.T) {
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Policy: ledger.PolicyBlank})
	food := db.MustGetCategory(categories.CategoryFood)
	used := db.MustAddTransaction(model.TypeExpense, "Food", "10")
	other := db.MustAddTransaction(model.TypeExpense, "Transport", "3")

	ok, err := db.Ledger.DeleteCategory(context.Background(), food.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, found := db.Ledger.Category(food.ID)
	assert.False(t, found)

	blanked, _ := db.Ledger.Transaction(used.ID)
	assert.Equal(t, "", blanked.Category)
	assert.Equal(t, used.Amount, blanked.Amount)
	unchanged, _ := db.Ledger.Transaction(other.ID)
	assert.Equal(t, other, unchanged)

	reloaded := db.Reopen(ledger.WithDeletePolicy(ledger.PolicyBlank))
	assert.Equal(t, db.Ledger.Transactions(), reloaded.Transactions())
	assert.Equal(t, db.Ledger.Categories(), reloaded.Categories())
}

func TestRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t, categories.NewBuilder(t).WithFixture(categories.FixtureHousehold))
	db.MustAddTransaction(model.TypeIncome, "Salary", "50000")
	db.MustAddTransaction(model.TypeExpense, "Rent", "15000.00")
	db.MustAddTransaction(model.TypeExpense, "Groceries", "2350.75")

	reloaded := db.Reopen()
	assert.Equal(t, db.Ledger.Transactions(), reloaded.Transactions())
	assert.Equal(t, db.Ledger.Categories(), reloaded.Categories())

	next, err := reloaded.AddTransaction(context.Background(), model.TransactionDraft{
		Type: model.TypeExpense, Category: "Food", Amount: "1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), next.ID)
}

func TestPersistFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	l, err := ledger.Open(ctx, store, ledger.WithClock(testutil.Clock), ledger.WithDeletePolicy(ledger.PolicyBlank))
	require.NoError(t, err)

	kept, err := l.AddTransaction(ctx, model.TransactionDraft{Type: model.TypeExpense, Category: "Food", Amount: "10"})
	require.NoError(t, err)

	diskFull := errors.New("disk full")
	store.FailWrites(diskFull)

	txnsBefore := l.Transactions()
	catsBefore := l.Categories()

	_, err = l.AddTransaction(ctx, model.TransactionDraft{Type: model.TypeExpense, Category: "Food", Amount: "20"})
	assert.ErrorIs(t, err, diskFull)

	_, err = l.UpdateTransaction(ctx, kept.ID, model.TransactionPatch{Amount: ptr("99")})
	assert.ErrorIs(t, err, diskFull)

	_, err = l.DeleteTransaction(ctx, kept.ID)
	assert.ErrorIs(t, err, diskFull)

	_, err = l.AddCategory(ctx, model.CategoryDraft{Name: "Rent", Type: model.TypeExpense})
	assert.ErrorIs(t, err, diskFull)

	_, err = l.DeleteCategory(ctx, 3)
	assert.ErrorIs(t, err, diskFull)

	assert.Equal(t, txnsBefore, l.Transactions())
	assert.Equal(t, catsBefore, l.Categories())

	store.FailWrites(nil)
	next, err := l.AddTransaction(ctx, model.TransactionDraft{Type: model.TypeExpense, Category: "Food", Amount: "20"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.ID)
}

func TestPersist(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	l, err := ledger.Open(ctx, store)
	require.NoError(t, err)

	_, ok, err := store.Get(ctx, ledger.KeyCategories)
	require.NoError(t, err)
	assert.False(t, ok, "opening does not write")

	require.NoError(t, l.Persist(ctx))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ledger.KeyCategories, ledger.KeyTransactions}, keys)

	value, _, err := store.Get(ctx, ledger.KeyTransactions)
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
}

func TestReset(t *testing.T) {
	db := testutil.SetupTestDB(t, categories.NewBuilder(t).WithExpense(categories.CategoryRent))
	db.MustAddTransaction(model.TypeExpense, "Rent", "100")

	require.NoError(t, db.Ledger.Reset(context.Background()))
	assert.Empty(t, db.Ledger.Transactions())
	assert.Equal(t, model.DefaultCategories(), db.Ledger.Categories())

	reloaded := db.Reopen()
	assert.Empty(t, reloaded.Transactions())
	assert.Equal(t, model.DefaultCategories(), reloaded.Categories())

	txn := db.MustAddTransaction(model.TypeExpense, "Food", "1")
	assert.Equal(t, int64(1), txn.ID)
}

func TestResetFailureLeavesLedgerUnchanged(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	l, err := ledger.Open(ctx, store, ledger.WithClock(testutil.Clock))
	require.NoError(t, err)
	_, err = l.AddTransaction(ctx, model.TransactionDraft{Type: model.TypeExpense, Category: "Food", Amount: "10"})
	require.NoError(t, err)
	require.NoError(t, l.Persist(ctx))

	diskFull := errors.New("disk full")
	store.FailWrites(diskFull)
	txnsBefore := l.Transactions()

	assert.ErrorIs(t, l.Reset(ctx), diskFull)
	assert.Equal(t, txnsBefore, l.Transactions())

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ledger.KeyCategories, ledger.KeyTransactions}, keys, "both collections survive")

	store.FailWrites(nil)
	require.NoError(t, l.Reset(ctx))
	keys, err = store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestParseDeletePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    ledger.DeletePolicy
		wantErr bool
	}{
		{input: "protect", want: ledger.PolicyProtect},
		{input: " BLANK ", want: ledger.PolicyBlank},
		{input: "merge", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ledger.ParseDeletePolicy(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
