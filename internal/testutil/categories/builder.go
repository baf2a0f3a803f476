// Package categories seeds test ledgers with categories through a fluent
// builder.
//
// Example usage:
//
//	db := testutil.SetupTestDB(t,
//		categories.NewBuilder(t).
//			WithFixture(categories.FixtureHousehold).
//			WithExpense("Custom Category"),
//	)
package categories

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Builder provides a fluent interface for constructing test categories.
type Builder interface {
	// WithCategory adds a single category to the builder.
	WithCategory(name CategoryName, typ model.TransactionType) Builder

	// WithIncome adds income categories.
	WithIncome(names ...CategoryName) Builder

	// WithExpense adds expense categories.
	WithExpense(names ...CategoryName) Builder

	// WithFixture adds categories from a predefined fixture.
	WithFixture(fixture Fixture) Builder

	// Build creates the categories in the ledger and returns them in the
	// order they were added. Categories the ledger already has are reused.
	Build(ctx context.Context, l *ledger.Ledger) (Categories, error)
}

// CategoryName represents a strongly-typed category name.
type CategoryName string

// String returns the string representation of the category name.
func (c CategoryName) String() string {
	return string(c)
}

// Default category names every fresh ledger starts with.
const (
	CategorySalary    CategoryName = "Salary"
	CategoryFreelance CategoryName = "Freelance"
	CategoryFood      CategoryName = "Food"
	CategoryTransport CategoryName = "Transport"
)

// Additional category names used across tests.
const (
	CategoryRent          CategoryName = "Rent"
	CategoryUtilities     CategoryName = "Utilities"
	CategoryGroceries     CategoryName = "Groceries"
	CategoryEntertainment CategoryName = "Entertainment"
	CategoryInterest      CategoryName = "Interest"
	CategoryGifts         CategoryName = "Gifts"
	CategoryTest1         CategoryName = "Test Category 1"
	CategoryTest2         CategoryName = "Test Category 2"
)

// Categories represents a collection of created test categories.
type Categories []model.Category

// Find returns the category with the given name, or nil if not found.
func (c Categories) Find(name CategoryName) *model.Category {
	for i := range c {
		if model.SameName(c[i].Name, name.String()) {
			return &c[i]
		}
	}
	return nil
}

// MustFind returns the category with the given name, or fails the test if not found.
func (c Categories) MustFind(t *testing.T, name CategoryName) model.Category {
	t.Helper()
	cat := c.Find(name)
	if cat == nil {
		t.Fatalf("category %q not found in test data", name)
	}
	return *cat
}

// Names returns all category names as a slice of strings.
func (c Categories) Names() []string {
	names := make([]string, len(c))
	for i, cat := range c {
		names[i] = cat.Name
	}
	return names
}

type entry struct {
	name CategoryName
	typ  model.TransactionType
}

type categoryBuilder struct {
	t       *testing.T
	seen    map[CategoryName]struct{}
	entries []entry
}

// NewBuilder creates a new category builder for the given test.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &categoryBuilder{
		t:    t,
		seen: make(map[CategoryName]struct{}),
	}
}

func (b *categoryBuilder) WithCategory(name CategoryName, typ model.TransactionType) Builder {
	if _, ok := b.seen[name]; ok {
		return b
	}
	b.seen[name] = struct{}{}
	b.entries = append(b.entries, entry{name: name, typ: typ})
	return b
}

func (b *categoryBuilder) WithIncome(names ...CategoryName) Builder {
	for _, name := range names {
		b.WithCategory(name, model.TypeIncome)
	}
	return b
}

func (b *categoryBuilder) WithExpense(names ...CategoryName) Builder {
	for _, name := range names {
		b.WithCategory(name, model.TypeExpense)
	}
	return b
}

func (b *categoryBuilder) WithFixture(fixture Fixture) Builder {
	for _, f := range fixture.Categories() {
		b.WithCategory(f.Name, f.Type)
	}
	return b
}

func (b *categoryBuilder) Build(ctx context.Context, l *ledger.Ledger) (Categories, error) {
	b.t.Helper()

	out := make(Categories, 0, len(b.entries))
	for _, e := range b.entries {
		if existing, ok := l.CategoryByName(e.name.String()); ok {
			out = append(out, existing)
			continue
		}
		cat, err := l.AddCategory(ctx, model.CategoryDraft{Name: e.name.String(), Type: e.typ})
		if err != nil {
			return nil, fmt.Errorf("failed to create category %q: %w", e.name, err)
		}
		out = append(out, cat)
	}
	return out, nil
}
