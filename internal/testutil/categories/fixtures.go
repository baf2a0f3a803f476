package categories

import "github.com/Veraticus/spice-ledger/internal/model"

// Fixture is a named, predefined set of categories.
type Fixture string

// Available fixtures.
const (
	// FixtureDefault is the set a fresh ledger starts with.
	FixtureDefault Fixture = "default"
	// FixtureHousehold adds typical monthly categories.
	FixtureHousehold Fixture = "household"
	// FixtureTestingOnly holds placeholder names for generic tests.
	FixtureTestingOnly Fixture = "testing"
)

// FixtureCategory is one category in a fixture.
type FixtureCategory struct {
	Name CategoryName
	Type model.TransactionType
}

// Categories returns the categories the fixture defines.
func (f Fixture) Categories() []FixtureCategory {
	switch f {
	case FixtureDefault:
		return []FixtureCategory{
			{CategorySalary, model.TypeIncome},
			{CategoryFreelance, model.TypeIncome},
			{CategoryFood, model.TypeExpense},
			{CategoryTransport, model.TypeExpense},
		}
	case FixtureHousehold:
		return []FixtureCategory{
			{CategoryInterest, model.TypeIncome},
			{CategoryRent, model.TypeExpense},
			{CategoryUtilities, model.TypeExpense},
			{CategoryGroceries, model.TypeExpense},
			{CategoryEntertainment, model.TypeExpense},
		}
	case FixtureTestingOnly:
		return []FixtureCategory{
			{CategoryTest1, model.TypeExpense},
			{CategoryTest2, model.TypeIncome},
		}
	default:
		return nil
	}
}
