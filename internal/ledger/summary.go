package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// Summarize totals income and expense over txns. Amounts that do not parse
// count as zero.
func Summarize(txns []model.Transaction) model.Summary {
	income := decimal.Zero
	expense := decimal.Zero
	for _, txn := range txns {
		switch txn.Type {
		case model.TypeIncome:
			income = income.Add(txn.Amount.Value())
		case model.TypeExpense:
			expense = expense.Add(txn.Amount.Value())
		}
	}
	return model.Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income.Sub(expense),
		Count:        len(txns),
	}
}

// Breakdown sums the transactions of type t per category of type t. The
// result follows category order and leaves out categories with no positive total.
func Breakdown(txns []model.Transaction, cats []model.Category, t model.TransactionType) []model.CategoryTotal {
	var out []model.CategoryTotal
	for _, cat := range cats {
		if cat.Type != t {
			continue
		}
		total := model.CategoryTotal{Name: cat.Name, Type: t, Total: decimal.Zero}
		for _, txn := range txns {
			if txn.Type == t && txn.Category == cat.Name {
				total.Total = total.Total.Add(txn.Amount.Value())
				total.Count++
			}
		}
		if total.Total.IsPositive() {
			out = append(out, total)
		}
	}
	return out
}

// Summary totals the ledger's transactions.
func (l *Ledger) Summary() model.Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Summarize(l.transactions)
}

// Breakdown returns the per-category totals for type t.
func (l *Ledger) Breakdown(t model.TransactionType) []model.CategoryTotal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Breakdown(l.transactions, l.categories, t)
}
