package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/model"
)

var hundred = decimal.NewFromInt(100)

// FormatMoney renders d with two decimals after the currency symbol.
func FormatMoney(currency string, d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + currency + d.Abs().StringFixed(2)
	}
	return currency + d.StringFixed(2)
}

// TypeStyle returns the style used for amounts of type t.
func TypeStyle(t model.TransactionType) lipgloss.Style {
	if t == model.TypeIncome {
		return IncomeStyle
	}
	return ExpenseStyle
}

// RenderSummary renders the income, expense and balance totals in a box.
func RenderSummary(s model.Summary, currency string) string {
	balanceStyle := SuccessStyle
	if s.Balance.IsNegative() {
		balanceStyle = ErrorStyle
	}

	lines := []string{
		fmt.Sprintf("Total Income:   %s", IncomeStyle.Render(FormatMoney(currency, s.TotalIncome))),
		fmt.Sprintf("Total Expenses: %s", ExpenseStyle.Render(FormatMoney(currency, s.TotalExpense))),
		fmt.Sprintf("Balance:        %s", balanceStyle.Render(FormatMoney(currency, s.Balance))),
		SubtleStyle.Render(fmt.Sprintf("%d transaction(s)", s.Count)),
	}
	return RenderBox(ChartIcon+" Summary", strings.Join(lines, "\n"))
}

// WriteTransactions writes txns as an aligned table.
func WriteTransactions(out io.Writer, txns []model.Transaction, currency string) error {
	if len(txns) == 0 {
		_, err := fmt.Fprintln(out, InfoStyle.Render("No transactions yet. Use 'ledger tx add' to record one."))
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		TableHeaderStyle.Render("ID"),
		TableHeaderStyle.Render("Type"),
		TableHeaderStyle.Render("Category"),
		TableHeaderStyle.Render("Amount"),
		TableHeaderStyle.Render("Date"))

	for _, txn := range txns {
		category := txn.Category
		if category == "" {
			category = SubtleStyle.Render("(none)")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			txn.ID,
			TypeStyle(txn.Type).Render(txn.Type.String()),
			category,
			FormatMoney(currency, txn.Amount.Value()),
			txn.Date)
	}
	return w.Flush()
}

// WriteCategories writes cats as an aligned table. usage, when non-nil,
// supplies the number of transactions filed under each category.
func WriteCategories(out io.Writer, cats []model.Category, usage func(id int64) int) error {
	if len(cats) == 0 {
		_, err := fmt.Fprintln(out, InfoStyle.Render("No categories found. Use 'ledger categories add' to create one."))
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if usage != nil {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			TableHeaderStyle.Render("ID"),
			TableHeaderStyle.Render("Name"),
			TableHeaderStyle.Render("Type"),
			TableHeaderStyle.Render("Used"))
	} else {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			TableHeaderStyle.Render("ID"),
			TableHeaderStyle.Render("Name"),
			TableHeaderStyle.Render("Type"))
	}

	for _, cat := range cats {
		typ := TypeStyle(cat.Type).Render(cat.Type.String())
		if usage != nil {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", cat.ID, cat.Name, typ, usage(cat.ID))
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", cat.ID, cat.Name, typ)
	}
	return w.Flush()
}

// WriteBreakdown writes per-category totals with each category's share of
// the listed total, rounded to whole percent.
func WriteBreakdown(out io.Writer, title string, totals []model.CategoryTotal, currency string) error {
	if _, err := fmt.Fprintln(out, TitleStyle.Render(title)); err != nil {
		return err
	}
	if len(totals) == 0 {
		_, err := fmt.Fprintln(out, SubtleStyle.Render("  nothing recorded"))
		return err
	}

	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t.Total)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, t := range totals {
		share := t.Total.Div(sum).Mul(hundred).Round(0)
		fmt.Fprintf(w, "  %s\t%s\t%s%%\t%d\n",
			t.Name,
			TypeStyle(t.Type).Render(FormatMoney(currency, t.Total)),
			share.String(),
			t.Count)
	}
	return w.Flush()
}
