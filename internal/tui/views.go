package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spice-ledger/internal/cli"
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.theme.Title.Render(cli.LedgerIcon + " Ledger"),
		m.renderSummary(),
		m.renderTabs(),
		m.table.View(),
		m.renderStatus(),
		m.help.View(m.keymap),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderSummary() string {
	balanceStyle := m.theme.StatusSuccess
	if m.summary.Balance.IsNegative() {
		balanceStyle = m.theme.StatusError
	}

	parts := []string{
		m.theme.Subtitle.Render("Income ") + m.theme.Income.Render(cli.FormatMoney(m.currency, m.summary.TotalIncome)),
		m.theme.Subtitle.Render("Expenses ") + m.theme.Expense.Render(cli.FormatMoney(m.currency, m.summary.TotalExpense)),
		m.theme.Subtitle.Render("Balance ") + balanceStyle.Render(cli.FormatMoney(m.currency, m.summary.Balance)),
	}
	return m.theme.BorderedBox.Render(strings.Join(parts, "   "))
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, 2)
	for _, v := range []View{ViewTransactions, ViewCategories} {
		style := m.theme.InactiveTab
		if v == m.view {
			style = m.theme.ActiveTab
		}
		tabs = append(tabs, style.Render(v.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderStatus() string {
	switch {
	case m.lastError != nil:
		return m.theme.StatusError.Render(cli.ErrorIcon + " " + m.lastError.Error())
	case m.status != "":
		return m.theme.StatusSuccess.Render(cli.SuccessIcon + " " + m.status)
	case len(m.table.Rows()) == 0:
		return m.theme.StatusInfo.Render("Nothing here yet")
	default:
		return ""
	}
}
