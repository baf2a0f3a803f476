// Package tui implements the interactive ledger dashboard.
package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/tui/themes"
)

// View is the collection shown in the table.
type View int

const (
	ViewTransactions View = iota
	ViewCategories
)

func (v View) String() string {
	if v == ViewCategories {
		return "Categories"
	}
	return "Transactions"
}

// Ledger is the part of the ledger the dashboard reads and mutates.
type Ledger interface {
	Transactions() []model.Transaction
	Categories() []model.Category
	CategoryUsage(id int64) int
	Summary() model.Summary
	DeleteTransaction(ctx context.Context, id int64) (bool, error)
	DeleteCategory(ctx context.Context, id int64) (bool, error)
}

// chrome is the number of lines around the table.
const chrome = 10

// Model holds the dashboard state.
type Model struct {
	ctx       context.Context
	ledger    Ledger
	lastError error
	theme     themes.Theme
	keymap    KeyMap
	help      help.Model
	table     table.Model
	summary   model.Summary
	currency  string
	status    string
	width     int
	height    int
	view      View
	quitting  bool
}

// New creates a dashboard over l.
func New(ctx context.Context, l Ledger, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	t := table.New(
		table.WithFocused(true),
		table.WithHeight(max(cfg.Height-chrome, 3)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(cfg.Theme.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = cfg.Theme.Selected
	t.SetStyles(s)

	m := Model{
		ctx:      ctx,
		ledger:   l,
		theme:    cfg.Theme,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		table:    t,
		currency: cfg.Currency,
		width:    cfg.Width,
		height:   cfg.Height,
		view:     ViewTransactions,
	}
	m.refresh()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(m.height-chrome, 3))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keymap.SwitchView):
			if m.view == ViewTransactions {
				m.view = ViewCategories
			} else {
				m.view = ViewTransactions
			}
			m.status = ""
			m.lastError = nil
			m.table.SetCursor(0)
			m.refresh()
			return m, nil

		case key.Matches(msg, m.keymap.Delete):
			return m, m.deleteSelected()

		case key.Matches(msg, m.keymap.Refresh):
			m.refresh()
			return m, nil

		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case deletedMsg:
		m.handleDeleted(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// selectedID returns the id in the first column of the highlighted row.
func (m Model) selectedID() (int64, bool) {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (m Model) deleteSelected() tea.Cmd {
	id, ok := m.selectedID()
	if !ok {
		return nil
	}

	ctx, l, view := m.ctx, m.ledger, m.view
	return func() tea.Msg {
		var (
			deleted bool
			err     error
		)
		if view == ViewCategories {
			deleted, err = l.DeleteCategory(ctx, id)
		} else {
			deleted, err = l.DeleteTransaction(ctx, id)
		}
		return deletedMsg{view: view, id: id, ok: deleted, err: err}
	}
}

func (m *Model) handleDeleted(msg deletedMsg) {
	noun := "transaction"
	if msg.view == ViewCategories {
		noun = "category"
	}

	switch {
	case msg.err != nil:
		m.lastError = msg.err
		m.status = ""
	case !msg.ok:
		m.lastError = nil
		m.status = fmt.Sprintf("%s #%d no longer exists", noun, msg.id)
	default:
		m.lastError = nil
		m.status = fmt.Sprintf("Deleted %s #%d", noun, msg.id)
	}
	m.refresh()
}

// refresh reloads the summary and the rows of the current view.
func (m *Model) refresh() {
	m.summary = m.ledger.Summary()

	var (
		columns []table.Column
		rows    []table.Row
	)
	if m.view == ViewCategories {
		columns, rows = m.categoryTable()
	} else {
		columns, rows = m.transactionTable()
	}

	// Rows must never be shorter than the columns being rendered.
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
	m.table.SetRows(rows)
	switch cursor := m.table.Cursor(); {
	case len(rows) == 0:
	case cursor < 0:
		m.table.SetCursor(0)
	case cursor >= len(rows):
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m Model) transactionTable() ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Type", Width: 8},
		{Title: "Category", Width: 18},
		{Title: "Amount", Width: 14},
		{Title: "Date", Width: 22},
	}

	txns := m.ledger.Transactions()
	rows := make([]table.Row, 0, len(txns))
	for _, txn := range txns {
		category := txn.Category
		if category == "" {
			category = "-"
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(txn.ID, 10),
			txn.Type.String(),
			category,
			cli.FormatMoney(m.currency, txn.Amount.Value()),
			txn.Date,
		})
	}
	return columns, rows
}

func (m Model) categoryTable() ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 24},
		{Title: "Type", Width: 8},
		{Title: "Used", Width: 6},
	}

	cats := m.ledger.Categories()
	rows := make([]table.Row, 0, len(cats))
	for _, cat := range cats {
		rows = append(rows, table.Row{
			strconv.FormatInt(cat.ID, 10),
			cat.Name,
			cat.Type.String(),
			strconv.Itoa(m.ledger.CategoryUsage(cat.ID)),
		})
	}
	return columns, rows
}
