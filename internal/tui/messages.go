package tui

// deletedMsg reports the outcome of a delete issued from the dashboard.
type deletedMsg struct {
	err  error
	id   int64
	view View
	ok   bool
}
