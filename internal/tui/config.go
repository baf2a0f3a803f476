package tui

import "github.com/Veraticus/spice-ledger/internal/tui/themes"

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Currency string
	Width    int
	Height   int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:    themes.Default,
		Currency: "₹",
		Width:    100,
		Height:   30,
	}
}

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithCurrency sets the symbol printed before amounts.
func WithCurrency(symbol string) Option {
	return func(c *Config) {
		c.Currency = symbol
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
