package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Defaults.
const (
	DefaultDatabasePath = "$HOME/.local/share/spice-ledger/ledger.db"
	DefaultCurrency     = "₹"
)

// Config is the resolved application configuration.
type Config struct {
	Backend      string
	DatabasePath string
	DeletePolicy ledger.DeletePolicy
	Currency     string
	Theme        string
	LogLevel     string
	LogFormat    string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.backend", BackendSQLite)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("ledger.delete_policy", string(ledger.PolicyProtect))
	v.SetDefault("display.currency", DefaultCurrency)
	v.SetDefault("display.theme", "default")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Backend:      strings.ToLower(strings.TrimSpace(v.GetString("database.backend"))),
		DatabasePath: ExpandPath(v.GetString("database.path")),
		Currency:     v.GetString("display.currency"),
		Theme:        v.GetString("display.theme"),
		LogLevel:     v.GetString("logging.level"),
		LogFormat:    v.GetString("logging.format"),
	}

	switch cfg.Backend {
	case "":
		cfg.Backend = BackendSQLite
	case BackendSQLite, BackendMemory:
	default:
		return nil, fmt.Errorf("%w: database.backend %q must be %q or %q",
			common.ErrInvalidConfig, cfg.Backend, BackendSQLite, BackendMemory)
	}

	if cfg.Backend == BackendSQLite && cfg.DatabasePath == "" {
		return nil, fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}

	policy, err := ledger.ParseDeletePolicy(v.GetString("ledger.delete_policy"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	cfg.DeletePolicy = policy

	return cfg, nil
}

// OpenStorage opens and migrates the configured store.
func (c *Config) OpenStorage(ctx context.Context) (service.Storage, error) {
	if c.Backend == BackendMemory {
		return storage.NewMemoryStorage(), nil
	}

	store, err := storage.NewSQLiteStorage(c.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// LedgerOptions returns the ledger options implied by the configuration.
func (c *Config) LedgerOptions() []ledger.Option {
	return []ledger.Option{ledger.WithDeletePolicy(c.DeletePolicy)}
}
