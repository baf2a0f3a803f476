package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "/home/tester/.local/share/spice-ledger/ledger.db", cfg.DatabasePath)
	assert.Equal(t, ledger.PolicyProtect, cfg.DeletePolicy)
	assert.Equal(t, "₹", cfg.Currency)
	assert.Equal(t, "default", cfg.Theme)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	v := newViper()
	v.Set("database.backend", "Memory")
	v.Set("ledger.delete_policy", "blank")
	v.Set("display.currency", "$")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, ledger.PolicyBlank, cfg.DeletePolicy)
	assert.Equal(t, "$", cfg.Currency)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		want  error
		setup func(v *viper.Viper)
		name  string
	}{
		{
			name:  "unknown backend",
			setup: func(v *viper.Viper) { v.Set("database.backend", "postgres") },
			want:  common.ErrInvalidConfig,
		},
		{
			name:  "unknown delete policy",
			setup: func(v *viper.Viper) { v.Set("ledger.delete_policy", "cascade") },
			want:  common.ErrInvalidConfig,
		},
		{
			name:  "empty database path",
			setup: func(v *viper.Viper) { v.Set("database.path", "") },
			want:  common.ErrMissingConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			tt.setup(v)
			_, err := Load(v)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		cfg := &Config{Backend: BackendSQLite, DatabasePath: filepath.Join(t.TempDir(), "nested", "ledger.db")}
		store, err := cfg.OpenStorage(ctx)
		require.NoError(t, err)
		defer store.Close()

		_, ok := store.(*storage.SQLiteStorage)
		assert.True(t, ok)
		require.NoError(t, store.Set(ctx, "categories", "[]"))
	})

	t.Run("memory", func(t *testing.T) {
		cfg := &Config{Backend: BackendMemory}
		store, err := cfg.OpenStorage(ctx)
		require.NoError(t, err)
		_, ok := store.(*storage.MemoryStorage)
		assert.True(t, ok)
	})
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("LEDGER_TEST_DIR", "/tmp/ledger")

	tests := []struct {
		input    string
		expected string
	}{
		{input: "", expected: ""},
		{input: "~", expected: home},
		{input: "~/ledger.db", expected: filepath.Join(home, "ledger.db")},
		{input: "$LEDGER_TEST_DIR/ledger.db", expected: "/tmp/ledger/ledger.db"},
		{input: "/abs/ledger.db", expected: "/abs/ledger.db"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandPath(tt.input))
		})
	}
}
