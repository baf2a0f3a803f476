package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

// session is a loaded ledger together with the store behind it.
type session struct {
	ledger *ledger.Ledger
	cfg    *config.Config
	store  service.Storage
}

// Close closes the store.
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		slog.Warn("failed to close storage", "error", err)
	}
}

// checkpoints returns the checkpoint manager of a SQLite-backed session.
func (s *session) checkpoints() (*storage.CheckpointManager, error) {
	sqliteStore, ok := s.store.(*storage.SQLiteStorage)
	if !ok {
		return nil, common.NewUserError("checkpoints need the sqlite backend", storage.ErrCheckpointUnsupported)
	}
	cm, err := sqliteStore.Checkpoints()
	if err != nil {
		return nil, fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	return cm, nil
}

// openSession loads the configuration, opens the configured store and
// loads the ledger from it.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("invalid configuration", err)
	}

	store, err := cfg.OpenStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	l, err := ledger.Open(ctx, store, cfg.LedgerOptions()...)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	return &session{ledger: l, cfg: cfg, store: store}, nil
}

// openLedger is openSession for commands that only need the ledger. The
// returned cleanup closes the store.
func openLedger(ctx context.Context) (*ledger.Ledger, *config.Config, func(), error) {
	s, err := openSession(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return s.ledger, s.cfg, s.Close, nil
}

// parseID parses a record id given on the command line.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewUserError(fmt.Sprintf("invalid id %q: ids are positive integers", arg), nil)
	}
	return id, nil
}

// parseType parses a --type flag value.
func parseType(value string) (model.TransactionType, error) {
	t, err := model.ParseTransactionType(value)
	if err != nil {
		return "", common.NewUserError("type must be income or expense", err)
	}
	return t, nil
}

// userError turns validation failures into messages for the user and
// passes every other error through.
func userError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrInvalidTransaction):
		return common.NewUserError("invalid transaction", err)
	case errors.Is(err, model.ErrEmptyCategoryName),
		errors.Is(err, model.ErrDuplicateCategory),
		errors.Is(err, model.ErrInvalidCategory):
		return common.NewUserError("invalid category", err)
	case errors.Is(err, model.ErrCategoryInUse):
		return common.NewUserError("cannot delete category", err)
	case errors.Is(err, ledger.ErrCorruptData):
		return common.NewUserError("unreadable ledger data", err)
	case errors.Is(err, storage.ErrCheckpointNotFound),
		errors.Is(err, storage.ErrCheckpointExists),
		errors.Is(err, storage.ErrInvalidCheckpointID),
		errors.Is(err, storage.ErrCheckpointCorrupted):
		return common.NewUserError("cannot use checkpoint", err)
	default:
		return err
	}
}

// printNotFound reports an unknown id. Not-found is not an error.
func printNotFound(out io.Writer, noun string, id int64) {
	fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("No %s with id %d", noun, id)))
}
