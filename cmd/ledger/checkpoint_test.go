package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
)

func TestResetCommand(t *testing.T) {
	db := newDBPath(t)
	mustRun(t, db, "categories", "add", "Rent", "-t", "expense")
	mustRun(t, db, "tx", "add", "-t", "expense", "-c", "Rent", "-a", "10")

	out, err := runCLI(t, db, "n\n", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "This will delete 1 transaction(s) and 5 categories.")
	assert.Contains(t, out, "Reset canceled.")
	assert.Contains(t, mustRun(t, db, "tx", "list"), "Rent")

	out, err = runCLI(t, db, "y\n", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved checkpoint auto-reset-")
	assert.Contains(t, out, "Ledger reset")

	assert.Contains(t, mustRun(t, db, "tx", "list"), "No transactions yet")
	assert.NotContains(t, mustRun(t, db, "categories", "list"), "Rent")

	mustRun(t, db, "tx", "add", "-t", "expense", "-c", "Food", "-a", "1")
	out = mustRun(t, db, "reset", "--force", "--no-checkpoint")
	assert.Contains(t, out, "Ledger reset")
	assert.NotContains(t, out, "Saved checkpoint")
}

func TestCheckpointCommands(t *testing.T) {
	db := newDBPath(t)
	mustRun(t, db, "categories", "add", "Rent", "-t", "expense")
	mustRun(t, db, "tx", "add", "-t", "expense", "-c", "Rent", "-a", "1200")

	assert.Contains(t, mustRun(t, db, "checkpoint", "list"), "No checkpoints yet")

	out := mustRun(t, db, "checkpoint", "create", "--tag", "before-reset", "-d", "safety net")
	assert.Contains(t, out, "Created checkpoint before-reset")

	_, err := runCLI(t, db, "", "checkpoint", "create", "--tag", "before-reset")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "already exists")

	mustRun(t, db, "reset", "--force", "--no-checkpoint")
	assert.Contains(t, mustRun(t, db, "tx", "list"), "No transactions yet")

	out, err = runCLI(t, db, "n\n", "checkpoint", "restore", "before-reset")
	require.NoError(t, err)
	assert.Contains(t, out, "safety net")
	assert.Contains(t, out, "Restore canceled.")

	out = mustRun(t, db, "checkpoint", "restore", "before-reset", "--force")
	assert.Contains(t, out, "Restored checkpoint before-reset: 1 transaction(s) and 5 categories")
	assert.Contains(t, out, "The previous ledger was saved as auto-restore-")

	out = mustRun(t, db, "tx", "list")
	assert.Contains(t, out, "Rent")
	assert.Contains(t, out, "₹1200.00")

	out = mustRun(t, db, "checkpoint", "list")
	assert.Contains(t, out, "before-reset")
	assert.Contains(t, out, "manual")
	assert.Contains(t, out, "auto")

	assert.Contains(t, mustRun(t, db, "checkpoint", "delete", "before-reset"), "Deleted checkpoint before-reset")
	_, err = runCLI(t, db, "", "checkpoint", "restore", "before-reset", "--force")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "checkpoint not found")
}

func TestCheckpointNeedsSQLite(t *testing.T) {
	_, err := runCLI(t, newDBPath(t), "", "--backend", "memory", "checkpoint", "list")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "checkpoints need the sqlite backend")

	out := mustRun(t, newDBPath(t), "--backend", "memory", "reset", "--force")
	assert.Contains(t, out, "Ledger reset")
}
