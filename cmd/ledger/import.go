package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from a snapshot or a bank statement",
	}

	cmd.AddCommand(importJSONCmd())
	cmd.AddCommand(importOFXCmd())

	return cmd
}

func importJSONCmd() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "json <file>",
		Short: "Import a JSON snapshot",
		Long: `Import a snapshot written by 'ledger export'.

By default the snapshot is merged: its transactions are added under new ids
and its categories are added unless one with the same name exists. With
--replace the snapshot replaces everything in the ledger.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return common.NewUserError("cannot open snapshot", err)
			}
			defer f.Close()

			snap, err := ledger.ReadSnapshot(f)
			if err != nil {
				return userError(err)
			}

			l, _, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := l.Import(cmd.Context(), snap, replace)
			if err != nil {
				return userError(err)
			}

			printImportResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "replace the ledger instead of merging")
	return cmd
}

func importOFXCmd() *cobra.Command {
	var (
		incomeCategory  string
		expenseCategory string
		dryRun          bool
	)

	cmd := &cobra.Command{
		Use:   "ofx <file>",
		Short: "Import an OFX/QFX bank or credit card statement",
		Long: `Import the entries of an OFX/QFX statement. Credits are recorded as income
under --income-category and debits as expenses under --expense-category. Each
transaction keeps the date it was posted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return common.NewUserError("cannot open statement", err)
			}
			defer f.Close()

			entries, err := ofx.NewParser().ParseFile(cmd.Context(), f)
			if err != nil {
				return common.NewUserError("cannot read statement", err)
			}

			l, cfg, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			income, err := lookupCategory(l, incomeCategory, model.TypeIncome)
			if err != nil {
				return err
			}
			expense, err := lookupCategory(l, expenseCategory, model.TypeExpense)
			if err != nil {
				return err
			}

			var snap ledger.Snapshot
			for _, entry := range entries {
				draft, ok := ofx.ToDraft(entry, income, expense)
				if !ok {
					slog.Debug("skipping zero amount entry", "fitid", entry.FITID)
					continue
				}
				snap.Transactions = append(snap.Transactions, model.Transaction{
					Type:     draft.Type,
					Category: draft.Category,
					Amount:   model.Amount(draft.Amount),
					Date:     entry.Posted.Local().Format(model.DateLayout),
				})
			}

			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Would import %d of %d entries", len(snap.Transactions), len(entries))))
				return cli.WriteTransactions(cmd.OutOrStdout(), snap.Transactions, cfg.Currency)
			}

			result, err := l.Import(cmd.Context(), snap, false)
			if err != nil {
				return userError(err)
			}
			result.Skipped += len(entries) - len(snap.Transactions)

			printImportResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&incomeCategory, "income-category", "Salary", "category for credits")
	cmd.Flags().StringVar(&expenseCategory, "expense-category", "Food", "category for debits")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be imported without saving")

	return cmd
}

// lookupCategory resolves name to an existing category of type t and
// returns its stored spelling.
func lookupCategory(l *ledger.Ledger, name string, t model.TransactionType) (string, error) {
	cat, ok := l.CategoryByName(name)
	if !ok {
		return "", common.NewUserError(fmt.Sprintf("unknown category %q; add it with 'ledger categories add'", name), common.ErrNotFound)
	}
	if cat.Type != t {
		return "", common.NewUserError(fmt.Sprintf("category %q is an %s category, not %s", cat.Name, cat.Type, t), nil)
	}
	return cat.Name, nil
}

func printImportResult(cmd *cobra.Command, result ledger.ImportResult) {
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d transaction(s) and %d categories",
		result.Transactions, result.Categories)))
	if result.Skipped > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(fmt.Sprintf("Skipped %d record(s)", result.Skipped)))
	}
}
