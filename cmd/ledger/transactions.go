package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record and manage transactions",
	}

	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(updateTransactionCmd())
	cmd.AddCommand(deleteTransactionCmd())

	return cmd
}

func addTransactionCmd() *cobra.Command {
	var (
		typeFlag string
		category string
		amount   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new transaction",
		Example: `  ledger tx add --type expense --category Food --amount 12.50
  ledger tx add --type income --category Salary --amount 50000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			typ, err := parseType(typeFlag)
			if err != nil {
				return err
			}

			l, cfg, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			txn, err := l.AddTransaction(cmd.Context(), model.TransactionDraft{
				Type:     typ,
				Category: category,
				Amount:   amount,
			})
			if err != nil {
				return userError(err)
			}

			if _, ok := l.CategoryByName(txn.Category); !ok {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(fmt.Sprintf("Category %q does not exist yet", txn.Category)))
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s #%d: %s %s",
				txn.Type, txn.ID, txn.Category, cli.FormatMoney(cfg.Currency, txn.Amount.Value()))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "transaction type (income, expense)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount, e.g. 12.50")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, cfg, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			txns := l.Transactions()
			if typeFlag != "" {
				typ, err := parseType(typeFlag)
				if err != nil {
					return err
				}
				txns = l.TransactionsByType(typ)
			}

			return cli.WriteTransactions(cmd.OutOrStdout(), txns, cfg.Currency)
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "only show income or expense")
	return cmd
}

func updateTransactionCmd() *cobra.Command {
	var (
		typeFlag string
		category string
		amount   string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the type, category or amount of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var patch model.TransactionPatch
			if cmd.Flags().Changed("type") {
				typ, err := parseType(typeFlag)
				if err != nil {
					return err
				}
				patch.Type = &typ
			}
			if cmd.Flags().Changed("category") {
				patch.Category = &category
			}
			if cmd.Flags().Changed("amount") {
				patch.Amount = &amount
			}
			if patch.IsEmpty() {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing to update; pass --type, --category or --amount"))
				return nil
			}

			l, _, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			ok, err := l.UpdateTransaction(cmd.Context(), id, patch)
			if err != nil {
				return userError(err)
			}
			if !ok {
				printNotFound(cmd.OutOrStdout(), "transaction", id)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated transaction #%d", id)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "new type (income, expense)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category name")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "new amount")

	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			l, _, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			ok, err := l.DeleteTransaction(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				printNotFound(cmd.OutOrStdout(), "transaction", id)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted transaction #%d", id)))
			return nil
		},
	}
}
