package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage income and expense categories",
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories and how many transactions use each",
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, _, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			cats := l.Categories()
			if typeFlag != "" {
				typ, err := parseType(typeFlag)
				if err != nil {
					return err
				}
				cats = l.CategoriesByType(typ)
			}

			return cli.WriteCategories(cmd.OutOrStdout(), cats, l.CategoryUsage)
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "only show income or expense categories")
	return cmd
}

func addCategoryCmd() *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := parseType(typeFlag)
			if err != nil {
				return err
			}

			l, _, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			cat, err := l.AddCategory(cmd.Context(), model.CategoryDraft{Name: args[0], Type: typ})
			if err != nil {
				return userError(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s category %q (id %d)", cat.Type, cat.Name, cat.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "category type (income, expense)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a category",
		Long: `Delete a category by id.

With the default "protect" policy a category that transactions still use cannot
be deleted. Set ledger.delete_policy to "blank" to delete it anyway and clear
the category of those transactions.`,
		Args: cobra.ExactArgs(1),
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

			inUse := l.CategoryUsage(id)
			ok, err := l.DeleteCategory(cmd.Context(), id)
			if err != nil {
				return userError(err)
			}
			if !ok {
				printNotFound(cmd.OutOrStdout(), "category", id)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category #%d", id)))
			if inUse > 0 && l.Policy() == ledger.PolicyBlank {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(fmt.Sprintf("Cleared the category of %d transaction(s)", inUse)))
			}
			return nil
		},
	}
}
