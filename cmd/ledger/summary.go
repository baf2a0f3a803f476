package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show totals and per-category breakdowns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, cfg, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderSummary(l.Summary(), cfg.Currency))
			fmt.Fprintln(out)
			if err := cli.WriteBreakdown(out, "Income by category", l.Breakdown(model.TypeIncome), cfg.Currency); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return cli.WriteBreakdown(out, "Expenses by category", l.Breakdown(model.TypeExpense), cfg.Currency)
		},
	}
}
