package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/ledger"
)

func exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all transactions and categories as JSON",
		Long: `Export writes a snapshot of the ledger as JSON to stdout or to --output.
The snapshot can be loaded again with 'ledger import json'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, _, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			snap := l.Export()
			if output == "" {
				return ledger.WriteSnapshot(cmd.OutOrStdout(), snap)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := ledger.WriteSnapshot(f, snap); err != nil {
				_ = f.Close()
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d transaction(s) and %d categories to %s",
				len(snap.Transactions), len(snap.Categories), output)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}
