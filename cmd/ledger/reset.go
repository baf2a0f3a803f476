package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

func resetCmd() *cobra.Command {
	var (
		force        bool
		noCheckpoint bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all transactions and restore the default categories",
		Long: `Reset removes every transaction and every category you added, leaving the
ledger as it was on first use. A checkpoint is saved first unless
--no-checkpoint is given; bring the data back with 'ledger checkpoint restore'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if !force {
				fmt.Fprintf(out, "This will delete %d transaction(s) and %d categories.\n",
					len(s.ledger.Transactions()), len(s.ledger.Categories()))
				if !confirm(cmd.InOrStdin(), out) {
					fmt.Fprintln(out, "Reset canceled.")
					return nil
				}
			}

			if !noCheckpoint {
				manager, err := s.checkpoints()
				switch {
				case errors.Is(err, storage.ErrCheckpointUnsupported):
					slog.Debug("skipping checkpoint", "backend", s.cfg.Backend)
				case err != nil:
					return err
				default:
					info, err := manager.AutoCheckpoint(ctx, "reset")
					if err != nil {
						return err
					}
					fmt.Fprintln(out, cli.FormatInfo("Saved checkpoint "+info.ID))
				}
			}

			if err := s.ledger.Reset(ctx); err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess("Ledger reset"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	cmd.Flags().BoolVar(&noCheckpoint, "no-checkpoint", false, "do not save a checkpoint first")
	return cmd
}
