package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/tui"
	"github.com/Veraticus/spice-ledger/internal/tui/themes"
)

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "tui",
		Aliases: []string{"dashboard"},
		Short:   "Open the interactive dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, cfg, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			theme, ok := themes.ByName(cfg.Theme)
			if !ok {
				return common.NewUserError(fmt.Sprintf("unknown theme %q", cfg.Theme), common.ErrInvalidConfig)
			}

			return tui.Run(cmd.Context(), l,
				tui.WithCurrency(cfg.Currency),
				tui.WithTheme(theme))
		},
	}
}
