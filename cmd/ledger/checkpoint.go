package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
)

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage ledger checkpoints",
		Long: `Create, list, restore, and delete copies of the ledger database.

Checkpoints are kept in a "checkpoints" directory next to the database. One is
taken automatically before 'ledger reset' and before every restore.`,
		Example: `  # Save the ledger before a big import
  ledger checkpoint create --tag pre-2024-import

  # Go back to it
  ledger checkpoint restore pre-2024-import`,
	}

	cmd.AddCommand(createCheckpointCmd())
	cmd.AddCommand(listCheckpointsCmd())
	cmd.AddCommand(restoreCheckpointCmd())
	cmd.AddCommand(deleteCheckpointCmd())

	return cmd
}

func createCheckpointCmd() *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Save a checkpoint of the ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			manager, err := s.checkpoints()
			if err != nil {
				return err
			}

			info, err := manager.Create(cmd.Context(), tag, description)
			if err != nil {
				return userError(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created checkpoint %s (%s)",
				info.ID, formatFileSize(info.FileSize))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "checkpoint name (generated if empty)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "what the checkpoint is for")

	return cmd
}

func listCheckpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List checkpoints, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			manager, err := s.checkpoints()
			if err != nil {
				return err
			}

			checkpoints, err := manager.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(checkpoints) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("No checkpoints yet."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, strings.Join([]string{
				cli.TableHeaderStyle.Render("NAME"),
				cli.TableHeaderStyle.Render("CREATED"),
				cli.TableHeaderStyle.Render("SIZE"),
				cli.TableHeaderStyle.Render("TYPE"),
				cli.TableHeaderStyle.Render("DESCRIPTION"),
			}, "\t"))

			for _, cp := range checkpoints {
				kind := "manual"
				if cp.IsAuto {
					kind = "auto"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					cp.ID,
					formatRelativeTime(cp.CreatedAt),
					formatFileSize(cp.FileSize),
					kind,
					cp.Description,
				)
			}

			return w.Flush()
		},
	}
}

func restoreCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <checkpoint>",
		Short: "Replace the ledger with a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			manager, err := s.checkpoints()
			if err != nil {
				return err
			}

			info, err := manager.Get(ctx, id)
			if err != nil {
				return userError(err)
			}

			out := cmd.OutOrStdout()
			if !force {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("This will replace your ledger with checkpoint %s.", id)))
				fmt.Fprintf(out, "  Created: %s\n", info.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				if info.Description != "" {
					fmt.Fprintf(out, "  Description: %s\n", info.Description)
				}
				if !confirm(cmd.InOrStdin(), out) {
					fmt.Fprintln(out, "Restore canceled.")
					return nil
				}
			}

			backup, err := manager.AutoCheckpoint(ctx, "restore")
			if err != nil {
				return err
			}
			if err := manager.Restore(ctx, id); err != nil {
				return userError(err)
			}
			if err := s.ledger.Init(ctx); err != nil {
				return userError(err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Restored checkpoint %s: %d transaction(s) and %d categories",
				id, len(s.ledger.Transactions()), len(s.ledger.Categories()))))
			fmt.Fprintln(out, cli.FormatInfo("The previous ledger was saved as "+backup.ID))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}

func deleteCheckpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <checkpoint>",
		Aliases: []string{"rm"},
		Short:   "Delete a checkpoint",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			manager, err := s.checkpoints()
			if err != nil {
				return err
			}

			if err := manager.Delete(cmd.Context(), args[0]); err != nil {
				return userError(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted checkpoint "+args[0]))
			return nil
		},
	}
}

// confirm asks a yes/no question on out and reads the answer from in.
// Anything but y or Y is a no.
func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "\nAre you sure you want to continue? [y/N]: ")

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	answer := strings.TrimSpace(response)
	return answer == "y" || answer == "Y"
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t time.Time) string {
	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		if minutes := int(duration.Minutes()); minutes > 1 {
			return fmt.Sprintf("%d minutes ago", minutes)
		}
		return "1 minute ago"
	case duration < 24*time.Hour:
		if hours := int(duration.Hours()); hours > 1 {
			return fmt.Sprintf("%d hours ago", hours)
		}
		return "1 hour ago"
	default:
		return t.Local().Format("2006-01-02 15:04")
	}
}
