package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/riskscope/internal/middleware"
)

func historyCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, replay or delete past analyses",
	}
	cmd.AddCommand(historyListCmd(opts))
	cmd.AddCommand(historyShowCmd(opts))
	cmd.AddCommand(historyDeleteCmd(opts))
	cmd.AddCommand(historyClearCmd(opts))
	return cmd
}

func historyListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, closeFn, err := openSession(cmd.Context(), opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeFn()

			list, err := session.History.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No analysis history yet.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tRISK\tSUMMARY")
			for _, e := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.ID, e.CreatedAt, e.RiskLevel, e.Summary)
			}
			return tw.Flush()
		},
	}
}

func historyShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Replay a stored analysis without contacting the service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := middleware.ValidateEntryID(args[0])
			if err != nil {
				return err
			}
			session, closeFn, err := openSession(cmd.Context(), opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeFn()

			entry, err := session.Replay(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nProject: %s\n", entry.FullInput)
			return nil
		},
	}
}

func historyDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete one stored analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := middleware.ValidateEntryID(args[0])
			if err != nil {
				return err
			}
			session, closeFn, err := openSession(cmd.Context(), opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := session.History.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d\n", id)
			return nil
		},
	}
}

func historyClearCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear history without --yes")
			}
			session, closeFn, err := openSession(cmd.Context(), opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := session.History.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm clearing all history")
	return cmd
}
