package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vmail/internal/accounts"
)

func newForwardCommand(ctx *commandContext) *cobra.Command {
	forwardCmd := &cobra.Command{
		Use:   "forward",
		Short: "Manage mail forwards",
	}

	addCmd := &cobra.Command{
		Use:   "add <domain> <source> <destination>",
		Short: "Forward mail for source to destination",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *accounts.Store) error {
				fwd, err := store.CreateForward(cmd.Context(), args[0], args[1], args[2])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added forward %d: %s -> %s\n", fwd.ID, fwd.Source, fwd.Destination)
				return nil
			})
		},
	}

	listCmd := &cobra.Command{
		Use:   "list [domain]",
		Short: "List forwards, optionally for one domain",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var domain string
			if len(args) == 1 {
				domain = args[0]
			}
			return ctx.withStore(func(store *accounts.Store) error {
				forwards, err := store.ListForwards(cmd.Context(), domain)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(forwards) == 0 {
					fmt.Fprintln(stdout, "No forwards")
					return nil
				}
				rows := make([][]string, 0, len(forwards))
				for _, f := range forwards {
					rows = append(rows, []string{strconv.FormatInt(f.ID, 10), f.Source, f.Destination})
				}
				fmt.Fprint(stdout, renderTable(
					[]string{"ID", "Source", "Destination"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a forward by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid forward id %q", args[0])
			}
			return ctx.withStore(func(store *accounts.Store) error {
				if err := store.DeleteForward(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted forward %d\n", id)
				return nil
			})
		},
	}

	forwardCmd.AddCommand(addCmd, listCmd, deleteCmd)
	return forwardCmd
}
