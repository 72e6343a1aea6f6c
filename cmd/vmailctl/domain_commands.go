package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vmail/internal/accounts"
)

func newDomainCommand(ctx *commandContext) *cobra.Command {
	domainCmd := &cobra.Command{
		Use:   "domain",
		Short: "Manage hosted domains",
	}

	addCmd := &cobra.Command{
		Use:   "add <domain>",
		Short: "Add a hosted domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *accounts.Store) error {
				domain, err := store.CreateDomain(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added domain %s\n", domain.Name)
				return nil
			})
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List hosted domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *accounts.Store) error {
				domains, err := store.ListDomains(cmd.Context())
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(domains) == 0 {
					fmt.Fprintln(stdout, "No domains")
					return nil
				}
				rows := make([][]string, 0, len(domains))
				for _, d := range domains {
					rows = append(rows, []string{
						d.Name,
						d.Package,
						strconv.FormatInt(d.Quota, 10),
						d.CreatedAt.Format("2006-01-02"),
					})
				}
				fmt.Fprint(stdout, renderTable(
					[]string{"Domain", "Package", "Quota", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	var pkg string
	var quota int64
	quotaCmd := &cobra.Command{
		Use:   "quota <domain>",
		Short: "Set a domain's package and quota",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *accounts.Store) error {
				if err := store.SetDomainQuota(cmd.Context(), args[0], pkg, quota); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated domain %s\n", accounts.NormalizeDomain(args[0]))
				return nil
			})
		},
	}
	quotaCmd.Flags().StringVar(&pkg, "package", "", "Hosting package name")
	quotaCmd.Flags().Int64Var(&quota, "quota", 0, "Domain quota in bytes")

	deleteCmd := &cobra.Command{
		Use:   "delete <domain>",
		Short: "Delete a domain with its users and forwards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *accounts.Store) error {
				if err := store.DeleteDomain(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted domain %s\n", accounts.NormalizeDomain(args[0]))
				return nil
			})
		},
	}

	domainCmd.AddCommand(addCmd, listCmd, quotaCmd, deleteCmd)
	return domainCmd
}
