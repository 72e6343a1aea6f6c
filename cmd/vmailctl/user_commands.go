package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vmail/internal/accounts"
)

func newUserCommand(ctx *commandContext) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage mailbox users",
	}

	var (
		name     string
		password string
		quota    int64
	)
	addCmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Add a mailbox user",
		Long:  "Add a mailbox user. Without --password the password is read from the first line of stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(password, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *accounts.Store) error {
				_, domainName, err := accounts.SplitAddress(args[0])
				if err != nil {
					return err
				}
				domain, err := store.GetDomain(cmd.Context(), domainName)
				if errors.Is(err, accounts.ErrNotFound) {
					return fmt.Errorf("domain %s does not exist (add it with `vmailctl domain add %s`)", domainName, domainName)
				}
				if err != nil {
					return err
				}
				user, err := store.CreateUser(cmd.Context(), accounts.NewUser{
					DomainID: domain.ID,
					Email:    args[0],
					Name:     name,
					Password: secret,
					Quota:    quota,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added user %s\n", user.Email)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "Display name")
	addCmd.Flags().StringVar(&password, "password", "", "Clear text password")
	addCmd.Flags().Int64Var(&quota, "quota", 0, "Mailbox quota in bytes")

	listCmd := &cobra.Command{
		Use:   "list [domain]",
		Short: "List users, optionally for one domain",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var domain string
			if len(args) == 1 {
				domain = args[0]
			}
			return ctx.withStore(func(store *accounts.Store) error {
				users, err := store.ListUsers(cmd.Context(), domain)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(users) == 0 {
					fmt.Fprintln(stdout, "No users")
					return nil
				}
				rows := make([][]string, 0, len(users))
				for _, u := range users {
					rows = append(rows, []string{u.Email, u.Name, strconv.FormatInt(u.Quota, 10), yesNo(u.Enabled)})
				}
				fmt.Fprint(stdout, renderTable(
					[]string{"Email", "Name", "Quota", "Enabled"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	var newPassword string
	passwdCmd := &cobra.Command{
		Use:   "passwd <email>",
		Short: "Change a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(newPassword, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *accounts.Store) error {
				if err := store.SetPassword(cmd.Context(), args[0], secret); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", accounts.NormalizeAddress(args[0]))
				return nil
			})
		},
	}
	passwdCmd.Flags().StringVar(&newPassword, "password", "", "New clear text password")

	enableCmd := newUserToggleCommand(ctx, "enable", "Allow a user to authenticate", true)
	disableCmd := newUserToggleCommand(ctx, "disable", "Reject a user's logins without deleting it", false)

	deleteCmd := &cobra.Command{
		Use:   "delete <email>",
		Short: "Delete a user with its quota and vacation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *accounts.Store) error {
				if err := store.DeleteUser(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", accounts.NormalizeAddress(args[0]))
				return nil
			})
		},
	}

	userCmd.AddCommand(addCmd, listCmd, passwdCmd, enableCmd, disableCmd, deleteCmd)
	return userCmd
}

func newUserToggleCommand(ctx *commandContext, verb, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *accounts.Store) error {
				if err := store.SetEnabled(cmd.Context(), args[0], enabled); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s %sd\n", accounts.NormalizeAddress(args[0]), verb)
				return nil
			})
		},
	}
}
