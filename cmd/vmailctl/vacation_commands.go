package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vmail/internal/accounts"
)

func newVacationCommand(ctx *commandContext) *cobra.Command {
	vacationCmd := &cobra.Command{
		Use:   "vacation",
		Short: "Manage out of office replies",
	}

	var (
		subject  string
		body     string
		bodyFile string
		inactive bool
	)
	setCmd := &cobra.Command{
		Use:   "set <email>",
		Short: "Set a user's vacation message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := body
			if bodyFile != "" {
				data, err := os.ReadFile(bodyFile)
				if err != nil {
					return fmt.Errorf("read body file: %w", err)
				}
				text = string(data)
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("vacation body is required (use --body or --body-file)")
			}
			return ctx.withStore(func(store *accounts.Store) error {
				v, err := store.SetVacation(cmd.Context(), args[0], subject, text, !inactive)
				if err != nil {
					return err
				}
				state := "active"
				if !v.Active {
					state = "inactive"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Vacation for %s is %s\n", v.Email, state)
				return nil
			})
		},
	}
	setCmd.Flags().StringVar(&subject, "subject", "", "Reply subject (defaults to the configured subject)")
	setCmd.Flags().StringVar(&body, "body", "", "Reply body")
	setCmd.Flags().StringVar(&bodyFile, "body-file", "", "Read the reply body from a file")
	setCmd.Flags().BoolVar(&inactive, "inactive", false, "Store the message without enabling it")

	showCmd := &cobra.Command{
		Use:   "show <email>",
		Short: "Show a user's vacation message and who was notified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *accounts.Store) error {
				v, err := store.GetVacation(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Email:   %s\n", v.Email)
				fmt.Fprintf(stdout, "Active:  %s\n", yesNo(v.Active))
				fmt.Fprintf(stdout, "Subject: %s\n", v.Subject)
				fmt.Fprintf(stdout, "\n%s\n", strings.TrimRight(v.Body, "\n"))

				notes, err := store.Notifications(cmd.Context(), v.Email)
				if err != nil {
					return err
				}
				if len(notes) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(notes))
				for _, n := range notes {
					rows = append(rows, []string{n.Notified, n.NotifiedAt.Format("2006-01-02 15:04")})
				}
				fmt.Fprintln(stdout)
				fmt.Fprint(stdout, renderTable([]string{"Notified", "At"}, rows, nil))
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear <email>",
		Short: "Remove a user's vacation message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *accounts.Store) error {
				if err := store.DeleteVacation(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Vacation cleared for %s\n", accounts.NormalizeAddress(args[0]))
				return nil
			})
		},
	}

	vacationCmd.AddCommand(setCmd, showCmd, clearCmd)
	return vacationCmd
}
