// Command vmaild runs the vmail account daemon.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vmail/internal/config"
	"vmail/internal/daemonrun"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configFlag string
		socketFlag string
		opts       daemonrun.Options
	)

	cmd := &cobra.Command{
		Use:           "vmaild",
		Short:         "vmail account daemon",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(strings.TrimSpace(configFlag))
			if err != nil {
				return err
			}
			if socket := strings.TrimSpace(socketFlag); socket != "" {
				expanded, err := config.ExpandPath(socket)
				if err != nil {
					return fmt.Errorf("resolve socket path: %w", err)
				}
				cfg.Paths.Socket = expanded
			}
			return daemonrun.Run(cmd.Context(), cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&socketFlag, "socket", "", "Path to the vmaild socket")
	flags.StringVarP(&opts.LogLevel, "loglevel", "L", "", "Log level (debug, info, warn, error, critical)")
	flags.StringVarP(&opts.LogFile, "log-file", "l", "", "Write logs to this file instead of the configured one")
	flags.StringVar(&opts.LogFormat, "log-format", "", "Log format (short, full, json, or a template)")
	return cmd
}
