// Package commands implements addrctl, the operator CLI for the address
// finder: ad-hoc lookups, a local lookup service stub and address book
// inspection.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/addressbook/internal"
)

var (
	logLevel string
	logger   *slog.Logger
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "addrctl",
		Short:        "Address finder tooling",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = internal.NewLogger(os.Stderr, "dev", logLevel)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(lookupCmd(), stubCmd(), entriesCmd(), migrateCmd())
	return root
}
