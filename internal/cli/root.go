package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	// LogLevel overrides LOG_LEVEL when set.
	LogLevel string
}

// NewRootCommand creates the root command for the stockwise CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "stockwise",
		Short: "Stockwise - inventory and sales for small shops",
		Long: `Stockwise keeps a product catalog with stock levels, records sales
that take stock out as they are entered, and reports on low stock and revenue.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error); overrides LOG_LEVEL")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}
