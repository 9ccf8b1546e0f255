package cmd

import (
	"fmt"
	"os"

	"autoparts-storefront/config"
	"autoparts-storefront/logging"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Auto parts storefront server and quick order tools",
	Long: `storefront serves the auto parts storefront API: quick order (single lookup,
CSV upload and paste), session carts and wishlists, saved quotes and order history.

Configuration comes from an optional YAML file (--config) and environment
variables, with a .env file loaded in development.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Logging.Level = logLevel
		}
		if _, err := logging.Init(c.Logging.Level, c.Logging.Format); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(quickOrderCmd)
}
