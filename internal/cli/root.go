package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eleven-am/bistro/internal/config"
	"github.com/eleven-am/bistro/internal/logger"
	"github.com/eleven-am/bistro/pkg/bistro"
)

// Global configuration variables
var (
	configFile     string
	databaseURL    string
	storageBackend string
	debug          bool
	verbose        bool

	bistroConfig *config.Config
	configErr    error
)

func NewRootCommand() *cobra.Command {
	bistroConfig, configErr = nil, nil

	rootCmd := &cobra.Command{
		Use:   "bistro",
		Short: "Bistro - restaurant GraphQL service",
		Long: `Bistro serves categories, menu items and reservations over a single GraphQL
endpoint, backed by PostgreSQL or an in-memory store.

Bistro provides tools for:
- Serving the GraphQL API and playground
- Running queries and mutations from the command line
- Printing the composed schema
- Applying the embedded database migrations`,
		Version:       bistro.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			bistroConfig, configErr = config.Load(configFile)
			if configErr != nil {
				if verbose {
					cmd.PrintErrf("Warning: Failed to load config file: %v\n", configErr)
				}
				return
			}

			if databaseURL != "" {
				bistroConfig.Database.URL = databaseURL
				if storageBackend == "" {
					storageBackend = config.BackendPostgres
				}
			}
			if storageBackend != "" {
				bistroConfig.Storage.Backend = storageBackend
			}
			if configErr = bistroConfig.Validate(); configErr != nil {
				if verbose {
					cmd.PrintErrf("Warning: Invalid configuration: %v\n", configErr)
				}
				return
			}

			level := bistroConfig.Log.Level
			format := bistroConfig.Log.Format
			if debug {
				level = "debug"
				format = "console"
			}
			if _, err := logger.Init(level, format); err != nil {
				cmd.PrintErrf("Warning: %v\n", err)
				return
			}
			logger.CLI().Debug("configuration loaded",
				zap.String("path", configFile),
				zap.String("backend", bistroConfig.Storage.Backend))
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: bistro.yaml)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "url", "", "database connection URL")
	rootCmd.PersistentFlags().StringVar(&storageBackend, "storage", "", "storage backend (postgres, memory)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// loadedConfig returns the configuration PersistentPreRun produced.
func loadedConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", configErr)
	}
	if bistroConfig == nil {
		return nil, errors.New("configuration not loaded")
	}
	return bistroConfig, nil
}
