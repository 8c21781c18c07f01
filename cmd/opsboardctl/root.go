package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"opsboard/internal/cli"
	"opsboard/internal/config"
	applog "opsboard/internal/log"
	"opsboard/internal/settings"
	"opsboard/internal/storage"
)

var (
	dbPath   string
	logLevel string

	cfg    *config.Config
	logger *applog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "opsboardctl",
	Short: "Inspect and configure an opsboard installation",
	Long: `opsboardctl reads and writes the settings store shared with the opsboard server
and prints the dashboard summary from the configured data backend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cli.LoadEnvFile()
		if logLevel == "" {
			logLevel = os.Getenv("LOG_LEVEL")
		}
		logger = cli.SetupLogger(logLevel).WithComponent(applog.ComponentCLI)

		var err error
		cfg, err = cli.LoadAndValidateConfig()
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.SettingsDBPath = dbPath
		}
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "settings database path (default $SETTINGS_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (default $LOG_LEVEL)")
}

// openRegistry opens the settings store and wraps it in a registry. The caller closes
// the returned store.
func openRegistry(restarter settings.Restarter, opts ...settings.Option) (*settings.Registry, *storage.SQLiteStore, error) {
	store, err := cli.OpenSettingsStore(logger.WithComponent(applog.ComponentStorage).Logger, cfg.SettingsDBPath)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]settings.Option{settings.WithLogger(logger.Logger)}, opts...)
	return settings.NewRegistry(store, restarter, opts...), store, nil
}
