package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pmblueprints/internal/adapter/storage"
	"pmblueprints/internal/config"
	"pmblueprints/pkg/logger"
)

var (
	configPath string
	verbose    bool

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pmbctl",
	Short: "Operational tooling for the PM Blueprints marketplace",
	Long: `pmbctl bundles the operational tasks of the template marketplace:
schema migration, catalog seeding, category cleanup, thumbnail
rendering and asset uploads.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logger.Level
		if verbose {
			level = "debug"
		}
		log, err = logger.NewWithConfig(logger.Config{
			Level:          level,
			Format:         "console",
			OutputPath:     "stdout",
			ServiceName:    "pmbctl",
			ServiceVersion: cfg.Logger.ServiceVersion,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func openDB() (*gorm.DB, error) {
	db, err := gorm.Open(pgdriver.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.NewGormLoggerWithConfig(log, cfg.Logger.SlowQuerySeconds, cfg.Logger.Level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func openStorage(ctx context.Context) (storage.Service, error) {
	client, err := storage.NewS3Client(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}
	return storage.NewS3Service(client, cfg.Storage.Bucket, log), nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing app.env")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(fixCategoriesCmd)
	rootCmd.AddCommand(thumbnailsCmd)
	rootCmd.AddCommand(uploadAssetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
