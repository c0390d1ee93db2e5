package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/feral-file/ff-sales-indexer/internal/config"
	"github.com/feral-file/ff-sales-indexer/internal/logger"
	"github.com/feral-file/ff-sales-indexer/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the sales tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		config.ChdirRepoRoot()
		cfg, err := config.LoadSalesIndexerConfig(configFile, envPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := logger.Initialize(logger.Config{Debug: cfg.Debug}); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if cfg.Store.Backend != config.StoreBackendPostgres {
			logger.InfoCtx(ctx, "Nothing to migrate", zap.String("backend", cfg.Store.Backend))
			return nil
		}

		db, err := openDatabase(ctx, cfg.Database, cfg.Debug)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err == nil {
			defer sqlDB.Close()
		}

		return store.Migrate(ctx, db)
	},
}
