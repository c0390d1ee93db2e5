package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/feral-file/ff-sales-indexer/internal/adapter"
	"github.com/feral-file/ff-sales-indexer/internal/config"
	"github.com/feral-file/ff-sales-indexer/internal/logger"
	"github.com/feral-file/ff-sales-indexer/internal/store"
)

// openDatabase connects to postgres and configures the connection pool
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := store.ConfigureConnectionPool(db, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Connected to database", zap.String("host", cfg.Host), zap.String("dbname", cfg.DBName))
	return db, nil
}

// openStore opens the configured entity store backend. Postgres schemas are migrated when migrate is set.
func openStore(ctx context.Context, cfg *config.SalesIndexerConfig, jsonAdapter adapter.JSON, migrate bool) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		db, err := openDatabase(ctx, cfg.Database, cfg.Debug)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := store.Migrate(ctx, db); err != nil {
				return nil, err
			}
		}
		return store.NewPGStore(db), nil

	case config.StoreBackendKV:
		s, err := store.NewBadgerKVStore(cfg.Store.KVPath, jsonAdapter)
		if err != nil {
			return nil, err
		}
		logger.InfoCtx(ctx, "Opened key-value store", zap.String("path", cfg.Store.KVPath))
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}
