package builder

import (
	"context"
	"fmt"

	"github.com/futig/bms-rag/internal/config"
	"github.com/futig/bms-rag/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// openHistoryDB connects to HISTORY_DATABASE_URL and brings the query_history
// schema up to date. The pool is closed again if migrating fails.
func openHistoryDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.HistoryDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse history database URL: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	poolCfg.MinConns = int32(cfg.DBMinConns)
	poolCfg.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolCfg.HealthCheckPeriod = cfg.DBHealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create history pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}

	if err := repository.RunMigrations(cfg.HistoryDatabaseURL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate history database: %w", err)
	}

	logger.Info("history database ready",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
		zap.Int32("max_conns", poolCfg.MaxConns),
		zap.Int32("min_conns", poolCfg.MinConns),
	)

	return pool, nil
}
