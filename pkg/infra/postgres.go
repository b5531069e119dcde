package infra

import (
	"context"

	"github.com/Sonoda-Arito/reception-queue-server/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProvidePgxPool returns nil when no postgres dsn is configured, in
// which case the in-memory store is used instead.
func ProvidePgxPool(cfg *config.Config, loggerFactory *LoggerFactory) (*pgxpool.Pool, error) {
	logger := loggerFactory.Create("PgxPool").Sugar()
	if cfg.PostgresDSN == "" {
		logger.Infof("no postgres dsn configured, using in-memory store")
		return nil, nil
	}

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		logger.Errorf("cannot create pgx pool %v", err)
		return nil, err
	}

	logger.Infof("postgres pool created")
	return pool, nil
}
