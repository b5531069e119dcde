package main

import (
	"context"

	"github.com/Sonoda-Arito/reception-queue-server/pkg/infra"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/store"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/store/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProvideTicketStore picks the postgres store when a pool is
// configured, the in-memory store otherwise.
func ProvideTicketStore(pool *pgxpool.Pool, loggerFactory *infra.LoggerFactory) (store.TicketStore, error) {
	logger := loggerFactory.Create("TicketStore").Sugar()

	if pool == nil {
		logger.Infof("using in-memory ticket store")
		return store.NewMemoryStore(), nil
	}

	postgresStore := postgres.NewStore(pool)
	if err := postgresStore.InitSchema(context.Background()); err != nil {
		logger.Errorf("cannot init postgres schema %v", err)
		return nil, err
	}
	logger.Infof("using postgres ticket store")
	return postgresStore, nil
}
