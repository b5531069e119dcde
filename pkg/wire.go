//go:build wireinject
// +build wireinject

package main

import (
	"github.com/Sonoda-Arito/reception-queue-server/pkg/client"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/config"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/infra"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/monitoring"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/queue"
	"github.com/google/wire"
)

func Setup() (*Server, error) {
	wire.Build(wire.NewSet(
		ProvideServer,
		ProvideApplication,
		ProvideHandler,
		ProvideTicketStore,
		config.ProvideConfig,
		infra.ProvideLoggerFactory,
		infra.ProvideRedisClient,
		infra.ProvidePgxPool,
		queue.ProvideEngine,
		client.ProvideHub,
		monitoring.ProvideMonitor,
	))
	return nil, nil
}
