package main

import (
	"errors"
	"net/http"

	"github.com/Sonoda-Arito/reception-queue-server/pkg/client"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/config"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/infra"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/monitoring"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/queue"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/store"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Application struct {
	config     *config.Config
	hub        *client.Hub
	engine     *queue.Engine
	monitor    *monitoring.Monitor
	wsUpgrader *websocket.Upgrader
	logger     *zap.SugaredLogger
}

func ProvideApplication(cfg *config.Config, hub *client.Hub, engine *queue.Engine, monitor *monitoring.Monitor, loggerFactory *infra.LoggerFactory) *Application {
	return &Application{
		config:     cfg,
		hub:        hub,
		engine:     engine,
		monitor:    monitor,
		wsUpgrader: &websocket.Upgrader{},
		logger:     loggerFactory.Create("Application").Sugar(),
	}
}

func (a *Application) Run() {
	go a.hub.Run()
	go a.monitor.Run()
}

// HandleWs subscribes a visitor display to one service's queue. The
// service is checked before upgrading so an unknown id still gets a
// plain 404.
func (a *Application) HandleWs(c echo.Context) error {
	serviceId, err := paramId(c, "service_id")
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request", "service_id must be an integer")
	}

	if _, err := a.engine.QueueDetail(c.Request().Context(), serviceId); err != nil {
		if errors.Is(err, store.ErrServiceNotFound) {
			return writeError(c, http.StatusNotFound, "service_not_found", "service not found")
		}
		a.logger.Errorf("store failure %v", err)
		return writeError(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}

	conn, err := a.wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	subscriber := client.NewClient(conn, serviceId, a.hub)
	subscriber.Run()
	a.hub.Register(subscriber)

	return nil
}
