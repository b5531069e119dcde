package main

import (
	"fmt"
	"net/http"

	"github.com/Sonoda-Arito/reception-queue-server/pkg/config"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/infra"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Server struct {
	application *Application
	server      *http.Server
	logger      *zap.SugaredLogger
}

func ProvideServer(cfg *config.Config, application *Application, handler *Handler, loggerFactory *infra.LoggerFactory) *Server {
	logger := loggerFactory.Create("Server").Sugar()

	e := echo.New()
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogRequestID: true,
		LogStatus:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Infof("%v %v id[%v] status[%v] latency[%vms]", v.Method, v.URI, v.RequestID, v.Status, v.Latency.Milliseconds())
			return nil
		},
	}))

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "reception queue server\n")
	})

	e.PUT("/debug", func(c echo.Context) error {
		infra.LoggerLevel.SetLevel(zapcore.DebugLevel)
		logger.Info("debug logging enabled")
		return c.NoContent(http.StatusOK)
	})

	e.DELETE("/debug", func(c echo.Context) error {
		infra.LoggerLevel.SetLevel(zapcore.InfoLevel)
		logger.Info("debug logging disabled")
		return c.NoContent(http.StatusOK)
	})

	e.POST("/services", handler.CreateService)
	e.GET("/services", handler.ListServices)
	e.POST("/tickets", handler.RegisterTicket)
	e.GET("/tickets/:id", handler.GetTicket)
	e.DELETE("/tickets/:id", handler.CancelTicket)
	e.GET("/queues/:service_id", handler.QueueDetail)
	e.POST("/admin/next/:service_id", handler.CallNext, adminAuth(cfg))
	e.GET("/stats", handler.Stats)
	e.GET("/ws/queues/:service_id", application.HandleWs)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return &Server{
		application: application,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%v", cfg.ServerPort),
			Handler: e,
		},
		logger: logger,
	}
}

func (s *Server) Run() {
	s.logger.Infof("server running application")
	s.application.Run()

	s.logger.Infof("server starts listening on addr[%v]", s.server.Addr)
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		s.logger.Error(err)
	}
}
