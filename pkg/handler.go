package main

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/Sonoda-Arito/reception-queue-server/pkg/config"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/infra"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/monitoring"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/queue"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/store"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Handler struct {
	engine *queue.Engine
	logger *zap.SugaredLogger
}

func ProvideHandler(engine *queue.Engine, loggerFactory *infra.LoggerFactory) *Handler {
	return &Handler{
		engine: engine,
		logger: loggerFactory.Create("Handler").Sugar(),
	}
}

type createServiceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type registerTicketRequest struct {
	Name      string `json:"name"`
	ServiceId int64  `json:"service_id"`
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) CreateService(c echo.Context) error {
	var req createServiceRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
	}

	service, err := h.engine.CreateService(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return h.writeEngineError(c, err)
	}
	return c.JSON(http.StatusCreated, service)
}

func (h *Handler) ListServices(c echo.Context) error {
	services, err := h.engine.ListServices(c.Request().Context())
	if err != nil {
		return h.writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, services)
}

func (h *Handler) RegisterTicket(c echo.Context) error {
	var req registerTicketRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
	}

	ticket, err := h.engine.Register(c.Request().Context(), req.ServiceId, req.Name)
	if err != nil {
		monitoring.RecordOperation("register", "error")
		return h.writeEngineError(c, err)
	}
	monitoring.RecordOperation("register", "ok")
	return c.JSON(http.StatusCreated, ticket)
}

func (h *Handler) GetTicket(c echo.Context) error {
	ticketId, err := paramId(c, "id")
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request", "id must be an integer")
	}

	ticket, err := h.engine.Ticket(c.Request().Context(), ticketId)
	if err != nil {
		return h.writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

func (h *Handler) CancelTicket(c echo.Context) error {
	ticketId, err := paramId(c, "id")
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request", "id must be an integer")
	}

	if err := h.engine.Cancel(c.Request().Context(), ticketId); err != nil {
		monitoring.RecordOperation("cancel", "error")
		return h.writeEngineError(c, err)
	}
	monitoring.RecordOperation("cancel", "ok")
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) QueueDetail(c echo.Context) error {
	serviceId, err := paramId(c, "service_id")
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request", "service_id must be an integer")
	}

	detail, err := h.engine.QueueDetail(c.Request().Context(), serviceId)
	if err != nil {
		return h.writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) CallNext(c echo.Context) error {
	serviceId, err := paramId(c, "service_id")
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request", "service_id must be an integer")
	}

	ticket, err := h.engine.CallNext(c.Request().Context(), serviceId)
	if err != nil {
		monitoring.RecordOperation("call_next", "error")
		return h.writeEngineError(c, err)
	}
	monitoring.RecordOperation("call_next", "ok")
	return c.JSON(http.StatusOK, ticket)
}

func (h *Handler) Stats(c echo.Context) error {
	summaries, err := h.engine.Stats(c.Request().Context())
	if err != nil {
		return h.writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, summaries)
}

// adminAuth guards call-next with the shared admin secret. Exact
// match on the X-API-Key header, no users, no rotation. Good enough
// for a booth behind a staff desk, nothing more.
func adminAuth(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get("X-API-Key")
			if cfg.AdminAPIKey == "" || key == "" ||
				subtle.ConstantTimeCompare([]byte(key), []byte(cfg.AdminAPIKey)) != 1 {
				return writeError(c, http.StatusUnauthorized, "unauthorized", "invalid API key")
			}
			return next(c)
		}
	}
}

func (h *Handler) writeEngineError(c echo.Context, err error) error {
	status, code, message := mapError(err)
	if status == http.StatusInternalServerError {
		h.logger.Errorf("store failure %v", err)
	}
	return writeError(c, status, code, message)
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrServiceNotFound):
		return http.StatusNotFound, "service_not_found", "service not found"
	case errors.Is(err, store.ErrTicketNotFound):
		return http.StatusNotFound, "ticket_not_found", "ticket not found"
	case errors.Is(err, store.ErrServiceExists):
		return http.StatusConflict, "service_exists", "service already exists"
	case errors.Is(err, queue.ErrEmptyName):
		return http.StatusBadRequest, "invalid_request", "name must not be empty"
	case errors.Is(err, queue.ErrAlreadyCalled):
		return http.StatusBadRequest, "already_called", "already called, cannot cancel"
	case errors.Is(err, queue.ErrNoTicket):
		return http.StatusNotFound, "no_one_waiting", "no one waiting"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, errorResponse{
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func paramId(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
