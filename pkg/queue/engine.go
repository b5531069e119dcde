package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Sonoda-Arito/reception-queue-server/pkg/config"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/infra"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/store"
	"github.com/labstack/gommon/random"
	"go.uber.org/zap"
)

var (
	ErrEmptyName     = errors.New("name must not be empty")
	ErrAlreadyCalled = errors.New("already called, cannot cancel")
	ErrNoTicket      = errors.New("no one waiting")
)

const ticketCodeLength = 6

// TicketView is a ticket annotated with its live queue position:
// 1-based rank among the waiting tickets of its service, 0 forever
// once called.
type TicketView struct {
	store.Ticket
	Position int `json:"position"`
}

type QueueDetail struct {
	ServiceId   int64        `json:"service_id"`
	ServiceName string       `json:"service_name"`
	Waiting     int          `json:"waiting"`
	Tickets     []TicketView `json:"tickets"`
}

type QueueSummary struct {
	ServiceId   int64  `json:"service_id"`
	ServiceName string `json:"service_name"`
	Waiting     int    `json:"waiting"`
}

// Engine enforces the ticket state machine on top of the store:
// Waiting -> Called (terminal) or Waiting -> Cancelled (deleted).
// Position is never stored, it is recomputed from the waiting set so
// it can't drift.
type Engine struct {
	// Notify carries the service id of every committed mutation.
	// The hub consumes it to push fresh snapshots to subscribers.
	Notify chan int64

	// Serializes the check-then-act mutations across all services.
	// Coarse on purpose, correctness over throughput at event scale.
	mu sync.Mutex

	store  store.TicketStore
	logger *zap.SugaredLogger
}

func ProvideEngine(ticketStore store.TicketStore, cfg *config.Config, loggerFactory *infra.LoggerFactory) *Engine {
	return &Engine{
		Notify: make(chan int64, *cfg.NotifyBufferSize),
		store:  ticketStore,
		logger: loggerFactory.Create("Engine").Sugar(),
	}
}

// CreateService is the only service mutation. Name must be non-empty
// and unique, the store enforces uniqueness.
func (e *Engine) CreateService(ctx context.Context, name, description string) (store.Service, error) {
	if name == "" {
		return store.Service{}, ErrEmptyName
	}

	service, err := e.store.CreateService(ctx, name, description)
	if err != nil {
		return store.Service{}, err
	}
	e.logger.Infof("created service id[%v] name[%v]", service.Id, service.Name)
	return service, nil
}

func (e *Engine) ListServices(ctx context.Context) ([]store.Service, error) {
	return e.store.ListServices(ctx)
}

// Register creates a ticket in Waiting for an existing service and
// returns it with its computed position.
func (e *Engine) Register(ctx context.Context, serviceId int64, name string) (TicketView, error) {
	if name == "" {
		return TicketView{}, ErrEmptyName
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.store.GetService(ctx, serviceId); err != nil {
		return TicketView{}, err
	}

	code := random.String(ticketCodeLength, random.Uppercase, random.Numeric)
	ticket, err := e.store.CreateTicket(ctx, serviceId, name, code, time.Now().UTC())
	if err != nil {
		return TicketView{}, err
	}

	position, err := e.position(ctx, ticket)
	if err != nil {
		return TicketView{}, err
	}

	e.logger.Infof("registered ticket id[%v] code[%v] service[%v] position[%v]", ticket.Id, ticket.Code, serviceId, position)
	e.notifyChange(serviceId)
	return TicketView{Ticket: ticket, Position: position}, nil
}

// Ticket returns a ticket with a freshly computed position.
func (e *Engine) Ticket(ctx context.Context, ticketId int64) (TicketView, error) {
	ticket, err := e.store.GetTicket(ctx, ticketId)
	if err != nil {
		return TicketView{}, err
	}

	position, err := e.position(ctx, ticket)
	if err != nil {
		return TicketView{}, err
	}
	return TicketView{Ticket: ticket, Position: position}, nil
}

// Cancel deletes a waiting ticket. A called ticket can never be
// cancelled, that transition left the waiting set for good.
func (e *Engine) Cancel(ctx context.Context, ticketId int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ticket, err := e.store.GetTicket(ctx, ticketId)
	if err != nil {
		return err
	}
	if ticket.Called {
		return ErrAlreadyCalled
	}

	if err := e.store.DeleteTicket(ctx, ticketId); err != nil {
		return err
	}

	e.logger.Infof("cancelled ticket id[%v] service[%v]", ticket.Id, ticket.ServiceId)
	e.notifyChange(ticket.ServiceId)
	return nil
}

// CallNext flips the earliest-arrived waiting ticket to Called.
// Strict FIFO, this is the only write to called.
func (e *Engine) CallNext(ctx context.Context, serviceId int64) (TicketView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tickets, err := e.store.ListTickets(ctx, serviceId)
	if err != nil {
		return TicketView{}, err
	}

	var next *store.Ticket
	for i := range tickets {
		if !tickets[i].Called {
			next = &tickets[i]
			break
		}
	}
	if next == nil {
		return TicketView{}, ErrNoTicket
	}

	called, err := e.store.MarkCalled(ctx, next.Id, time.Now().UTC())
	if err != nil {
		return TicketView{}, err
	}

	e.logger.Infof("called ticket id[%v] code[%v] service[%v]", called.Id, called.Code, serviceId)
	e.notifyChange(serviceId)
	return TicketView{Ticket: called, Position: 0}, nil
}

// QueueDetail returns every ticket of a service in arrival order,
// called ones included with position 0, for staff visibility.
func (e *Engine) QueueDetail(ctx context.Context, serviceId int64) (QueueDetail, error) {
	service, err := e.store.GetService(ctx, serviceId)
	if err != nil {
		return QueueDetail{}, err
	}

	tickets, err := e.store.ListTickets(ctx, serviceId)
	if err != nil {
		return QueueDetail{}, err
	}

	detail := QueueDetail{
		ServiceId:   service.Id,
		ServiceName: service.Name,
		Tickets:     make([]TicketView, 0, len(tickets)),
	}
	rank := 0
	for _, ticket := range tickets {
		position := 0
		if !ticket.Called {
			rank++
			position = rank
		}
		detail.Tickets = append(detail.Tickets, TicketView{Ticket: ticket, Position: position})
	}
	detail.Waiting = rank
	return detail, nil
}

// Stats returns the waiting count of every service.
func (e *Engine) Stats(ctx context.Context) ([]QueueSummary, error) {
	services, err := e.store.ListServices(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]QueueSummary, 0, len(services))
	for _, service := range services {
		tickets, err := e.store.ListTickets(ctx, service.Id)
		if err != nil {
			return nil, err
		}

		waiting := 0
		for _, ticket := range tickets {
			if !ticket.Called {
				waiting++
			}
		}
		summaries = append(summaries, QueueSummary{
			ServiceId:   service.Id,
			ServiceName: service.Name,
			Waiting:     waiting,
		})
	}
	return summaries, nil
}

// position is the 1-based rank among waiting tickets of the same
// service, 0 once called. O(n) scan, fine at event scale.
func (e *Engine) position(ctx context.Context, ticket store.Ticket) (int, error) {
	if ticket.Called {
		return 0, nil
	}

	tickets, err := e.store.ListTickets(ctx, ticket.ServiceId)
	if err != nil {
		return 0, err
	}

	position := 1
	for _, other := range tickets {
		if other.Id == ticket.Id {
			return position, nil
		}
		if !other.Called {
			position++
		}
	}
	// Cancelled between the ticket read and the list read.
	return 0, store.ErrTicketNotFound
}

// notifyChange never blocks a mutation. If the buffer is full the
// notification is dropped, subscribers catch up on the next change.
func (e *Engine) notifyChange(serviceId int64) {
	select {
	case e.Notify <- serviceId:
	default:
		e.logger.Warnf("notify buffer full, dropping update for service[%v]", serviceId)
	}
}
