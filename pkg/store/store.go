package store

import (
	"context"
	"time"
)

// TicketStore is plain CRUD over services and tickets, no queue
// rules. The queue engine layers the state machine on top and is the
// only writer. All reads return copies taken as a consistent snapshot.
type TicketStore interface {
	// CreateService fails with ErrServiceExists if the name is taken.
	CreateService(ctx context.Context, name, description string) (Service, error)
	GetService(ctx context.Context, id int64) (Service, error)
	// ListServices returns all services ordered by id ascending.
	ListServices(ctx context.Context) ([]Service, error)

	CreateTicket(ctx context.Context, serviceId int64, name, code string, createdAt time.Time) (Ticket, error)
	GetTicket(ctx context.Context, id int64) (Ticket, error)
	// DeleteTicket fails with ErrTicketNotFound if the id is unknown.
	DeleteTicket(ctx context.Context, id int64) error
	// ListTickets returns every ticket of a service, called ones
	// included, ordered by created_at then id ascending.
	ListTickets(ctx context.Context, serviceId int64) ([]Ticket, error)
	// MarkCalled stamps called/called_at on a ticket.
	MarkCalled(ctx context.Context, id int64, calledAt time.Time) (Ticket, error)
}
