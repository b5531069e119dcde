package store

import (
	"context"
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/hashmap"
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
)

// MemoryStore is the default single-node store. Services live in a
// treemap so listing comes out id ascending for free. Tickets of a
// service live in a linkedhashmap: inserts happen in created_at order
// (the engine serializes writes), so insertion order is queue order
// and listing needs no sort.
type MemoryStore struct {
	mu sync.RWMutex

	// Key value: serviceId -> *Service.
	services *treemap.Map

	// Key value: service name -> serviceId.
	serviceNames *hashmap.Map

	// Key value: ticketId -> *Ticket.
	tickets *hashmap.Map

	// Key value: serviceId -> *linkedhashmap.Map of ticketId -> *Ticket.
	ticketsByService *hashmap.Map

	nextServiceId int64
	nextTicketId  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		services:         treemap.NewWith(utils.Int64Comparator),
		serviceNames:     hashmap.New(),
		tickets:          hashmap.New(),
		ticketsByService: hashmap.New(),
	}
}

func (s *MemoryStore) CreateService(ctx context.Context, name, description string) (Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.serviceNames.Get(name); taken {
		return Service{}, ErrServiceExists
	}

	s.nextServiceId++
	service := &Service{
		Id:          s.nextServiceId,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	s.services.Put(service.Id, service)
	s.serviceNames.Put(name, service.Id)
	s.ticketsByService.Put(service.Id, linkedhashmap.New())

	return *service, nil
}

func (s *MemoryStore) GetService(ctx context.Context, id int64) (Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.services.Get(id)
	if !ok {
		return Service{}, ErrServiceNotFound
	}
	return *value.(*Service), nil
}

func (s *MemoryStore) ListServices(ctx context.Context) ([]Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	services := make([]Service, 0, s.services.Size())
	it := s.services.Iterator()
	for it.Begin(); it.Next(); {
		services = append(services, *it.Value().(*Service))
	}
	return services, nil
}

func (s *MemoryStore) CreateTicket(ctx context.Context, serviceId int64, name, code string, createdAt time.Time) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.ticketsByService.Get(serviceId)
	if !ok {
		return Ticket{}, ErrServiceNotFound
	}
	queue := value.(*linkedhashmap.Map)

	s.nextTicketId++
	ticket := &Ticket{
		Id:        s.nextTicketId,
		Code:      code,
		Name:      name,
		ServiceId: serviceId,
		CreatedAt: createdAt,
	}
	s.tickets.Put(ticket.Id, ticket)
	queue.Put(ticket.Id, ticket)

	return *ticket, nil
}

func (s *MemoryStore) GetTicket(ctx context.Context, id int64) (Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.tickets.Get(id)
	if !ok {
		return Ticket{}, ErrTicketNotFound
	}
	return *value.(*Ticket), nil
}

func (s *MemoryStore) DeleteTicket(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.tickets.Get(id)
	if !ok {
		return ErrTicketNotFound
	}
	ticket := value.(*Ticket)

	s.tickets.Remove(id)
	if value, ok := s.ticketsByService.Get(ticket.ServiceId); ok {
		value.(*linkedhashmap.Map).Remove(id)
	}
	return nil
}

func (s *MemoryStore) ListTickets(ctx context.Context, serviceId int64) ([]Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.ticketsByService.Get(serviceId)
	if !ok {
		return nil, ErrServiceNotFound
	}
	queue := value.(*linkedhashmap.Map)

	tickets := make([]Ticket, 0, queue.Size())
	it := queue.Iterator()
	for it.Begin(); it.Next(); {
		tickets = append(tickets, *it.Value().(*Ticket))
	}
	return tickets, nil
}

func (s *MemoryStore) MarkCalled(ctx context.Context, id int64, calledAt time.Time) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.tickets.Get(id)
	if !ok {
		return Ticket{}, ErrTicketNotFound
	}
	ticket := value.(*Ticket)
	ticket.Called = true
	ticket.CalledAt = &calledAt

	return *ticket, nil
}
