package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/Sonoda-Arito/reception-queue-server/pkg/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

// Store is the postgres-backed ticket store for deployments that
// want the queue to survive a server restart.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InitSchema creates the two tables if they are missing. Called once
// on startup, safe to call again.
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS services (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS tickets (
			id         BIGSERIAL PRIMARY KEY,
			code       TEXT NOT NULL,
			name       TEXT NOT NULL,
			service_id BIGINT NOT NULL REFERENCES services(id),
			called     BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			called_at  TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS tickets_service_order
			ON tickets (service_id, created_at, id);
	`)
	return err
}

func (s *Store) CreateService(ctx context.Context, name, description string) (store.Service, error) {
	var service store.Service
	row := s.pool.QueryRow(ctx, `
		INSERT INTO services (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at
	`, name, description)

	if err := row.Scan(&service.Id, &service.Name, &service.Description, &service.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return store.Service{}, store.ErrServiceExists
		}
		return store.Service{}, err
	}
	return service, nil
}

func (s *Store) GetService(ctx context.Context, id int64) (store.Service, error) {
	var service store.Service
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at FROM services WHERE id = $1
	`, id)

	if err := row.Scan(&service.Id, &service.Name, &service.Description, &service.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Service{}, store.ErrServiceNotFound
		}
		return store.Service{}, err
	}
	return service, nil
}

func (s *Store) ListServices(ctx context.Context) ([]store.Service, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, created_at FROM services ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := make([]store.Service, 0)
	for rows.Next() {
		var service store.Service
		if err := rows.Scan(&service.Id, &service.Name, &service.Description, &service.CreatedAt); err != nil {
			return nil, err
		}
		services = append(services, service)
	}
	return services, rows.Err()
}

func (s *Store) CreateTicket(ctx context.Context, serviceId int64, name, code string, createdAt time.Time) (store.Ticket, error) {
	if _, err := s.GetService(ctx, serviceId); err != nil {
		return store.Ticket{}, err
	}

	var ticket store.Ticket
	row := s.pool.QueryRow(ctx, `
		INSERT INTO tickets (code, name, service_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, code, name, service_id, called, created_at, called_at
	`, code, name, serviceId, createdAt)

	if err := scanTicket(row, &ticket); err != nil {
		return store.Ticket{}, err
	}
	return ticket, nil
}

func (s *Store) GetTicket(ctx context.Context, id int64) (store.Ticket, error) {
	var ticket store.Ticket
	row := s.pool.QueryRow(ctx, `
		SELECT id, code, name, service_id, called, created_at, called_at
		FROM tickets WHERE id = $1
	`, id)

	if err := scanTicket(row, &ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Ticket{}, store.ErrTicketNotFound
		}
		return store.Ticket{}, err
	}
	return ticket, nil
}

func (s *Store) DeleteTicket(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrTicketNotFound
	}
	return nil
}

func (s *Store) ListTickets(ctx context.Context, serviceId int64) ([]store.Ticket, error) {
	if _, err := s.GetService(ctx, serviceId); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, service_id, called, created_at, called_at
		FROM tickets WHERE service_id = $1
		ORDER BY created_at, id
	`, serviceId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]store.Ticket, 0)
	for rows.Next() {
		var ticket store.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

func (s *Store) MarkCalled(ctx context.Context, id int64, calledAt time.Time) (store.Ticket, error) {
	var ticket store.Ticket
	row := s.pool.QueryRow(ctx, `
		UPDATE tickets SET called = TRUE, called_at = $2
		WHERE id = $1
		RETURNING id, code, name, service_id, called, created_at, called_at
	`, id, calledAt)

	if err := scanTicket(row, &ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Ticket{}, store.ErrTicketNotFound
		}
		return store.Ticket{}, err
	}
	return ticket, nil
}

func scanTicket(row pgx.Row, ticket *store.Ticket) error {
	return row.Scan(&ticket.Id, &ticket.Code, &ticket.Name, &ticket.ServiceId,
		&ticket.Called, &ticket.CreatedAt, &ticket.CalledAt)
}
