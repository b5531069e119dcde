package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCRUD(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	reception, err := s.CreateService(ctx, "Reception", "main desk")
	require.NoError(t, err)
	assert.Equal(t, int64(1), reception.Id)
	assert.Equal(t, "Reception", reception.Name)
	assert.Equal(t, "main desk", reception.Description)
	assert.False(t, reception.CreatedAt.IsZero())

	_, err = s.CreateService(ctx, "Reception", "impostor")
	assert.ErrorIs(t, err, ErrServiceExists)

	info, err := s.CreateService(ctx, "Info", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Id)

	got, err := s.GetService(ctx, reception.Id)
	require.NoError(t, err)
	assert.Equal(t, reception, got)

	_, err = s.GetService(ctx, 404)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	services, err := s.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, reception.Id, services[0].Id)
	assert.Equal(t, info.Id, services[1].Id)
}

func TestTicketCRUD(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	service, err := s.CreateService(ctx, "Reception", "")
	require.NoError(t, err)

	now := time.Now().UTC()
	ticket, err := s.CreateTicket(ctx, service.Id, "Alice", "AB12CD", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ticket.Id)
	assert.Equal(t, "AB12CD", ticket.Code)
	assert.False(t, ticket.Called)
	assert.Nil(t, ticket.CalledAt)

	_, err = s.CreateTicket(ctx, 404, "Bob", "XY34ZW", now)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	got, err := s.GetTicket(ctx, ticket.Id)
	require.NoError(t, err)
	assert.Equal(t, ticket, got)

	_, err = s.GetTicket(ctx, 404)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	require.NoError(t, s.DeleteTicket(ctx, ticket.Id))
	assert.ErrorIs(t, s.DeleteTicket(ctx, ticket.Id), ErrTicketNotFound)

	tickets, err := s.ListTickets(ctx, service.Id)
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestListTicketsKeepsArrivalOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	service, err := s.CreateService(ctx, "Reception", "")
	require.NoError(t, err)

	base := time.Now().UTC()
	names := []string{"a", "b", "c", "d"}
	ids := make([]int64, 0, len(names))
	for i, name := range names {
		ticket, err := s.CreateTicket(ctx, service.Id, name, "CODE", base.Add(time.Duration(i)*time.Millisecond))
		require.NoError(t, err)
		ids = append(ids, ticket.Id)
	}

	// Deleting from the middle must not disturb the order.
	require.NoError(t, s.DeleteTicket(ctx, ids[1]))

	tickets, err := s.ListTickets(ctx, service.Id)
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	assert.Equal(t, []int64{ids[0], ids[2], ids[3]}, []int64{tickets[0].Id, tickets[1].Id, tickets[2].Id})

	_, err = s.ListTickets(ctx, 404)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestMarkCalled(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	service, err := s.CreateService(ctx, "Reception", "")
	require.NoError(t, err)
	ticket, err := s.CreateTicket(ctx, service.Id, "Alice", "CODE", time.Now().UTC())
	require.NoError(t, err)

	calledAt := time.Now().UTC()
	called, err := s.MarkCalled(ctx, ticket.Id, calledAt)
	require.NoError(t, err)
	assert.True(t, called.Called)
	require.NotNil(t, called.CalledAt)
	assert.Equal(t, calledAt, *called.CalledAt)

	// The update is visible through a fresh read.
	got, err := s.GetTicket(ctx, ticket.Id)
	require.NoError(t, err)
	assert.True(t, got.Called)

	_, err = s.MarkCalled(ctx, 404, calledAt)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestReadsReturnCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	service, err := s.CreateService(ctx, "Reception", "")
	require.NoError(t, err)
	ticket, err := s.CreateTicket(ctx, service.Id, "Alice", "CODE", time.Now().UTC())
	require.NoError(t, err)

	got, err := s.GetTicket(ctx, ticket.Id)
	require.NoError(t, err)
	got.Name = "Mallory"

	again, err := s.GetTicket(ctx, ticket.Id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Name)
}
