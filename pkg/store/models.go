package store

import "time"

// Service is a named queue channel visitors register into. Services
// are never deleted, a reception desk lives for the whole event.
type Service struct {
	Id          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Ticket is one visitor's place in a service's queue. CreatedAt
// defines queue order, ties broken by id ascending. Called flips
// false -> true exactly once and never reverses.
type Ticket struct {
	Id        int64      `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	ServiceId int64      `json:"service_id"`
	Called    bool       `json:"called"`
	CreatedAt time.Time  `json:"created_at"`
	CalledAt  *time.Time `json:"called_at,omitempty"`
}
