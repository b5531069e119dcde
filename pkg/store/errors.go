package store

import "errors"

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrServiceExists   = errors.New("service already exists")
	ErrTicketNotFound  = errors.New("ticket not found")
)
