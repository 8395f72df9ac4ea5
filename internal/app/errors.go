package service

import (
	"errors"

	"github.com/okian/neodb/internal/adapters/repository"
)

var (
	// ErrNotStarted is returned by lookups and queries before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrNotFound is returned when no NEO matches a lookup.
	ErrNotFound = repository.ErrNotFound
	// ErrInvalidLookup is returned when neither a designation nor a name is given.
	ErrInvalidLookup = errors.New("designation or name required")
	// ErrLimitExceeded is returned when a query limit exceeds the configured maximum.
	ErrLimitExceeded = errors.New("limit exceeds maximum")
)
