// Package repository holds the linked, in-memory NEO database.
package repository

import (
	"github.com/okian/neodb/internal/domain/dedupe"
	"github.com/okian/neodb/pkg/logger"
)

// Option applies a configuration option to the Database.
type Option func(*Database)

// WithLogger sets the logger used to report linking results.
func WithLogger(l logger.Logger) Option {
	return func(db *Database) {
		if l != nil {
			db.logger = l
		}
	}
}

// WithDuplicateTracker sets the tracker used to detect repeated designations.
func WithDuplicateTracker(t *dedupe.Tracker) Option {
	return func(db *Database) {
		if t != nil {
			db.duplicates = t
		}
	}
}
