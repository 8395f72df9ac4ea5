package repository

import (
	"context"
	"iter"

	"github.com/okian/neodb/internal/domain/dedupe"
	"github.com/okian/neodb/internal/domain/filter"
	"github.com/okian/neodb/internal/domain/model"
	"github.com/okian/neodb/pkg/logger"
	"github.com/okian/neodb/pkg/metrics"
)

// maxReportedDuplicates bounds how many repeated designations are logged.
const maxReportedDuplicates = 20

// Database owns a set of NEOs and close approaches linked to each other.
//
// All linking happens in New. Afterwards the database is read-only and safe
// for concurrent queries.
type Database struct {
	neos       []*model.NearEarthObject
	approaches []*model.CloseApproach
	index      map[string]*model.NearEarthObject
	// order holds each designation once, at the position it was first seen.
	order []string

	duplicates *dedupe.Tracker
	stats      Stats
	logger     logger.Logger
}

var _ Store = (*Database)(nil)

// New indexes neos by designation and links every approach to its NEO.
//
// On a repeated designation the later NEO wins the index; both stay in the
// raw collection. Approaches whose designation matches no NEO are left
// unlinked.
func New(ctx context.Context, neos []*model.NearEarthObject, approaches []*model.CloseApproach, opts ...Option) *Database {
	db := &Database{
		neos:       neos,
		approaches: approaches,
		index:      make(map[string]*model.NearEarthObject, len(neos)),
		order:      make([]string, 0, len(neos)),
		duplicates: dedupe.NewTracker(dedupe.WithMaxDuplicates(maxReportedDuplicates)),
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(db)
	}

	dupCount := 0
	for _, neo := range neos {
		if db.duplicates.SeenAndRecord(ctx, neo.Designation) {
			dupCount++
		}
		if _, ok := db.index[neo.Designation]; !ok {
			db.order = append(db.order, neo.Designation)
		}
		db.index[neo.Designation] = neo
	}

	linked := 0
	for _, ca := range approaches {
		neo, ok := db.index[ca.Designation]
		if !ok {
			continue
		}
		ca.NEO = neo
		neo.Approaches = append(neo.Approaches, ca)
		linked++
	}

	db.stats = Stats{
		NEOs:                  len(neos),
		IndexedNEOs:           len(db.index),
		Approaches:            len(approaches),
		Linked:                linked,
		Unlinked:              len(approaches) - linked,
		DuplicateDesignations: dupCount,
	}

	if dupCount > 0 {
		db.logger.Warn(ctx, "duplicate designations; later records replace earlier ones",
			logger.Int("count", dupCount),
			logger.Any("designations", db.duplicates.Duplicates()),
		)
	}
	db.logger.Info(ctx, "database linked",
		logger.Int("neos", db.stats.NEOs),
		logger.Int("approaches", db.stats.Approaches),
		logger.Int("linked", db.stats.Linked),
		logger.Int("unlinked", db.stats.Unlinked),
	)

	metrics.UpdateDatasetSize(db.stats.IndexedNEOs, db.stats.Approaches)
	metrics.UpdateLinkage(db.stats.Linked, db.stats.Unlinked, db.stats.DuplicateDesignations)

	return db
}

// GetByDesignation returns the NEO indexed under designation.
func (db *Database) GetByDesignation(designation string) (*model.NearEarthObject, bool) {
	neo, ok := db.index[designation]
	return neo, ok
}

// GetByName returns the first indexed NEO whose name matches exactly.
//
// Designations are visited in the order they were first seen; each one
// resolves to the record that won the index. Unnamed NEOs never match.
func (db *Database) GetByName(name string) (*model.NearEarthObject, bool) {
	for _, designation := range db.order {
		neo := db.index[designation]
		if neo.Name != nil && *neo.Name == name {
			return neo, true
		}
	}
	return nil, false
}

// Query lazily yields the approaches matching every filter, in input order.
// With no filters every approach is yielded.
func (db *Database) Query(filters ...filter.Predicate) iter.Seq[*model.CloseApproach] {
	keep := filter.All(filters...)
	return func(yield func(*model.CloseApproach) bool) {
		for _, ca := range db.approaches {
			if !keep(ca) {
				continue
			}
			if !yield(ca) {
				return
			}
		}
	}
}

// Stats returns construction-time counts.
func (db *Database) Stats() Stats {
	return db.stats
}

// NEOs returns every NEO passed to New, duplicates included.
func (db *Database) NEOs() []*model.NearEarthObject {
	return db.neos
}

// Approaches returns every approach passed to New, in input order.
func (db *Database) Approaches() []*model.CloseApproach {
	return db.approaches
}
