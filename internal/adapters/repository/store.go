// Package repository holds the linked, in-memory NEO database.
package repository

import (
	"iter"

	"github.com/okian/neodb/internal/domain/filter"
	"github.com/okian/neodb/internal/domain/model"
)

// Stats summarises what the database linked at construction.
type Stats struct {
	NEOs                  int `json:"neos"`
	IndexedNEOs           int `json:"indexed_neos"`
	Approaches            int `json:"approaches"`
	Linked                int `json:"linked"`
	Unlinked              int `json:"unlinked"`
	DuplicateDesignations int `json:"duplicate_designations"`
}

// Store provides read access to linked NEOs and their close approaches.
type Store interface {
	// GetByDesignation returns the NEO with this primary designation.
	GetByDesignation(designation string) (*model.NearEarthObject, bool)

	// GetByName returns the first NEO whose name equals name.
	GetByName(name string) (*model.NearEarthObject, bool)

	// Query yields, in input order, the approaches matching every filter.
	Query(filters ...filter.Predicate) iter.Seq[*model.CloseApproach]

	// Stats returns construction-time counts.
	Stats() Stats
}
