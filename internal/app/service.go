// Package service loads the NEO dataset and answers the lookups and queries
// used by the CLI and the HTTP API.
package service

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/okian/neodb/internal/adapters/extract"
	"github.com/okian/neodb/internal/adapters/repository"
	"github.com/okian/neodb/internal/domain/filter"
	"github.com/okian/neodb/internal/domain/model"
	"github.com/okian/neodb/pkg/logger"
	"github.com/okian/neodb/pkg/metrics"
)

// Default source paths.
const (
	DefaultNEOPath      = "data/neos.csv"
	DefaultApproachPath = "data/cad.json"
)

// Lookup kinds reported to metrics.
const (
	lookupByDesignation = "designation"
	lookupByName        = "name"
)

// Service owns the linked database for the lifetime of the process.
type Service struct {
	mu sync.RWMutex

	store repository.Store

	// Configuration
	neoPath      string
	approachPath string
	maxLimit     int
	strict       bool

	// State
	started  bool
	loadedAt time.Time
	loadTime time.Duration

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		neoPath:      DefaultNEOPath,
		approachPath: DefaultApproachPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads both source files and links them, unless a store was supplied.
// Calling Start on a started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.GetOrNop()
	}

	begin := time.Now()
	if s.store == nil {
		s.logger.Info(ctx, "loading neo dataset...",
			logger.String("neoFile", s.neoPath),
			logger.String("cadFile", s.approachPath),
		)
		ld := extract.NewLoader(
			extract.WithLogger(s.logger.Named("extract")),
			extract.WithStrict(s.strict),
		)
		neos, err := ld.NEOFile(ctx, s.neoPath)
		if err != nil {
			metrics.RecordLoadError(extract.SourceNEOs)
			return fmt.Errorf("load neos: %w", err)
		}
		approaches, err := ld.ApproachFile(ctx, s.approachPath)
		if err != nil {
			metrics.RecordLoadError(extract.SourceApproaches)
			return fmt.Errorf("load approaches: %w", err)
		}
		s.store = repository.New(ctx, neos, approaches,
			repository.WithLogger(s.logger.Named("repository")),
		)
	}

	s.loadedAt = time.Now()
	s.loadTime = s.loadedAt.Sub(begin)
	s.started = true

	st := s.store.Stats()
	s.logger.Info(ctx, "neo service started",
		logger.Int("neos", st.IndexedNEOs),
		logger.Int("approaches", st.Approaches),
		logger.Int("maxLimit", s.maxLimit),
		logger.String("loadTime", s.loadTime.String()),
	)
	return nil
}

// Stop marks the service stopped. A later Start reuses the linked store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "neo service stopped")
}

// Inspect finds a NEO by primary designation or, when designation is
// empty, by exact name.
func (s *Service) Inspect(ctx context.Context, designation, name string) (*model.NearEarthObject, error) {
	store, err := s.current()
	if err != nil {
		return nil, err
	}

	var (
		neo *model.NearEarthObject
		ok  bool
		by  string
	)
	switch {
	case designation != "":
		by = lookupByDesignation
		neo, ok = store.GetByDesignation(designation)
	case name != "":
		by = lookupByName
		neo, ok = store.GetByName(name)
	default:
		return nil, ErrInvalidLookup
	}
	metrics.RecordLookup(by, ok)

	if !ok {
		s.logger.Debug(ctx, "neo not found",
			logger.String("by", by),
			logger.String("designation", designation),
			logger.String("name", name),
		)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, designation+name)
	}
	return neo, nil
}

// Query returns the approaches matching c, at most limit of them when
// limit is positive. The sequence is lazy; query metrics are recorded
// each time it is ranged to completion or stopped.
func (s *Service) Query(ctx context.Context, c filter.Criteria, limit int) (iter.Seq[*model.CloseApproach], error) {
	store, err := s.current()
	if err != nil {
		return nil, err
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		return nil, fmt.Errorf("%w: %d > %d", ErrLimitExceeded, limit, s.maxLimit)
	}

	results := filter.Limit(store.Query(c.Predicates()...), limit)
	s.logger.Debug(ctx, "query",
		logger.Bool("filtered", !c.Empty()),
		logger.Int("limit", limit),
	)
	return observed(results), nil
}

// observed records result count and latency for each pass over seq.
func observed(seq iter.Seq[*model.CloseApproach]) iter.Seq[*model.CloseApproach] {
	return func(yield func(*model.CloseApproach) bool) {
		begin := time.Now()
		n := 0
		defer func() {
			metrics.RecordQuery(n, float64(time.Since(begin).Microseconds())/1000)
		}()
		for ca := range seq {
			n++
			if !yield(ca) {
				return
			}
		}
	}
}

// MaxLimit returns the configured query cap; zero means uncapped.
func (s *Service) MaxLimit() int {
	return s.maxLimit
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":  s.started,
		"maxLimit": s.maxLimit,
	}
	if s.started {
		st := s.store.Stats()
		stats["neos"] = st.NEOs
		stats["indexedNeos"] = st.IndexedNEOs
		stats["approaches"] = st.Approaches
		stats["linked"] = st.Linked
		stats["unlinked"] = st.Unlinked
		stats["duplicateDesignations"] = st.DuplicateDesignations
		stats["loadedAt"] = s.loadedAt.UTC().Format(time.RFC3339)
		stats["loadTimeMs"] = s.loadTime.Milliseconds()
	}
	return stats
}

func (s *Service) current() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}
