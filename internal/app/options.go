package service

import (
	"github.com/okian/neodb/internal/adapters/repository"
	"github.com/okian/neodb/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNEOPath sets the NEO CSV loaded by Start.
func WithNEOPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.neoPath = path
		}
	}
}

// WithApproachPath sets the close-approach JSON loaded by Start.
func WithApproachPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.approachPath = path
		}
	}
}

// WithMaxLimit caps the limit a query may request. Zero means no cap.
func WithMaxLimit(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxLimit = n
		}
	}
}

// WithStrictLoading makes malformed source rows fail Start.
func WithStrictLoading(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

// WithDatabase supplies an already linked store; Start then skips loading.
func WithDatabase(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}
