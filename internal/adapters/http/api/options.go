package api

import "github.com/okian/neodb/pkg/logger"

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger used by handlers and middleware.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTrustProxy makes the rate limiter key clients by X-Forwarded-For.
func WithTrustProxy(trust bool) Option {
	return func(s *Server) {
		s.rateLimit.TrustProxy = trust
	}
}

// WithRateLimit enables per-client rate limiting. A non-positive rps disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rateLimit = RateLimitConfig{
			RequestsPerSecond: rps,
			BurstSize:         burst,
			Enabled:           rps > 0,
		}
	}
}

// WithCORS enables CORS for the given origins. An empty list disables it.
func WithCORS(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}
