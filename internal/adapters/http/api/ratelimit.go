package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/okian/neodb/pkg/logger"
	"github.com/okian/neodb/pkg/metrics"
	"golang.org/x/time/rate"
)

// idleSweepInterval is how often idle client limiters are dropped.
const idleSweepInterval = time.Minute

// RateLimitConfig configures per-client token buckets.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	Enabled           bool
	TrustProxy        bool
}

// RateLimiter holds one token bucket per client IP.
type RateLimiter struct {
	config  RateLimitConfig
	clients map[string]*rate.Limiter
	mu      sync.Mutex
	once    sync.Once
	logger  logger.Logger
}

// NewRateLimiter creates a RateLimiter. Call Start to sweep idle clients.
func NewRateLimiter(config RateLimitConfig, l logger.Logger) *RateLimiter {
	if config.BurstSize < 1 {
		config.BurstSize = 1
	}
	if l == nil {
		l = logger.Nop()
	}
	return &RateLimiter{
		config:  config,
		clients: make(map[string]*rate.Limiter),
		logger:  l.Named("ratelimit"),
	}
}

// Start launches the idle-client sweep; it stops when ctx is done.
func (rl *RateLimiter) Start(ctx context.Context) {
	rl.once.Do(func() {
		go rl.sweep(ctx)
	})
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.clients[ip]
	if !ok {
		l = rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.BurstSize)
		rl.clients[ip] = l
	}
	return l
}

func (rl *RateLimiter) sweep(ctx context.Context) {
	ticker := time.NewTicker(idleSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, l := range rl.clients {
				// A full bucket means the client has been idle.
				if l.TokensAt(now) >= float64(rl.config.BurstSize) {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Middleware rejects requests over the client's budget with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.config.Enabled {
			next.ServeHTTP(w, r)
			return
		}
		ip := clientIP(r, rl.config.TrustProxy)
		if !rl.limiter(ip).Allow() {
			metrics.RecordRateLimited(r.URL.Path)
			rl.logger.Warn(r.Context(), "rate limit exceeded",
				logger.String("clientIP", ip),
				logger.String("path", r.URL.Path),
				logger.Float64("rps", rl.config.RequestsPerSecond),
				logger.Int("burst", rl.config.BurstSize),
			)
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate_limited", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if i := strings.IndexByte(xff, ','); i != -1 {
				return strings.TrimSpace(xff[:i])
			}
			return strings.TrimSpace(xff)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return xri
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
