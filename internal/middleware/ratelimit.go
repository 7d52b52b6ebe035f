package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"eval-flow/internal/config"

	"golang.org/x/time/rate"
)

const clientIdleTimeout = 3 * time.Minute

// RateLimiter keeps a token bucket per client IP
type RateLimiter struct {
	enabled bool
	limit   rate.Limit
	burst   int
	clients map[string]*client
	mu      sync.Mutex
	stop    chan struct{}
	once    sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter that allows cfg.Requests per cfg.Duration per client
func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	limit := rate.Inf
	burst := 1
	if cfg.Requests > 0 && cfg.Duration > 0 {
		limit = rate.Every(cfg.Duration / time.Duration(cfg.Requests))
		burst = cfg.Requests
	}

	rl := &RateLimiter{
		enabled: cfg.Enabled,
		limit:   limit,
		burst:   burst,
		clients: make(map[string]*client),
		stop:    make(chan struct{}),
	}

	if rl.enabled {
		go rl.cleanupClients()
	}

	return rl
}

// Limit rejects requests of clients that exhausted their bucket
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.enabled {
			next.ServeHTTP(w, r)
			return
		}

		if !rl.limiter(getIP(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Stop ends the cleanup loop
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter
}

func (rl *RateLimiter) cleanupClients() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, c := range rl.clients {
				if time.Since(c.lastSeen) > clientIdleTimeout {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// getIP returns the client address, preferring proxy headers
func getIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
