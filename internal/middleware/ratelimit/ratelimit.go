// Package ratelimit throttles mutating requests per client.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter is a fixed-window counter per client key.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	now     func() time.Time

	limit  int
	window time.Duration

	rejected atomic.Int64
}

type clientWindow struct {
	start    time.Time
	requests int
}

// Config holds rate limiter configuration
type Config struct {
	// Requests allowed per client within Window.
	Limit  int
	Window time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Limit:  60,
		Window: time.Minute,
	}
}

// NewLimiter creates a new rate limiter
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.Limit <= 0 {
		config.Limit = def.Limit
	}
	if config.Window <= 0 {
		config.Window = def.Window
	}
	return &Limiter{
		clients: make(map[string]*clientWindow),
		now:     time.Now,
		limit:   config.Limit,
		window:  config.Window,
	}
}

// Allow checks if a request from the given client should be allowed
func (rl *Limiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, exists := rl.clients[client]
	if !exists || now.Sub(w.start) >= rl.window {
		rl.clients[client] = &clientWindow{start: now, requests: 1}
		return true
	}

	if w.requests >= rl.limit {
		rl.rejected.Add(1)
		return false
	}
	w.requests++
	return true
}

// Cleanup drops clients whose window ended and returns how many were removed.
func (rl *Limiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, w := range rl.clients {
		if now.Sub(w.start) >= rl.window {
			delete(rl.clients, key)
			removed++
		}
	}
	return removed
}

// Run performs Cleanup once per window until ctx is done.
func (rl *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.Cleanup()
		case <-ctx.Done():
			return
		}
	}
}

// Metrics for monitoring rate limit performance
type Metrics struct {
	Rejected    int64
	ClientCount int
}

func (rl *Limiter) GetMetrics() Metrics {
	rl.mu.Lock()
	clients := len(rl.clients)
	rl.mu.Unlock()
	return Metrics{Rejected: rl.rejected.Load(), ClientCount: clients}
}

// Middleware limits non-safe methods only. GET, HEAD and OPTIONS pass
// through untouched.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if !rl.Allow(extractIP(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
