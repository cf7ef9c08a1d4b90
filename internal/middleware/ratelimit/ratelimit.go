// Package ratelimit provides a per-client fixed-window request limiter.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter counts requests per client key within a fixed window.
type Limiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
	now          func() time.Time
	hits         atomic.Int64

	requests        int
	window          time.Duration
	cleanupInterval time.Duration
}

type clientInfo struct {
	windowStart time.Time
	lastRequest time.Time
	requests    int
}

// Config holds rate limiter configuration
type Config struct {
	Requests        int
	Window          time.Duration
	CleanupInterval time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Requests:        60,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewLimiter creates a limiter and starts its cleanup goroutine; call Stop.
func NewLimiter(config Config) *Limiter {
	if config.Requests <= 0 {
		config.Requests = DefaultConfig().Requests
	}
	if config.Window <= 0 {
		config.Window = DefaultConfig().Window
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}

	rl := &Limiter{
		clients:         make(map[string]*clientInfo),
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
		requests:        config.Requests,
		window:          config.Window,
		cleanupInterval: config.CleanupInterval,
	}
	go rl.startCleanup()
	return rl
}

// Allow records a request from key and reports whether it is within budget.
func (rl *Limiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	client, exists := rl.clients[key]
	if !exists || now.Sub(client.windowStart) >= rl.window {
		rl.clients[key] = &clientInfo{windowStart: now, lastRequest: now, requests: 1}
		return true
	}

	client.requests++
	client.lastRequest = now
	if client.requests > rl.requests {
		rl.hits.Add(1)
		return false
	}
	return true
}

// RetryAfter reports how long key must wait for its window to reset.
func (rl *Limiter) RetryAfter(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	client, ok := rl.clients[key]
	if !ok {
		return 0
	}
	return max(rl.window-rl.now().Sub(client.windowStart), 0)
}

func (rl *Limiter) startCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries idle for over 10 minutes
func (rl *Limiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-max(10*time.Minute, 2*rl.window))
	for key, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Hits returns how many requests were rejected.
func (rl *Limiter) Hits() int64 { return rl.hits.Load() }

// Stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// Middleware limits requests whose method is in methods (all when empty).
// onLimit writes the rejection; a plain 429 is used when nil.
func (rl *Limiter) Middleware(extractKey func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request), methods ...string) func(http.Handler) http.Handler {
	limited := make(map[string]bool, len(methods))
	for _, m := range methods {
		limited[m] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(limited) > 0 && !limited[r.Method] {
				next.ServeHTTP(w, r)
				return
			}
			key := extractKey(r)
			if !rl.Allow(key) {
				secs := int(rl.RetryAfter(key).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(secs))
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
