// Package cache holds the API server's response caches.
package cache

import (
	"sync"
	"time"

	"vanta/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// DeletePrefix drops every key starting with prefix and reports how many.
	DeletePrefix(prefix string) int
	Size() int
}

// Cleaner is implemented by caches that expire entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs periodic expiry over registered caches.
type Manager struct {
	mu          sync.Mutex
	caches      []Cleaner
	logger      *log.Logger
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Nop()
	}
	return &Manager{
		logger:      logger.WithComponent(log.ComponentCache),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// StartCleanup begins periodic cleanup of all registered caches
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanAll(); n > 0 {
				m.logger.Debug("Expired cache entries removed", log.FieldCount, n)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// CleanAll expires entries in every registered cache once.
func (m *Manager) CleanAll() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()
	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

// Stop ends the cleanup goroutine and waits for it. Safe to call once,
// whether or not cleanup was started.
func (m *Manager) Stop() {
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()
	close(m.stopCleanup)
	if started {
		<-m.cleanupDone
	}
}
