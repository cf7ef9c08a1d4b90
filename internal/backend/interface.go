// Package backend opens the persistence medium selected by configuration
// and binds one adapter per entity type to it.
package backend

import (
	"context"
	"time"

	"vanta/internal/core"
	"vanta/internal/store"
)

// Adapters holds one adapter per entity type, all on the same medium.
type Adapters struct {
	Transactions  store.Adapter[core.Transaction]
	Categories    store.Adapter[core.Category]
	Budgets       store.Adapter[core.Budget]
	Accounts      store.Adapter[core.Account]
	Bills         store.Adapter[core.Bill]
	Investments   store.Adapter[core.Investment]
	Companies     store.Adapter[core.Company]
	Projects      store.Adapter[core.Project]
	Notifications store.Adapter[core.Notification]
	ReviewItems   store.Adapter[core.ReviewItem]
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the adapters and the medium's lifecycle hooks.
type BackendResult struct {
	Adapters *Adapters
	// Ping reports whether the medium is reachable.
	Ping    func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Memory backend: one <resource>.yaml fixture per entity type.
	DataDirectory string

	SQLiteDBPath string

	PostgresDSN string
	AutoMigrate bool

	// Remote backend
	APIURL     string
	APIToken   string
	APITimeout time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	RemoteBackend   BackendType = "remote"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend, RemoteBackend:
		return true
	default:
		return false
	}
}

// ServesAPI reports whether the medium may back the API server. A remote
// backend would make the server call itself.
func (bt BackendType) ServesAPI() bool {
	return bt.IsValid() && bt != RemoteBackend
}
