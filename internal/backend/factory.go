package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"vanta/internal/config"
	"vanta/internal/core"
	"vanta/internal/log"
	"vanta/internal/services"
	"vanta/internal/store"
	"vanta/internal/store/memory"
	"vanta/internal/store/postgres"
	"vanta/internal/store/remote"
	"vanta/internal/store/sqlite"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:          backendType,
		DataDirectory: appConfig.DataDirectory,
		SQLiteDBPath:  appConfig.SQLiteDBPath,
		PostgresDSN:   appConfig.PostgresDSN,
		AutoMigrate:   appConfig.AutoMigrate,
		APIURL:        appConfig.APIURL,
		APIToken:      appConfig.APIToken,
		APITimeout:    appConfig.APITimeout,
	}, nil
}

// Factory creates backends based on configuration
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Nop()
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// medium is the opened persistence medium adapters are bound to.
type medium struct {
	kind   BackendType
	dir    string
	sqlite *sqlite.DB
	pg     *postgres.DB
	remote *remote.Client
}

// CreateBackend opens the configured medium and binds every entity type.
func (f *Factory) CreateBackend(ctx context.Context, cfg Config) (*BackendResult, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	m := &medium{kind: cfg.Type, dir: cfg.DataDirectory}
	res := &BackendResult{
		Ping:    func(context.Context) error { return nil },
		Cleanup: func() error { return nil },
	}

	switch cfg.Type {
	case MemoryBackend:
		if m.dir == "" {
			m.dir = "data"
		}
	case SQLiteBackend:
		db, err := sqlite.Open(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite backend: %w", err)
		}
		m.sqlite = db
		res.Ping = db.Ping
		res.Cleanup = db.Close
	case PostgresBackend:
		db, err := postgres.Open(postgres.Config{DSN: cfg.PostgresDSN, AutoMigrate: cfg.AutoMigrate})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres backend: %w", err)
		}
		m.pg = db
		res.Ping = db.Ping
		res.Cleanup = db.Close
	case RemoteBackend:
		opts := []remote.Option{}
		if cfg.APITimeout > 0 {
			opts = append(opts, remote.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}))
		}
		m.remote = remote.NewClient(apiBase(cfg.APIURL), cfg.APIToken, opts...)
	}

	adapters, err := bindAll(m)
	if err != nil {
		res.Cleanup()
		return nil, err
	}
	res.Adapters = adapters

	f.logger.InfoContext(ctx, "Initialized backend", "backend", cfg.Type)
	return res, nil
}

func apiBase(u string) string {
	u = strings.TrimRight(u, "/")
	if strings.HasSuffix(u, "/api") {
		return u
	}
	return u + "/api"
}

func bindAll(m *medium) (*Adapters, error) {
	a := &Adapters{}
	err := errors.Join(
		bind(m, &a.Transactions, core.TransactionSchema),
		bind(m, &a.Categories, core.CategorySchema),
		bind(m, &a.Budgets, core.BudgetSchema),
		bind(m, &a.Accounts, core.AccountSchema),
		bind(m, &a.Bills, core.BillSchema),
		bind(m, &a.Investments, core.InvestmentSchema),
		bind(m, &a.Companies, core.CompanySchema),
		bind(m, &a.Projects, core.ProjectSchema),
		bind(m, &a.Notifications, core.NotificationSchema),
		bind(m, &a.ReviewItems, core.ReviewItemSchema),
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func bind[T core.Record[T]](m *medium, dst *store.Adapter[T], schema core.Schema[T]) error {
	switch m.kind {
	case MemoryBackend:
		a, err := memory.NewFromFile[T](schema.Resource, filepath.Join(m.dir, schema.Resource+".yaml"))
		if err != nil {
			return err
		}
		*dst = a
	case SQLiteBackend:
		*dst = sqlite.NewTable(m.sqlite, schema)
	case PostgresBackend:
		*dst = postgres.NewTable(m.pg, schema)
	case RemoteBackend:
		*dst = remote.NewResource(m.remote, schema)
	default:
		return fmt.Errorf("unsupported backend type: %s", m.kind)
	}
	return nil
}

// Services wraps every adapter in a RecordService sharing sh.
func (a *Adapters) Services(sh services.Shared) *services.Set {
	return &services.Set{
		Transactions:  services.Wrap(sh, a.Transactions, core.TransactionSchema),
		Categories:    services.Wrap(sh, a.Categories, core.CategorySchema),
		Budgets:       services.Wrap(sh, a.Budgets, core.BudgetSchema),
		Accounts:      services.Wrap(sh, a.Accounts, core.AccountSchema),
		Bills:         services.Wrap(sh, a.Bills, core.BillSchema),
		Investments:   services.Wrap(sh, a.Investments, core.InvestmentSchema),
		Companies:     services.Wrap(sh, a.Companies, core.CompanySchema),
		Projects:      services.Wrap(sh, a.Projects, core.ProjectSchema),
		Notifications: services.Wrap(sh, a.Notifications, core.NotificationSchema),
		ReviewItems:   services.Wrap(sh, a.ReviewItems, core.ReviewItemSchema),
	}
}
