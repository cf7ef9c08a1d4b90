// Package http serves the JSON REST API over the record services.
package http

import (
	"context"
	"net/http"
	"time"

	"vanta/internal/auth"
	"vanta/internal/cache"
	"vanta/internal/log"
	"vanta/internal/middleware/ratelimit"
	"vanta/internal/middleware/security"
	"vanta/internal/middleware/trace"
	"vanta/internal/services"
)

const maxBodyBytes = 1 << 20

// Options configures NewServer. Zero values fall back to defaults.
type Options struct {
	Addr   string
	Logger *log.Logger
	Auth   auth.Config
	// RateLimit applies to POST, PUT and DELETE per client IP.
	RateLimit ratelimit.Config
	// CacheCleanup is how often expired list responses are purged.
	CacheCleanup time.Duration
	// Ready reports whether the persistence medium is reachable.
	Ready          func(ctx context.Context) error
	TrustedProxies []string
}

type Server struct {
	http.Server
	services *services.Set
	logger   *log.Logger
	auth     *auth.Authenticator
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	lists    *cache.LRUCache[[]byte]
	caches   *cache.Manager
	ready    func(ctx context.Context) error
}

// NewServer wires the routes and middleware. lists must be the cache the
// services invalidate on mutation.
func NewServer(set *services.Set, lists *cache.LRUCache[[]byte], opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentAPI)

	ips, err := security.NewIPResolver(opts.TrustedProxies...)
	if err != nil {
		return nil, err
	}
	if opts.Ready == nil {
		opts.Ready = func(context.Context) error { return nil }
	}
	if opts.CacheCleanup <= 0 {
		opts.CacheCleanup = time.Minute
	}

	s := &Server{
		services: set,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(opts.RateLimit),
		tracer:   trace.NewMiddleware(logger, ips.ClientIP),
		lists:    lists,
		caches:   cache.NewManager(logger),
		ready:    opts.Ready,
	}
	if opts.Auth.Enabled() {
		s.auth = auth.New(opts.Auth)
	} else {
		logger.Warn("API authentication disabled: no token or JWT secret configured")
	}
	if lists != nil {
		s.caches.Register(lists)
		s.caches.StartCleanup(opts.CacheCleanup)
	}

	api := http.NewServeMux()
	registerResource(s, api, set.Transactions)
	registerResource(s, api, set.Categories)
	registerResource(s, api, set.Budgets)
	registerResource(s, api, set.Accounts)
	registerResource(s, api, set.Bills)
	registerResource(s, api, set.Investments)
	registerResource(s, api, set.Companies)
	registerResource(s, api, set.Projects)
	registerResource(s, api, set.Notifications)
	registerResource(s, api, set.ReviewItems)
	api.HandleFunc("GET /api/transactions/totals", s.handleTotals)
	api.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errUnknownRoute)
	})

	var apiHandler http.Handler = api
	if s.auth != nil {
		apiHandler = s.auth.Middleware(func(w http.ResponseWriter, r *http.Request, err error) {
			log.NewStructuredLogger(log.FromContext(r.Context())).
				LogRejected(r.Context(), log.ComponentAuth, ips.ClientIP(r), err)
			w.Header().Set("WWW-Authenticate", `Bearer realm="vanta"`)
			writeError(w, r, err)
		})(apiHandler)
	}
	apiHandler = s.limiter.Middleware(ips.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogRejected(r.Context(), log.ComponentRateLimit, ips.ClientIP(r), errRateLimited)
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: errRateLimited.Error(), Kind: "rate_limited"})
	}, http.MethodPost, http.MethodPut, http.MethodDelete)(apiHandler)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("/api/", apiHandler)

	var handler http.Handler = mux
	handler = log.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = log.Middleware(logger)(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:           opts.Addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s, nil
}

// Shutdown stops background workers and drains connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.caches.Stop()
	return s.Server.Shutdown(ctx)
}

type healthBody struct {
	Status         string `json:"status"`
	Requests       int64  `json:"requests"`
	FailedRequests int64  `json:"failed_requests"`
	RateLimited    int64  `json:"rate_limited"`
	CachedLists    int    `json:"cached_lists"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	body := healthBody{
		Status:         "ok",
		Requests:       m.TotalRequests,
		FailedRequests: m.FailedRequests,
		RateLimited:    s.limiter.Hits(),
	}
	if s.lists != nil {
		body.CachedLists = s.lists.Size()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.ready(ctx); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
