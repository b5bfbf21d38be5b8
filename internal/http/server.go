package http

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"budgetku/internal/core"
	"budgetku/internal/log"
	"budgetku/internal/middleware/ratelimit"
	"budgetku/internal/middleware/security"
	"budgetku/internal/middleware/trace"
	"budgetku/internal/store"
)

// Options tune the server beyond its address and store.
type Options struct {
	RateLimitRPM   int
	AllowedOrigins []string

	// Ready reports whether the persistence backend is usable. Nil means
	// always ready.
	Ready func(ctx context.Context) error

	// Stats adds lines to /metrics, e.g. autosave and notification counters.
	Stats func() map[string]uint64
}

type Server struct {
	http.Server
	store  *store.Store
	hub    *Hub
	logger *log.Logger
	opts   Options

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	startedAt    time.Time
	mutations    atomic.Int64
	overspends   atomic.Int64
	shutdownOnce sync.Once
}

// NewServer builds the API server and subscribes it to the store's events.
func NewServer(addr string, st *store.Store, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Nop()
	}
	detector := security.NewDetector(logger)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		store:            st,
		logger:           logger.WithComponent(log.ComponentHTTP),
		opts:             opts,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitRPM}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, logger),
		startedAt:        time.Now(),
	}
	s.hub = NewHub(logger, st.Version, s.checkOrigin)

	st.OnChange(func(ev store.ChangeEvent) {
		s.mutations.Add(1)
		s.hub.HandleChange(ev)
	})
	st.OnOverspend(s.hub.HandleOverspend)
	st.OnOverspend(func(_ core.Overspend) { s.overspends.Add(1) })

	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/transactions", s.handleAddTransaction)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handleEditTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/history", s.handleHistory)

	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/analytics/tags", s.handleExpenseByTag)

	mux.HandleFunc("GET /api/budgets/{month}", s.handleGetBudget)
	mux.HandleFunc("PUT /api/budgets/{month}", s.handleSetBudget)
	mux.HandleFunc("DELETE /api/budgets/{month}/{tag}", s.handleRemoveBudget)
	mux.HandleFunc("GET /api/budgets/{month}/unbudgeted", s.handleUnbudgetedTags)

	mux.HandleFunc("GET /api/tags", s.handleListTags)
	mux.HandleFunc("POST /api/tags", s.handleAddTag)
	mux.HandleFunc("PUT /api/tags/{name}", s.handleEditTag)
	mux.HandleFunc("DELETE /api/tags/{name}", s.handleDeleteTag)
	mux.HandleFunc("GET /api/tags/{name}/color", s.handleTagColor)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings/currency", s.handleSetCurrency)
	mux.HandleFunc("PUT /api/settings/period", s.handleSetPeriod)
	mux.HandleFunc("PATCH /api/settings/notifications", s.handleUpdateNotifications)

	mux.Handle("GET /api/events", log.ComponentMiddleware(log.ComponentEvents)(http.HandlerFunc(s.hub.ServeWS)))

	headers := security.DefaultHeadersConfig()
	headers.AllowedOrigins = s.opts.AllowedOrigins

	var h http.Handler = mux
	h = log.RequestIDMiddleware(trace.FromRequest)(h)
	h = log.Middleware(s.logger)(h)
	h = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, _ *http.Request) {
		TooManyRequestsError().Write(w)
	})(h)
	h = security.NewHeadersMiddleware(headers).Middleware(h)
	h = s.securityDetector.Middleware(h)
	h = s.traceMiddleware.Middleware(h)
	return h
}

// checkOrigin admits same-host websocket clients, clients without an
// Origin header and the configured origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(s.opts.AllowedOrigins, "*") || slices.Contains(s.opts.AllowedOrigins, origin) {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// Shutdown gracefully shuts down the server and its background helpers.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.hub.Close()
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// Hub exposes the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }
