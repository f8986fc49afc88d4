package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync/atomic"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	appweb "fintrack/web"
)

// TransactionService is the part of services.TransactionService the
// handlers depend on.
type TransactionService interface {
	Record(ctx context.Context, tx core.Transaction) (services.Recorded, error)
	Transactions(ctx context.Context) ([]core.Transaction, error)
	Snapshot(ctx context.Context) (core.Snapshot, error)
}

// StatsSource exposes lookup counters for /metrics.
type StatsSource interface {
	Stats() cache.Stats
}

// Options wires the server dependencies. Only Service is required.
type Options struct {
	Service TransactionService
	// Ready reports whether the storage backend answers.
	Ready          func(ctx context.Context) error
	Logger         *applog.Logger
	RequestTimeout time.Duration
	RateLimit      ratelimit.Config
	TrustedProxies []string
	Headers        *security.HeadersConfig
	SnapshotCache  StatsSource
}

type appMetrics struct {
	transactions atomic.Int64
	alerts       atomic.Int64
	exports      atomic.Int64
	start        time.Time
}

// Server serves the dashboard page, its partials, the JSON API and exports.
type Server struct {
	http.Server
	templates      *template.Template
	svc            TransactionService
	ready          func(ctx context.Context) error
	logger         *applog.Logger
	ips            *security.ClientIPResolver
	trace          *trace.Middleware
	limiter        *ratelimit.Limiter
	snapshotCache  StatsSource
	requestTimeout time.Duration
	metrics        appMetrics
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, errors.New("transaction service is required")
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	headers := security.DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}

	ips, err := security.NewClientIPResolver(opts.TrustedProxies...)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	logger := opts.Logger.WithComponent(applog.ComponentHTTP)
	s := &Server{
		templates:      t,
		svc:            opts.Service,
		ready:          opts.Ready,
		logger:         logger,
		ips:            ips,
		trace:          trace.NewMiddleware(opts.Logger, ips.ClientIP),
		limiter:        ratelimit.NewLimiter(opts.RateLimit),
		snapshotCache:  opts.SnapshotCache,
		requestTimeout: opts.RequestTimeout,
	}
	s.metrics.start = time.Now()

	mux := http.NewServeMux()

	// Static assets (served from embedded FS)
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	mux.Handle("/static/", security.StaticAssets(3600)(http.StripPrefix("/static/", http.FileServer(http.FS(sub)))))

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/transactions", s.handleTransactions)
	mux.HandleFunc("/export", s.handleExport)
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	// UI partials
	mux.HandleFunc("/ui/transactions", s.handleTablePartial)
	mux.HandleFunc("/ui/totals", s.handleTotalsPartial)

	var h http.Handler = mux
	h = s.withTimeout(h)
	h = s.limiter.Middleware(ips.ClientIP, s.rateLimited)(h)
	h = security.Headers(headers)(h)
	h = s.trace.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// RunMaintenance drops stale rate-limit windows until ctx is done.
func (s *Server) RunMaintenance(ctx context.Context) {
	s.limiter.Run(ctx)
}

func (s *Server) withTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	s.requestLogger(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.ips.ClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	resp := ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	if wantsJSON(r) {
		resp = JSONErrorResponse(http.StatusTooManyRequests, "rate limit exceeded")
	}
	resp.TriggerErrorNotification("Too many requests, slow down").Write(w)
}
