package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/language"

	"opsboard/internal/cache"
	"opsboard/internal/core"
	applog "opsboard/internal/log"
	"opsboard/internal/middleware/ratelimit"
	"opsboard/internal/middleware/security"
	"opsboard/internal/middleware/trace"
	"opsboard/internal/settings"
	appweb "opsboard/web"
)

// DashboardProvider yields the aggregated dashboard for the current generation.
type DashboardProvider interface {
	Dashboard(ctx context.Context) (core.Dashboard, error)
}

// CacheReporter is implemented by providers that cache snapshots.
type CacheReporter interface {
	CacheStats() cache.Stats
}

// EndpointSaver persists a new backend endpoint and triggers a restart.
type EndpointSaver interface {
	Save(ctx context.Context, url string) error
}

// Options wires one generation of the HTTP server. Endpoint is the value read when the
// generation was built and does not change for its lifetime.
type Options struct {
	Backend          string
	RequiresEndpoint bool
	Endpoint         settings.Endpoint

	// Dashboard is nil when the backend could not be built; BackendErr says why.
	Dashboard  DashboardProvider
	BackendErr error

	Settings EndpointSaver

	Locale         language.Tag
	CurrencySuffix string
	Generation     int

	Logger *applog.Logger
}

// Server is the handler graph of one generation. The listener outlives it: see
// NewHTTPServer.
type Server struct {
	handler   http.Handler
	opts      Options
	templates *template.Template
	amounts   amountFormatter
	logger    *applog.Logger
	access    *applog.StructuredLogger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	started        time.Time
	dashboardFails int64
	closeOnce      sync.Once
}

// NewHTTPServer returns the process-lifetime server that accepts connections for every
// generation through h.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
}

// NewServer configures routes, middleware and templates for one generation.
func NewServer(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	logger := opts.Logger.WithComponent(applog.ComponentHTTP)

	t, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:      opts,
		templates: t,
		amounts:   newAmountFormatter(opts.Locale, opts.CurrencySuffix),
		logger:    logger,
		access:    applog.NewStructuredLogger(logger),
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:  security.NewDetector(opts.Logger.WithComponent(applog.ComponentSecurity).Logger),
		started:   time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, err
	}
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboardAPI)
	mux.HandleFunc("GET /settings", s.handleSettings)
	mux.HandleFunc("POST /settings", s.handleSaveSettings)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)(h)
	h = headers.Middleware(h)
	h = s.detector.Middleware(h)
	h = s.tracer.Middleware(h)
	s.handler = h

	return s, nil
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"barWidth": barWidth,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	w.Header().Set("Retry-After", "60")
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close stops the background goroutines the handler graph owns. Safe to call more than
// once.
func (s *Server) Close() {
	s.closeOnce.Do(s.limiter.Stop)
}

func (s *Server) recordDashboardFailure() {
	atomic.AddInt64(&s.dashboardFails, 1)
}
