package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"haushalt/internal/log"
	"haushalt/internal/metrics"
	"haushalt/internal/middleware/ratelimit"
	"haushalt/internal/middleware/security"
	"haushalt/internal/middleware/trace"
	"haushalt/internal/services"
	"haushalt/internal/store"
)

// Options tunes the middleware chain.
type Options struct {
	// RateLimitPerMinute caps writes per client. Zero uses the limiter default.
	RateLimitPerMinute int
}

// Server is the REST API server. It owns the middleware whose goroutines
// must be stopped on shutdown.
type Server struct {
	http.Server

	db               store.Database
	logger           *log.Logger
	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	metrics          *metrics.Metrics
	started          time.Time

	shutdownOnce sync.Once
}

// NewServer registers one controller per service on a fresh mux and wraps
// it in the middleware chain.
func NewServer(addr string, db store.Database, svcs []*services.ResourceService, opts Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}

	limitCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limitCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	detector := security.NewDetector(logger)
	s := &Server{
		Server: http.Server{
			Addr:           addr,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		db:               db,
		logger:           logger.WithComponent(log.ComponentHTTP),
		rateLimiter:      ratelimit.NewLimiter(limitCfg),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
		started:          time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	routes := []string{"healthz", "readyz"}
	for _, svc := range svcs {
		newResourceController(svc).register(mux)
		routes = append(routes, svc.Kind().String())
	}
	s.metrics = metrics.New(routes...)
	s.registerMiddlewareMetrics()
	mux.Handle("GET /metrics", s.metrics.Handler())

	s.Handler = s.chain(mux)
	return s
}

// chain applies middleware outermost first.
func (s *Server) chain(h http.Handler) http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) { TooManyRequestsError().Write(w) }

	middlewares := []func(http.Handler) http.Handler{
		s.metrics.Instrument,
		s.traceMiddleware.Middleware,
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		s.securityDetector.Middleware,
		s.rateLimiter.Middleware(s.logger, s.securityDetector.ExtractClientIP, onLimit),
		log.Middleware(s.logger),
		log.RequestIDMiddleware(trace.RequestIDFromRequest),
	}
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Shutdown stops the middleware goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// registerMiddlewareMetrics exports the middleware counters.
func (s *Server) registerMiddlewareMetrics() {
	s.metrics.CounterFunc("http_server_errors_total", "Responses with a 5xx status.", func() float64 {
		return float64(s.traceMiddleware.GetMetrics().ServerErrors)
	})
	s.metrics.GaugeFunc("http_last_response_microseconds", "Duration of the most recent request.", func() float64 {
		return float64(s.traceMiddleware.GetMetrics().LastResponseTime)
	})
	s.metrics.CounterFunc("suspicious_requests_total", "Requests flagged by the detector.", func() float64 {
		return float64(s.securityDetector.GetMetrics().SuspiciousRequests)
	})
	s.metrics.CounterFunc("blocked_requests_total", "Requests refused by the detector.", func() float64 {
		return float64(s.securityDetector.GetMetrics().BlockedRequests)
	})
	s.metrics.CounterFunc("rate_limit_hits_total", "Requests refused by the rate limiter.", func() float64 {
		return float64(s.rateLimiter.GetMetrics().TotalHits)
	})
	s.metrics.GaugeFunc("rate_limit_clients", "Currently tracked rate limit clients.", func() float64 {
		return float64(s.rateLimiter.GetMetrics().ClientCount)
	})
	s.metrics.GaugeFunc("uptime_seconds", "Server uptime in seconds.", func() float64 {
		return time.Since(s.started).Seconds()
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady pings the database.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"database": "ok"}
	if err := s.db.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		checks["database"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	NewResponse().Status(code).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}
