package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"coinwatch/internal/api/handlers"
	"coinwatch/internal/api/health"
	"coinwatch/internal/api/middleware"
	"coinwatch/internal/metrics"
	"coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

// ServerConfig contains configuration for HTTP server
type ServerConfig struct {
	Port        int
	ServiceName string
	Version     string
}

// Handlers bundles the route handlers wired into the server
type Handlers struct {
	Health    *health.Handler
	CoinGecko *handlers.CoinGeckoHandler
	News      *handlers.NewsHandler
	Watchlist *handlers.WatchlistHandler
	Alerts    *handlers.AlertsHandler
	Auth      *handlers.AuthHandler
	Send      *handlers.SendHandler
}

// Server wraps HTTP server with lifecycle management
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer creates and configures HTTP server with all routes
func NewServer(cfg ServerConfig, h Handlers, authMW *middleware.Auth, log *logger.Logger) *Server {
	mux := http.NewServeMux()

	route := func(pattern string, handler http.Handler) {
		mux.Handle(pattern, middleware.Instrument(pattern, log, handler))
	}

	// Health check endpoints (Kubernetes probes)
	mux.HandleFunc("/health", h.Health.HandleHealth)
	mux.HandleFunc("/ready", h.Health.HandleReadiness)
	mux.HandleFunc("/live", h.Health.HandleLiveness)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", metrics.Handler())

	// Upstream proxies
	route("/api/coingecko", http.HandlerFunc(h.CoinGecko.Proxy))
	route("/api/newsapi", http.HandlerFunc(h.News.Search))

	// Watchlist and alerts resolve the session when one is present and
	// fall back to the shared anonymous scope otherwise
	route("/api/watchlist", authMW.Optional(h.Watchlist))
	route("/api/alerts", authMW.Optional(http.HandlerFunc(h.Alerts.Collection)))
	route("/api/alerts/", authMW.Optional(http.HandlerFunc(h.Alerts.Item)))

	// Session endpoints
	route("/api/auth/register", http.HandlerFunc(h.Auth.Register))
	route("/api/auth/login", http.HandlerFunc(h.Auth.Login))
	route("/api/auth/logout", http.HandlerFunc(h.Auth.Logout))
	route("/api/auth/me", authMW.Optional(http.HandlerFunc(h.Auth.Me)))

	// Email delivery
	route("/api/send", http.HandlerFunc(h.Send.Send))

	// Dashboard requires a session; unauthenticated visitors are
	// redirected to the sign-in page
	route("/dashboard", authMW.Gate(http.HandlerFunc(dashboardInfo)))
	route("/dashboard/", authMW.Gate(http.HandlerFunc(dashboardInfo)))

	// Root endpoint (service info)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"service":"%s","version":"%s","status":"running"}`,
			cfg.ServiceName, cfg.Version)
	})

	port := 8080
	if cfg.Port > 0 {
		port = cfg.Port
	}

	log.Infof("HTTP server configured on port %d", port)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		log:        log,
	}
}

func dashboardInfo(w http.ResponseWriter, r *http.Request) {
	usr, _ := middleware.UserFrom(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"page":"dashboard","email":%q}`, usr.Email)
}

// Start begins listening for HTTP requests
// Blocks until server is stopped or encounters an error
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
// Waits for active connections to complete within timeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("✓ HTTP server stopped")
	return nil
}
