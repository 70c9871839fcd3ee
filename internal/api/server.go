package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"golang.org/x/text/language"

	"github.com/nerrad567/devicedash/internal/audit"
	"github.com/nerrad567/devicedash/internal/feed"
	"github.com/nerrad567/devicedash/internal/gateway"
	"github.com/nerrad567/devicedash/internal/i18n"
	"github.com/nerrad567/devicedash/internal/infrastructure/config"
	"github.com/nerrad567/devicedash/internal/infrastructure/logging"
	"github.com/nerrad567/devicedash/internal/notify"
	"github.com/nerrad567/devicedash/internal/routes"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker is implemented by every infrastructure client the health
// endpoint reports on.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Logger   *logging.Logger
	Gateway  *gateway.Client
	Routes   *routes.Table
	Notifier *notify.Center
	Audit    audit.Repository // optional: write actions are not recorded without it
	Feed     *feed.Service    // optional: MQTT pages show no messages without it
	DB       *sql.DB          // optional: pool statistics in GET /api/metrics

	// Health lists named components reported by GET /api/health.
	Health map[string]HealthChecker

	// Language is used when a request expresses no preference.
	Language language.Tag

	ExternalHub *Hub // If set, the server uses this hub instead of creating its own
	Version     string
}

// Server is the dashboard's HTTP server.
//
// It manages the HTTP listener, routes, middleware, page templates, and the
// WebSocket hub. The server is created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	logger      *logging.Logger
	gateway     *gateway.Client
	table       *routes.Table
	notifier    *notify.Center
	audit       audit.Repository
	feed        *feed.Service
	health      map[string]HealthChecker
	lang        language.Tag
	version     string
	db          *sql.DB
	startTime   time.Time
	pages       *routes.Resolver[*template.Template]
	server      *http.Server
	hub         *Hub
	externalHub bool               // true if hub was injected externally
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, gateway, routes, notifier)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Gateway == nil {
		return nil, fmt.Errorf("gateway client is required")
	}
	if deps.Routes == nil {
		return nil, fmt.Errorf("route table is required")
	}
	if deps.Notifier == nil {
		return nil, fmt.Errorf("notification center is required")
	}

	lang := deps.Language
	if lang == language.Und {
		lang = i18n.Chinese
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger,
		gateway:   deps.Gateway,
		table:     deps.Routes,
		notifier:  deps.Notifier,
		audit:     deps.Audit,
		feed:      deps.Feed,
		health:    deps.Health,
		lang:      i18n.Match(lang),
		version:   deps.Version,
		db:        deps.DB,
		startTime: time.Now(),
	}

	pages, err := newPageResolver(deps.Routes)
	if err != nil {
		return nil, fmt.Errorf("registering pages: %w", err)
	}
	s.pages = pages

	// Use externally-provided hub if available (needed when the notification
	// center and the feed publish through the same hub).
	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
		s.externalHub = true
	} else {
		s.hub = NewHub(deps.WS, deps.Logger)
	}

	return s, nil
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the router. Tests serve it through httptest.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub (unless injected), builds the router, and
// launches the HTTP listener in a background goroutine. The server can be
// stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start
func (s *Server) Start(ctx context.Context) error {
	// Create internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
