package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zeynepvrl/HKUygulama/internal/infrastructure/config"
	"github.com/zeynepvrl/HKUygulama/internal/infrastructure/logging"
	"github.com/zeynepvrl/HKUygulama/internal/ingest"
	"github.com/zeynepvrl/HKUygulama/internal/monitor"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Scanner triggers an immediate batch scan. *monitor.Poller implements it.
type Scanner interface {
	Scan(ctx context.Context) ingest.BatchResult
}

// EngineStatus reports the scheduler state. *ingest.Scheduler implements it.
type EngineStatus interface {
	Running() bool
	ChunkSize() int
	LastBatch() *ingest.BatchResult
}

// ConnectionStatus reports a broker connection. *mqtt.Client implements it.
type ConnectionStatus interface {
	IsConnected() bool
}

// PoolStats reports connection pool statistics. *database.DB implements it.
type PoolStats interface {
	Stats() sql.DBStats
}

// HealthChecker is a dependency probed by /api/v1/health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	WS         config.WebSocketConfig
	Logger     *logging.Logger
	Store      *monitor.Store
	Facilities *monitor.Facilities
	Scanner    Scanner
	Engine     EngineStatus
	MQTT       ConnectionStatus         // optional
	Database   PoolStats                // optional
	Checks     map[string]HealthChecker // optional, probed by /health
	Prometheus http.Handler             // optional, served at /metrics
	Hub        *Hub                     // if set, used instead of an internal hub
	Version    string
}

// Server is the HTTP API server for HK Energy.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	logger      *logging.Logger
	store       *monitor.Store
	facilities  *monitor.Facilities
	scanner     Scanner
	engine      EngineStatus
	mqtt        ConnectionStatus
	db          PoolStats
	checks      map[string]HealthChecker
	prometheus  http.Handler
	version     string
	startTime   time.Time
	server      *http.Server
	hub         *Hub
	externalHub bool
	cancel      context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (logger, store, facilities, scanner, engine)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if deps.Facilities == nil {
		return nil, fmt.Errorf("facilities are required")
	}
	if deps.Scanner == nil {
		return nil, fmt.Errorf("scanner is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("engine status is required")
	}

	s := &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		logger:     deps.Logger,
		store:      deps.Store,
		facilities: deps.Facilities,
		scanner:    deps.Scanner,
		engine:     deps.Engine,
		mqtt:       deps.MQTT,
		db:         deps.Database,
		checks:     deps.Checks,
		prometheus: deps.Prometheus,
		version:    deps.Version,
		startTime:  time.Now(),
	}

	// The hub is usually created by main so it can be registered as a
	// poller sink before the server starts.
	if deps.Hub != nil {
		s.hub = deps.Hub
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

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub (unless injected) and launches the HTTP
// listener in a background goroutine. The server can be stopped with Close().
//
// Parameters:
//   - ctx: Context for the hub lifetime
//
// Returns:
//   - error: Always nil; listener errors are logged
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
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

// HealthCheck verifies the API server is running.
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
