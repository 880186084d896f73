package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/tileboard/internal/auth"
	"github.com/nerrad567/tileboard/internal/backend"
	"github.com/nerrad567/tileboard/internal/command"
	"github.com/nerrad567/tileboard/internal/core"
	"github.com/nerrad567/tileboard/internal/dashboard"
	"github.com/nerrad567/tileboard/internal/history"
	"github.com/nerrad567/tileboard/internal/infrastructure/config"
	"github.com/nerrad567/tileboard/internal/infrastructure/database"
	"github.com/nerrad567/tileboard/internal/infrastructure/influxdb"
	"github.com/nerrad567/tileboard/internal/infrastructure/logging"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Deps holds the dependencies for the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Core     *core.Core
	Pages    *dashboard.Service
	Commands *command.Dispatcher
	Version  string

	// Optional. A nil History makes the history endpoint answer 503; the
	// rest only feed /health and /metrics.
	History  history.Repository
	Journal  *history.Writer
	Backend  *backend.Backend
	DB       *database.DB
	InfluxDB *influxdb.Client
}

// Server is the HTTP API and WebSocket server.
type Server struct {
	cfg      config.APIConfig
	wsCfg    config.WebSocketConfig
	secCfg   config.SecurityConfig
	logger   *logging.Logger
	core     *core.Core
	pages    *dashboard.Service
	commands *command.Dispatcher
	history  history.Repository
	journal  *history.Writer
	backend  *backend.Backend
	db       *database.DB
	influx   *influxdb.Client
	version  string

	hub       *Hub
	tickets   *auth.TicketStore
	server    *http.Server
	addr      net.Addr
	cancel    context.CancelFunc
	startTime time.Time
}

// New creates a new API server. The hub exists immediately so it can be
// handed to the Core as its sink before Start.
func New(deps Deps) (*Server, error) {
	if deps.Core == nil {
		return nil, errors.New("api: core is required")
	}
	if deps.Pages == nil {
		return nil, errors.New("api: page service is required")
	}
	if deps.Commands == nil {
		return nil, errors.New("api: command dispatcher is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}

	hub := NewHub(deps.WS, deps.Logger)
	hub.SetSender(deps.Commands)

	return &Server{
		cfg:      deps.Config,
		wsCfg:    deps.WS,
		secCfg:   deps.Security,
		logger:   deps.Logger,
		core:     deps.Core,
		pages:    deps.Pages,
		commands: deps.Commands,
		history:  deps.History,
		journal:  deps.Journal,
		backend:  deps.Backend,
		db:       deps.DB,
		influx:   deps.InfluxDB,
		version:  deps.Version,
		hub:      hub,
		tickets:  auth.NewTicketStore(auth.DefaultTicketTTL),
	}, nil
}

// Hub returns the WebSocket hub. Pass it to core.SetSink.
func (s *Server) Hub() *Hub { return s.hub }

// Start begins listening for HTTP requests.
func (s *Server) Start(ctx context.Context) error {
	serverCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.startTime = time.Now()

	go s.hub.Run(serverCtx)
	go s.tickets.Run(serverCtx)

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	if s.cfg.TLS.Enabled {
		s.server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		cancel()
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.addr = listener.Addr()

	go func() {
		var serveErr error
		if s.cfg.TLS.Enabled {
			serveErr = s.server.ServeTLS(listener, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			serveErr = s.server.Serve(listener)
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", serveErr)
		}
	}()

	s.logger.Info("API server started",
		"address", s.addr.String(),
		"tls", s.cfg.TLS.Enabled,
		"auth", s.authEnabled(),
	)
	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr { return s.addr }

// Close gracefully shuts down the API server.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	s.logger.Info("API server stopped")
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(_ context.Context) error {
	if s.server == nil {
		return errors.New("api: server not started")
	}
	return nil
}

func (s *Server) authEnabled() bool {
	return s.secCfg.JWT.Secret != ""
}
