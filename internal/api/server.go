// Package api provides the CampusGate HTTP server: the authentication
// endpoints, role-gated application routes, and the verbatim pass-through
// to the downstream sensor API.
//
// The server follows the same lifecycle pattern as the other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lucaferri/campusgate/internal/audit"
	"github.com/lucaferri/campusgate/internal/auth"
	"github.com/lucaferri/campusgate/internal/facility"
	"github.com/lucaferri/campusgate/internal/infrastructure/config"
	"github.com/lucaferri/campusgate/internal/infrastructure/database"
	"github.com/lucaferri/campusgate/internal/infrastructure/logging"
	"github.com/lucaferri/campusgate/internal/infrastructure/mqtt"
	"github.com/lucaferri/campusgate/internal/session"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.API
	Policy   config.Policy
	Upstream config.Upstream
	Logger   *logging.Logger
	DB       *database.DB
	Sessions *session.Manager
	Store    session.Store
	Users    *auth.UserRepository
	Roles    *auth.RoleRepository
	Tasks    *facility.TaskRepository
	Machines *facility.MachineRepository
	Audit    *audit.Recorder
	MQTT     *mqtt.Client // optional: metrics connectivity flag only
	Version  string
}

// Server is the CampusGate HTTP server.
type Server struct {
	cfg       config.API
	policy    auth.Policy
	upstream  config.Upstream
	logger    *logging.Logger
	db        *database.DB
	sessions  *session.Manager
	store     session.Store
	users     *auth.UserRepository
	roles     *auth.RoleRepository
	tasks     *facility.TaskRepository
	machines  *facility.MachineRepository
	audit     *audit.Recorder
	mqtt      *mqtt.Client
	version   string
	startTime time.Time
	client    *http.Client
	server    *http.Server
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if deps.Users == nil || deps.Roles == nil {
		return nil, fmt.Errorf("user and role repositories are required")
	}
	if deps.Audit == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}

	return &Server{
		cfg: deps.Config,
		policy: auth.Policy{
			MinUsernameLength: deps.Policy.MinUsernameLength,
			MinPasswordLength: deps.Policy.MinPasswordLength,
		},
		upstream:  deps.Upstream,
		logger:    deps.Logger,
		db:        deps.DB,
		sessions:  deps.Sessions,
		store:     deps.Store,
		users:     deps.Users,
		roles:     deps.Roles,
		tasks:     deps.Tasks,
		machines:  deps.Machines,
		audit:     deps.Audit,
		mqtt:      deps.MQTT,
		version:   deps.Version,
		startTime: time.Now(),
		client:    &http.Client{Timeout: deps.Upstream.Timeout()},
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting for in-flight
// requests up to the shutdown timeout.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
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
