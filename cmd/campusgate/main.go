// CampusGate - Authentication and Authorisation Gateway
//
// CampusGate fronts the campus application suite: it issues and verifies
// session tokens, enforces role-based access, stores accounts and tasks,
// and proxies sensor queries to the downstream monitoring API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lucaferri/campusgate/migrations"

	"github.com/lucaferri/campusgate/internal/api"
	"github.com/lucaferri/campusgate/internal/audit"
	"github.com/lucaferri/campusgate/internal/auth"
	"github.com/lucaferri/campusgate/internal/facility"
	"github.com/lucaferri/campusgate/internal/infrastructure/config"
	"github.com/lucaferri/campusgate/internal/infrastructure/database"
	"github.com/lucaferri/campusgate/internal/infrastructure/logging"
	"github.com/lucaferri/campusgate/internal/infrastructure/mqtt"
	"github.com/lucaferri/campusgate/internal/session"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting CampusGate", "version", version, "commit", commit)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open the credential database and bring the schema up to date
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	// Session store: Redis in production, in-process for development
	store, err := openSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing session store")
		if closeErr := store.Close(); closeErr != nil {
			log.Error("error closing session store", "error", closeErr)
		}
	}()

	users := auth.NewUserRepository(db)
	roles := auth.NewRoleRepository(db)

	// First boot: make sure someone can log in
	if password, seedErr := auth.SeedOwner(ctx, users, roles, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding owner account: %w", seedErr)
	} else if password != "" {
		log.Warn("initial owner password (shown once)", "password", password)
	}

	sessions := session.NewManager(
		auth.NewCodec(cfg.Security.JWT.Secret),
		store, users, roles,
		session.Config{
			AccessTTL:  cfg.Security.JWT.AccessTTL(),
			RefreshTTL: cfg.Security.JWT.RefreshTTL(),
		},
		log.Logger,
	)

	// Audit trail, mirrored to MQTT when a broker is configured
	var mqttClient *mqtt.Client
	var publisher audit.Publisher
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT, log.Logger)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			mqttClient.Close()
		}()
		publisher = mqttClient
		log.Info("MQTT connected", "host", cfg.MQTT.Host, "port", cfg.MQTT.Port)
	} else {
		log.Info("MQTT disabled; audit events stay local")
	}
	recorder := audit.NewRecorder(audit.NewRepository(db), publisher, log.Logger)

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Policy:   cfg.Security.Policy,
		Upstream: cfg.Upstream,
		Logger:   log,
		DB:       db,
		Sessions: sessions,
		Store:    store,
		Users:    users,
		Roles:    roles,
		Tasks:    facility.NewTaskRepository(db),
		Machines: facility.NewMachineRepository(db),
		Audit:    recorder,
		MQTT:     mqttClient,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// API server, MQTT, session store, database.

	log.Info("CampusGate stopped")
	return nil
}

// openSessionStore connects to Redis, or falls back to the in-memory
// store when Redis is disabled in configuration.
func openSessionStore(ctx context.Context, cfg *config.Config, log *logging.Logger) (session.Store, error) {
	if !cfg.Redis.Enabled {
		log.Warn("redis disabled; using in-memory session store (sessions will not survive restarts)")
		return session.NewMemoryStore(), nil
	}

	store, err := session.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	log.Info("redis connected", "addr", cfg.Redis.Addr)
	return store, nil
}

// getConfigPath returns the configuration file path.
// Uses CAMPUSGATE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CAMPUSGATE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
