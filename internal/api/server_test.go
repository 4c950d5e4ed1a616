package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lucaferri/campusgate/internal/audit"
	"github.com/lucaferri/campusgate/internal/auth"
	"github.com/lucaferri/campusgate/internal/facility"
	"github.com/lucaferri/campusgate/internal/infrastructure/config"
	"github.com/lucaferri/campusgate/internal/infrastructure/database"
	"github.com/lucaferri/campusgate/internal/infrastructure/logging"
	"github.com/lucaferri/campusgate/internal/session"
	_ "github.com/lucaferri/campusgate/migrations"
)

// fixture bundles a fully wired server with direct access to its parts.
type fixture struct {
	server   *Server
	router   http.Handler
	db       *database.DB
	sessions *session.Manager
	users    *auth.UserRepository
	roles    *auth.RoleRepository
	tasks    *facility.TaskRepository
	machines *facility.MachineRepository
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithUpstream(t, "http://127.0.0.1:1") // unreachable unless overridden
}

func newFixtureWithUpstream(t *testing.T, upstreamURL string) *fixture {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "api_test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	store := session.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	logger := &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	users := auth.NewUserRepository(db)
	roles := auth.NewRoleRepository(db)
	sessions := session.NewManager(
		auth.NewCodec("0123456789abcdef0123456789abcdef"),
		store, users, roles,
		session.Config{AccessTTL: time.Minute, RefreshTTL: time.Hour},
		logger.Logger,
	)
	recorder := audit.NewRecorder(audit.NewRepository(db), nil, logger.Logger)

	server, err := New(Deps{
		Config:   config.API{Host: "127.0.0.1", Port: 0},
		Policy:   config.Policy{MinUsernameLength: 3, MinPasswordLength: 8},
		Upstream: config.Upstream{BaseURL: upstreamURL, TimeoutSeconds: 2},
		Logger:   logger,
		DB:       db,
		Sessions: sessions,
		Store:    store,
		Users:    users,
		Roles:    roles,
		Tasks:    facility.NewTaskRepository(db),
		Machines: facility.NewMachineRepository(db),
		Audit:    recorder,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return &fixture{
		server:   server,
		router:   server.buildRouter(),
		db:       db,
		sessions: sessions,
		users:    users,
		roles:    roles,
		tasks:    facility.NewTaskRepository(db),
		machines: facility.NewMachineRepository(db),
	}
}

// seedUser creates an account with roles assigned.
func (f *fixture) seedUser(t *testing.T, username, password string, roleNames ...string) *auth.User {
	t.Helper()
	ctx := context.Background()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	user, err := f.users.Create(ctx, username, hash)
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	for _, name := range roleNames {
		if err := f.roles.Assign(ctx, user.ID, name); err != nil {
			t.Fatalf("assigning role %q: %v", name, err)
		}
	}
	return user
}

// login runs a session login and returns the token pair.
func (f *fixture) login(t *testing.T, username, password string) *session.TokenPair {
	t.Helper()
	pair, err := f.sessions.Login(context.Background(), username, password)
	if err != nil {
		t.Fatalf("logging in %q: %v", username, err)
	}
	return pair
}

// do performs a request against the router and returns the recorder.
func (f *fixture) do(method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil && method != http.MethodPut {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// doForm posts form values.
func (f *fixture) doForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New() with empty deps should fail")
	}
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("GET /health body = %s", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /metrics status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, field := range []string{"goroutines", "uptime_seconds", "session_store", "open_connections"} {
		if !strings.Contains(body, field) {
			t.Errorf("metrics body missing %q", field)
		}
	}
}

func TestBanner_OptionalSession(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "mario", "secret-password")

	// Anonymous request succeeds without a username.
	rec := f.do(http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "mario") {
		t.Error("anonymous banner leaked a username")
	}

	// Authenticated request includes the username.
	pair := f.login(t, "mario", "secret-password")
	rec = f.do(http.MethodGet, "/", pair.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated GET / status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "mario") {
		t.Errorf("authenticated banner body = %s, want username included", rec.Body.String())
	}

	// A garbage token on an optional route is still rejected.
	rec = f.do(http.MethodGet, "/", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET / with bad token status = %d, want 401", rec.Code)
	}
}
