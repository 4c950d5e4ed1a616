package audit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucaferri/campusgate/internal/infrastructure/database"
	_ "github.com/lucaferri/campusgate/migrations"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "audit_test.db"),
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
	return NewRepository(db)
}

func TestRepository_CreateAndList(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for _, entry := range []*Entry{
		{Action: ActionLogin, UserID: "usr-1", Source: "203.0.113.9"},
		{Action: ActionLogin, UserID: "usr-2", Source: "203.0.113.10"},
		{Action: ActionLogout, UserID: "usr-1", Source: "203.0.113.9"},
		{Action: ActionLoginFailed, Source: "203.0.113.11", Details: "unknown user"},
	} {
		if err := repo.Create(ctx, entry); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if entry.ID == "" || entry.CreatedAt.IsZero() {
			t.Fatalf("Create() left entry unfilled: %+v", entry)
		}
	}

	all, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("List() = %d entries, want 4", len(all))
	}

	logins, err := repo.List(ctx, Filter{Action: ActionLogin})
	if err != nil {
		t.Fatalf("List(action) error = %v", err)
	}
	if len(logins) != 2 {
		t.Errorf("List(action=login) = %d entries, want 2", len(logins))
	}

	usr1, err := repo.List(ctx, Filter{UserID: "usr-1"})
	if err != nil {
		t.Fatalf("List(user) error = %v", err)
	}
	if len(usr1) != 2 {
		t.Errorf("List(user=usr-1) = %d entries, want 2", len(usr1))
	}

	limited, err := repo.List(ctx, Filter{Limit: 1})
	if err != nil {
		t.Fatalf("List(limit) error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("List(limit=1) = %d entries, want 1", len(limited))
	}
}

type fakePublisher struct {
	connected bool
	topics    []string
	payloads  [][]byte
}

func (p *fakePublisher) Publish(topic string, payload []byte) error {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *fakePublisher) IsConnected() bool { return p.connected }

func TestRecorder_PublishesWhenConnected(t *testing.T) {
	repo := testRepo(t)
	pub := &fakePublisher{connected: true}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := NewRecorder(repo, pub, logger)
	ctx := context.Background()

	recorder.Record(ctx, ActionLogin, "usr-1", "203.0.113.9", "")

	if len(pub.topics) != 1 || !strings.HasSuffix(pub.topics[0], "/login") {
		t.Fatalf("published topics = %v, want one ending in /login", pub.topics)
	}
	var entry Entry
	if err := json.Unmarshal(pub.payloads[0], &entry); err != nil {
		t.Fatalf("decoding published payload: %v", err)
	}
	if entry.Action != ActionLogin || entry.UserID != "usr-1" {
		t.Errorf("published entry = %+v", entry)
	}

	stored, err := recorder.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("stored entries = %d, want 1", len(stored))
	}
}

func TestRecorder_SkipsPublishWhenDisconnected(t *testing.T) {
	repo := testRepo(t)
	pub := &fakePublisher{connected: false}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := NewRecorder(repo, pub, logger)

	recorder.Record(context.Background(), ActionLogout, "usr-1", "203.0.113.9", "")
	if len(pub.topics) != 0 {
		t.Errorf("published %d messages while disconnected, want 0", len(pub.topics))
	}
}

func TestRecorder_NilPublisher(t *testing.T) {
	repo := testRepo(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := NewRecorder(repo, nil, logger)

	// Must not panic and must still store the entry.
	recorder.Record(context.Background(), ActionLogin, "usr-1", "203.0.113.9", "")
	stored, err := recorder.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("stored entries = %d, want 1", len(stored))
	}
}
