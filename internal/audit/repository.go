package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lucaferri/campusgate/internal/infrastructure/database"
)

// Entry is one audit record.
type Entry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	UserID    string    `json:"user_id,omitempty"`
	Source    string    `json:"source"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows a List call. Zero values mean "any".
type Filter struct {
	Action string
	UserID string
	Limit  int
}

const defaultListLimit = 100

// Repository persists audit entries.
type Repository struct {
	db *database.DB
}

// NewRepository creates a repository backed by the given database.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an entry, assigning its ID and timestamp.
func (r *Repository) Create(ctx context.Context, entry *Entry) error {
	entry.ID = "aud-" + uuid.NewString()[:8]
	entry.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, action, user_id, source, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Action, nullable(entry.UserID), entry.Source,
		nullable(entry.Details), entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}
	return nil
}

// List returns entries matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	query := `
		SELECT id, action, COALESCE(user_id, ''), source, COALESCE(details, ''), created_at
		FROM audit_logs WHERE 1=1`
	args := []any{}
	if filter.Action != "" {
		query += " AND action = ?"
		args = append(args, filter.Action)
	}
	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		var entry Entry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.UserID, &entry.Source, &entry.Details, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if entry.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
