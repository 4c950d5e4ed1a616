package facility

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lucaferri/campusgate/internal/infrastructure/database"
)

// TaskRepository persists user tasks.
type TaskRepository struct {
	db *database.DB
}

// NewTaskRepository creates a repository backed by the given database.
func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task for a user. areaID may be empty for tasks not tied
// to a location.
func (r *TaskRepository) Create(ctx context.Context, userID, areaID, description string) (*Task, error) {
	task := &Task{
		ID:          "tsk-" + uuid.NewString()[:8],
		UserID:      userID,
		AreaID:      areaID,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, area_id, description, completed, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`,
		task.ID, task.UserID, nullable(task.AreaID), task.Description,
		task.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// GetByID fetches a single task. Returns ErrTaskNotFound if absent.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, COALESCE(area_id, ''), description, completed, created_at
		FROM tasks WHERE id = ?`, id)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// ListByUser returns a user's tasks, newest first. A non-empty areaID
// narrows the result to that area.
func (r *TaskRepository) ListByUser(ctx context.Context, userID, areaID string) ([]*Task, error) {
	query := `
		SELECT id, user_id, COALESCE(area_id, ''), description, completed, created_at
		FROM tasks WHERE user_id = ?`
	args := []any{userID}
	if areaID != "" {
		query += " AND area_id = ?"
		args = append(args, areaID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// SetCompleted updates a task's completion flag.
func (r *TaskRepository) SetCompleted(ctx context.Context, id string, completed bool) error {
	flag := 0
	if completed {
		flag = 1
	}
	res, err := r.db.ExecContext(ctx, "UPDATE tasks SET completed = ? WHERE id = ?", flag, id)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var task Task
	var completed int
	var createdAt string
	err := row.Scan(&task.ID, &task.UserID, &task.AreaID, &task.Description, &completed, &createdAt)
	if err != nil {
		return nil, err
	}
	task.Completed = completed != 0
	if task.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &task, nil
}

// nullable maps "" to NULL so FK columns stay clean.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
