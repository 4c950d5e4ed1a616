package facility

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lucaferri/campusgate/internal/infrastructure/database"
)

// MachineRepository persists areas and the machines installed in them.
type MachineRepository struct {
	db *database.DB
}

// NewMachineRepository creates a repository backed by the given database.
func NewMachineRepository(db *database.DB) *MachineRepository {
	return &MachineRepository{db: db}
}

// CreateArea inserts a named area.
func (r *MachineRepository) CreateArea(ctx context.Context, name string) (*Area, error) {
	area := &Area{ID: "are-" + uuid.NewString()[:8], Name: name}
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO areas (id, name) VALUES (?, ?)", area.ID, area.Name); err != nil {
		return nil, fmt.Errorf("create area: %w", err)
	}
	return area, nil
}

// GetAreaByName looks an area up by name. Returns ErrAreaNotFound if absent.
func (r *MachineRepository) GetAreaByName(ctx context.Context, name string) (*Area, error) {
	var area Area
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name FROM areas WHERE name = ?", name).Scan(&area.ID, &area.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAreaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get area: %w", err)
	}
	return &area, nil
}

// CreateMachine installs a machine in an area.
func (r *MachineRepository) CreateMachine(ctx context.Context, areaID, name, kind string) (*Machine, error) {
	machine := &Machine{
		ID:     "mch-" + uuid.NewString()[:8],
		AreaID: areaID,
		Name:   name,
		Kind:   kind,
		Status: "unknown",
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO machines (id, area_id, name, kind, status)
		VALUES (?, ?, ?, ?, ?)`,
		machine.ID, nullable(machine.AreaID), machine.Name, machine.Kind, machine.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("create machine: %w", err)
	}
	return machine, nil
}

// List returns all machines, optionally narrowed to one area.
func (r *MachineRepository) List(ctx context.Context, areaID string) ([]*Machine, error) {
	query := "SELECT id, COALESCE(area_id, ''), name, kind, status FROM machines"
	args := []any{}
	if areaID != "" {
		query += " WHERE area_id = ?"
		args = append(args, areaID)
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	defer rows.Close()

	machines := []*Machine{}
	for rows.Next() {
		var m Machine
		if err := rows.Scan(&m.ID, &m.AreaID, &m.Name, &m.Kind, &m.Status); err != nil {
			return nil, fmt.Errorf("list machines: %w", err)
		}
		machines = append(machines, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	return machines, nil
}

// SetStatus updates a machine's status string.
func (r *MachineRepository) SetStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE machines SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("update machine status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update machine status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update machine status: machine %q not found", id)
	}
	return nil
}
