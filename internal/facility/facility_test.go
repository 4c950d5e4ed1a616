package facility

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/lucaferri/campusgate/internal/auth"
	"github.com/lucaferri/campusgate/internal/infrastructure/database"
	_ "github.com/lucaferri/campusgate/migrations"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "facility_test.db"),
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
	return db
}

func testUser(t *testing.T, db *database.DB, username string) *auth.User {
	t.Helper()
	user, err := auth.NewUserRepository(db).Create(context.Background(), username, "hash")
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

func TestTaskRepository_ListByUser(t *testing.T) {
	db := testDB(t)
	tasks := NewTaskRepository(db)
	machines := NewMachineRepository(db)
	ctx := context.Background()

	mario := testUser(t, db, "mario")
	luigi := testUser(t, db, "luigi")
	kitchen, err := machines.CreateArea(ctx, "kitchen")
	if err != nil {
		t.Fatalf("CreateArea() error = %v", err)
	}

	if _, err := tasks.Create(ctx, mario.ID, kitchen.ID, "descale the machine"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := tasks.Create(ctx, mario.ID, "", "general tidy-up"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := tasks.Create(ctx, luigi.ID, kitchen.ID, "restock beans"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	all, err := tasks.ListByUser(ctx, mario.ID, "")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListByUser() = %d tasks, want 2", len(all))
	}

	inKitchen, err := tasks.ListByUser(ctx, mario.ID, kitchen.ID)
	if err != nil {
		t.Fatalf("ListByUser(area) error = %v", err)
	}
	if len(inKitchen) != 1 || inKitchen[0].Description != "descale the machine" {
		t.Errorf("ListByUser(area) = %+v, want the kitchen task only", inKitchen)
	}

	none, err := tasks.ListByUser(ctx, "usr-nobody", "")
	if err != nil {
		t.Fatalf("ListByUser(unknown) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ListByUser(unknown) = %d tasks, want 0", len(none))
	}
}

func TestTaskRepository_SetCompleted(t *testing.T) {
	db := testDB(t)
	tasks := NewTaskRepository(db)
	ctx := context.Background()

	mario := testUser(t, db, "mario")
	task, err := tasks.Create(ctx, mario.ID, "", "descale the machine")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.Completed {
		t.Error("new task is already completed")
	}

	if err := tasks.SetCompleted(ctx, task.ID, true); err != nil {
		t.Fatalf("SetCompleted() error = %v", err)
	}
	got, err := tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.Completed {
		t.Error("Completed = false after SetCompleted(true)")
	}

	if err := tasks.SetCompleted(ctx, "tsk-nope", true); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("SetCompleted(missing) error = %v, want ErrTaskNotFound", err)
	}
	if _, err := tasks.GetByID(ctx, "tsk-nope"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrTaskNotFound", err)
	}
}

func TestMachineRepository_ListByArea(t *testing.T) {
	db := testDB(t)
	machines := NewMachineRepository(db)
	ctx := context.Background()

	kitchen, err := machines.CreateArea(ctx, "kitchen")
	if err != nil {
		t.Fatalf("CreateArea() error = %v", err)
	}
	lab, err := machines.CreateArea(ctx, "lab")
	if err != nil {
		t.Fatalf("CreateArea() error = %v", err)
	}

	if _, err := machines.CreateMachine(ctx, kitchen.ID, "espresso-1", "coffee"); err != nil {
		t.Fatalf("CreateMachine() error = %v", err)
	}
	if _, err := machines.CreateMachine(ctx, lab.ID, "printer-1", "3d-printer"); err != nil {
		t.Fatalf("CreateMachine() error = %v", err)
	}

	all, err := machines.List(ctx, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List() = %d machines, want 2", len(all))
	}

	inLab, err := machines.List(ctx, lab.ID)
	if err != nil {
		t.Fatalf("List(area) error = %v", err)
	}
	if len(inLab) != 1 || inLab[0].Name != "printer-1" {
		t.Errorf("List(area) = %+v, want printer-1 only", inLab)
	}
}

func TestMachineRepository_StatusAndAreaLookup(t *testing.T) {
	db := testDB(t)
	machines := NewMachineRepository(db)
	ctx := context.Background()

	kitchen, err := machines.CreateArea(ctx, "kitchen")
	if err != nil {
		t.Fatalf("CreateArea() error = %v", err)
	}
	machine, err := machines.CreateMachine(ctx, kitchen.ID, "espresso-1", "coffee")
	if err != nil {
		t.Fatalf("CreateMachine() error = %v", err)
	}
	if machine.Status != "unknown" {
		t.Errorf("new machine status = %q, want unknown", machine.Status)
	}

	if err := machines.SetStatus(ctx, machine.ID, "online"); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	listed, err := machines.List(ctx, kitchen.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 1 || listed[0].Status != "online" {
		t.Errorf("status after update = %+v, want online", listed)
	}

	got, err := machines.GetAreaByName(ctx, "kitchen")
	if err != nil {
		t.Fatalf("GetAreaByName() error = %v", err)
	}
	if got.ID != kitchen.ID {
		t.Errorf("GetAreaByName() ID = %q, want %q", got.ID, kitchen.ID)
	}
	if _, err := machines.GetAreaByName(ctx, "attic"); !errors.Is(err, ErrAreaNotFound) {
		t.Errorf("GetAreaByName(missing) error = %v, want ErrAreaNotFound", err)
	}
}
