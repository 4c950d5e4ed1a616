package facility

import (
	"errors"
	"time"
)

// Area is a named part of the campus, such as a room or a floor.
type Area struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Machine is a piece of equipment installed in an area.
type Machine struct {
	ID     string `json:"id"`
	AreaID string `json:"area_id,omitempty"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
}

// Task is a unit of work assigned to a user, optionally tied to an area.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	AreaID      string    `json:"area_id,omitempty"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrNotOwner     = errors.New("task belongs to another user")
	ErrAreaNotFound = errors.New("area not found")
)
