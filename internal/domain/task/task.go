package task

import (
	"errors"
	"time"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

const DefaultPriority = 3

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	OwnerID     string     `json:"ownerId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

var ErrNotFound = errors.New("task not found")

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description" binding:"omitempty,max=5000"`
	Status      string     `json:"status" binding:"omitempty,oneof=pending in_progress done"`
	Priority    *int       `json:"priority" binding:"omitempty,min=1,max=5"`
	DueDate     *time.Time `json:"dueDate" binding:"omitempty"`
}

// a full replace payload, owner is never part of it.
type UpdateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description" binding:"omitempty,max=5000"`
	Status      string     `json:"status" binding:"omitempty,oneof=pending in_progress done"`
	Priority    *int       `json:"priority" binding:"omitempty,min=1,max=5"`
	DueDate     *time.Time `json:"dueDate" binding:"omitempty"`
}

// with pointers if optional, it will be nil
type ListTasksFilter struct {
	OwnerID *string
	Status  *string
	Limit   int
	Offset  int
}
