package task

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateTaskRequest, ownerID string) Task {
	now := time.Now().UTC()

	status := req.Status
	if status == "" {
		status = StatusPending
	}

	priority := DefaultPriority
	if req.Priority != nil {
		priority = *req.Priority
	}

	return Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Resolve fills the defaults a sparse update payload implies: empty status
// becomes pending, nil priority becomes the default. Every writer of an
// update goes through this one helper so the fill rule cannot drift.
func (r UpdateTaskRequest) Resolve() (status string, priority int) {
	status = r.Status
	if status == "" {
		status = StatusPending
	}

	priority = DefaultPriority
	if r.Priority != nil {
		priority = *r.Priority
	}

	return status, priority
}

// ApplyUpdate replaces every mutable field wholesale. Defaults are filled
// the same way as on create so a sparse payload behaves predictably.
func (t Task) ApplyUpdate(req UpdateTaskRequest) Task {
	status, priority := req.Resolve()

	t.Title = req.Title
	t.Description = req.Description
	t.Status = status
	t.Priority = priority
	t.DueDate = req.DueDate
	t.UpdatedAt = time.Now().UTC()

	return t
}
