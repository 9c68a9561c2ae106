package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/taskhub/internal/domain/task"
)

type TasksRepo struct {
	mu    sync.RWMutex
	items map[string]task.Task
}

func NewTasksRepo() *TasksRepo {
	return &TasksRepo{
		items: make(map[string]task.Task),
	}
}

func (r *TasksRepo) Create(ctx context.Context, req task.CreateTaskRequest, ownerID string) (task.Task, error) {
	t := task.NewFromCreateRequest(req, ownerID)

	r.mu.Lock()
	r.items[t.ID] = t
	r.mu.Unlock()

	return t, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id string) (task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]

	if !ok {
		return task.Task{}, task.ErrNotFound
	}

	return t, nil
}

func (r *TasksRepo) List(ctx context.Context, filter task.ListTasksFilter) ([]task.Task, int, error) {
	r.mu.RLock()

	matched := make([]task.Task, 0, len(r.items))

	for _, t := range r.items {
		if filter.OwnerID != nil && t.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		matched = append(matched, t)
	}

	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)

	if filter.Offset >= total {
		return []task.Task{}, total, nil
	}

	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}

	return matched[filter.Offset:end], total, nil
}

func (r *TasksRepo) Update(ctx context.Context, id string, req task.UpdateTaskRequest) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok {
		return task.Task{}, task.ErrNotFound
	}

	t = t.ApplyUpdate(req)
	r.items[id] = t

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.items[id]

	if !ok {
		return task.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

// DeleteByOwner is the in-memory stand-in for ON DELETE CASCADE.
func (r *TasksRepo) DeleteByOwner(ctx context.Context, ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.items {
		if t.OwnerID == ownerID {
			delete(r.items, id)
		}
	}
}
