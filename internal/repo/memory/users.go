package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo mirrors the postgres repo for router-level tests and local
// hacking without a database.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
	tasks *TasksRepo
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

// CascadeTo wires the tasks repo so deleting a user takes their tasks with
// it, the way the postgres foreign key does.
func (r *UsersRepo) CascadeTo(tasks *TasksRepo) {
	r.tasks = tasks
}

func (r *UsersRepo) Create(ctx context.Context, username, email, passwordHash, role string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Username == username || existing.Email == email {
			return user.User{}, user.ErrDuplicate
		}
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Username == username {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.items))

	for _, u := range r.items {
		out = append(out, u)
	}

	return out, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.items[id]

	if !ok {
		return user.ErrNotFound
	}

	delete(r.items, id)

	if r.tasks != nil {
		r.tasks.DeleteByOwner(ctx, id)
	}

	return nil
}

// Promote flips a user to the admin role; test helper standing in for the
// startup seed.
func (r *UsersRepo) Promote(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if ok {
		u.Role = user.RoleAdmin
		r.items[id] = u
	}
}
