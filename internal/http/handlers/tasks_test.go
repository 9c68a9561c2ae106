package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeTasksRepo struct {
	createFn  func(ctx context.Context, req task.CreateTaskRequest, ownerID string) (task.Task, error)
	getByIDFn func(ctx context.Context, id string) (task.Task, error)
	listFn    func(ctx context.Context, filter task.ListTasksFilter) ([]task.Task, int, error)
	updateFn  func(ctx context.Context, id string, req task.UpdateTaskRequest) (task.Task, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (f *fakeTasksRepo) Create(ctx context.Context, req task.CreateTaskRequest, ownerID string) (task.Task, error) {
	return f.createFn(ctx, req, ownerID)
}

func (f *fakeTasksRepo) GetByID(ctx context.Context, id string) (task.Task, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeTasksRepo) List(ctx context.Context, filter task.ListTasksFilter) ([]task.Task, int, error) {
	return f.listFn(ctx, filter)
}

func (f *fakeTasksRepo) Update(ctx context.Context, id string, req task.UpdateTaskRequest) (task.Task, error) {
	return f.updateFn(ctx, id, req)
}

func (f *fakeTasksRepo) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

// asUser injects an already-authenticated identity, standing in for the
// token middleware.
func asUser(u user.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		middlewares.SetCurrentUser(c, u)
		c.Next()
	}
}

var (
	alice = user.User{ID: "alice-id", Username: "alice", Role: user.RoleUser}
	bob   = user.User{ID: "bob-id", Username: "bob", Role: user.RoleUser}
	root  = user.User{ID: "root-id", Username: "root", Role: user.RoleAdmin}
)

func tasksRouter(repo handlers.TasksRepository, caller user.User) *gin.Engine {
	h := handlers.NewTasksHandler(repo)

	r := gin.New()

	g := r.Group("/tasks", asUser(caller))
	g.POST("", h.CreateTask)
	g.GET("", h.ListTasks)
	g.GET("/:id", h.GetTaskByID)
	g.PUT("/:id", h.UpdateTask)
	g.DELETE("/:id", h.DeleteTask)

	return r
}

func TestCreateTask(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantStatusCode int
	}{
		{
			name:           "minimal",
			body:           `{"title":"write report"}`,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "full",
			body:           `{"title":"write report","description":"q3 numbers","status":"in_progress","priority":5}`,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing_title",
			body:           `{"description":"no title"}`,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "bad_status",
			body:           `{"title":"x","status":"paused"}`,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "priority_out_of_range",
			body:           `{"title":"x","priority":9}`,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "priority_zero",
			body:           `{"title":"x","priority":0}`,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTasksRepo{
				createFn: func(ctx context.Context, req task.CreateTaskRequest, ownerID string) (task.Task, error) {
					if ownerID != alice.ID {
						t.Errorf("task owner must be the caller, got %q", ownerID)
					}
					return task.NewFromCreateRequest(req, ownerID), nil
				},
			}

			r := tasksRouter(repo, alice)

			req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusCreated {
				var got task.Task
				if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if got.OwnerID != alice.ID {
					t.Fatalf("got ownerId %q, want %q", got.OwnerID, alice.ID)
				}
			}
		})
	}
}

func TestCreateTask_Defaults(t *testing.T) {
	var created task.Task

	repo := &fakeTasksRepo{
		createFn: func(ctx context.Context, req task.CreateTaskRequest, ownerID string) (task.Task, error) {
			created = task.NewFromCreateRequest(req, ownerID)
			return created, nil
		},
	}

	r := tasksRouter(repo, alice)

	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(`{"title":"bare"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201, body=%s", w.Code, w.Body.String())
	}

	if created.Status != task.StatusPending {
		t.Errorf("got status %q, want %q", created.Status, task.StatusPending)
	}
	if created.Priority != task.DefaultPriority {
		t.Errorf("got priority %d, want %d", created.Priority, task.DefaultPriority)
	}
	if created.Description != "" {
		t.Errorf("got description %q, want empty", created.Description)
	}
}

func TestGetTaskByID_Ownership(t *testing.T) {
	taskID := uuid.NewString()
	missingID := uuid.NewString()

	aliceTask := task.Task{ID: taskID, Title: "mine", OwnerID: alice.ID}

	repo := &fakeTasksRepo{
		getByIDFn: func(ctx context.Context, id string) (task.Task, error) {
			if id == aliceTask.ID {
				return aliceTask, nil
			}
			return task.Task{}, task.ErrNotFound
		},
	}

	tests := []struct {
		name           string
		caller         user.User
		taskID         string
		wantStatusCode int
	}{
		{"owner_reads_own", alice, taskID, http.StatusOK},
		{"stranger_gets_403", bob, taskID, http.StatusForbidden},
		{"admin_reads_any", root, taskID, http.StatusOK},
		{"missing_is_404_for_owner", alice, missingID, http.StatusNotFound},
		{"missing_is_404_for_stranger", bob, missingID, http.StatusNotFound},
		{"missing_is_404_for_admin", root, missingID, http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := tasksRouter(repo, tt.caller)

			req := httptest.NewRequest(http.MethodGet, "/tasks/"+tt.taskID, nil)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateTask(t *testing.T) {
	taskID := uuid.NewString()
	missingID := uuid.NewString()

	aliceTask := task.Task{ID: taskID, Title: "old", OwnerID: alice.ID}

	newRepo := func() *fakeTasksRepo {
		return &fakeTasksRepo{
			getByIDFn: func(ctx context.Context, id string) (task.Task, error) {
				if id == aliceTask.ID {
					return aliceTask, nil
				}
				return task.Task{}, task.ErrNotFound
			},
			updateFn: func(ctx context.Context, id string, req task.UpdateTaskRequest) (task.Task, error) {
				return aliceTask.ApplyUpdate(req), nil
			},
		}
	}

	tests := []struct {
		name           string
		caller         user.User
		taskID         string
		body           string
		wantStatusCode int
	}{
		{"owner_updates", alice, taskID, `{"title":"new"}`, http.StatusOK},
		{"admin_updates", root, taskID, `{"title":"new"}`, http.StatusOK},
		{"stranger_forbidden", bob, taskID, `{"title":"new"}`, http.StatusForbidden},
		{"missing_task", alice, missingID, `{"title":"new"}`, http.StatusNotFound},
		{"invalid_body", alice, taskID, `{"title":""}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := tasksRouter(newRepo(), tt.caller)

			req := httptest.NewRequest(http.MethodPut, "/tasks/"+tt.taskID, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateTask_OwnerNeverChanges(t *testing.T) {
	taskID := uuid.NewString()

	aliceTask := task.Task{ID: taskID, Title: "old", OwnerID: alice.ID}

	repo := &fakeTasksRepo{
		getByIDFn: func(ctx context.Context, id string) (task.Task, error) {
			return aliceTask, nil
		},
		updateFn: func(ctx context.Context, id string, req task.UpdateTaskRequest) (task.Task, error) {
			return aliceTask.ApplyUpdate(req), nil
		},
	}

	r := tasksRouter(repo, root)

	// ownerId in the body is not a recognized field and must be ignored
	body := `{"title":"hijack","ownerId":"root-id"}`

	req := httptest.NewRequest(http.MethodPut, "/tasks/"+taskID, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var got task.Task
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if got.OwnerID != alice.ID {
		t.Fatalf("owner changed on update: got %q, want %q", got.OwnerID, alice.ID)
	}
}

func TestDeleteTask(t *testing.T) {
	taskID := uuid.NewString()
	missingID := uuid.NewString()

	aliceTask := task.Task{ID: taskID, Title: "old", OwnerID: alice.ID}

	newRepo := func(deleted *bool) *fakeTasksRepo {
		return &fakeTasksRepo{
			getByIDFn: func(ctx context.Context, id string) (task.Task, error) {
				if id == aliceTask.ID {
					return aliceTask, nil
				}
				return task.Task{}, task.ErrNotFound
			},
			deleteFn: func(ctx context.Context, id string) error {
				*deleted = true
				return nil
			},
		}
	}

	tests := []struct {
		name           string
		caller         user.User
		taskID         string
		wantStatusCode int
		wantDeleted    bool
	}{
		{"owner_deletes", alice, taskID, http.StatusNoContent, true},
		{"admin_deletes", root, taskID, http.StatusNoContent, true},
		{"stranger_forbidden", bob, taskID, http.StatusForbidden, false},
		{"missing_task", alice, missingID, http.StatusNotFound, false},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			deleted := false

			r := tasksRouter(newRepo(&deleted), tt.caller)

			req := httptest.NewRequest(http.MethodDelete, "/tasks/"+tt.taskID, nil)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if deleted != tt.wantDeleted {
				t.Fatalf("deleted=%v, want %v", deleted, tt.wantDeleted)
			}
		})
	}
}

func TestMalformedTaskIDIsNotFound(t *testing.T) {
	// ids are UUID columns in postgres; a non-UUID must answer 404 without
	// ever reaching the store, where it would be a type error instead of
	// a clean no-rows result
	repo := &fakeTasksRepo{
		getByIDFn: func(ctx context.Context, id string) (task.Task, error) {
			t.Errorf("store consulted with malformed id %q", id)
			return task.Task{}, task.ErrNotFound
		},
	}

	r := tasksRouter(repo, alice)

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/tasks/does-not-exist", ""},
		{http.MethodPut, "/tasks/does-not-exist", `{"title":"x"}`},
		{http.MethodDelete, "/tasks/42", ""},
	}

	for _, tt := range tests {
		var reader io.Reader
		if tt.body != "" {
			reader = bytes.NewBufferString(tt.body)
		}

		req := httptest.NewRequest(tt.method, tt.path, reader)
		if tt.body != "" {
			req.Header.Set("Content-Type", "application/json")
		}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: got status %d, want 404, body=%s", tt.method, tt.path, w.Code, w.Body.String())
		}
	}
}

func TestListTasks_ScopeAndPagination(t *testing.T) {
	tests := []struct {
		name        string
		caller      user.User
		query       string
		wantOwner   *string
		wantStatus  *string
		wantLimit   int
		wantOffset  int
		wantHTTP    int
	}{
		{
			name:       "defaults",
			caller:     alice,
			query:      "",
			wantOwner:  &alice.ID,
			wantLimit:  10,
			wantOffset: 0,
			wantHTTP:   http.StatusOK,
		},
		{
			name:       "explicit_paging",
			caller:     alice,
			query:      "?skip=20&limit=5",
			wantOwner:  &alice.ID,
			wantLimit:  5,
			wantOffset: 20,
			wantHTTP:   http.StatusOK,
		},
		{
			name:       "status_filter",
			caller:     alice,
			query:      "?status=done",
			wantOwner:  &alice.ID,
			wantStatus: strptr("done"),
			wantLimit:  10,
			wantOffset: 0,
			wantHTTP:   http.StatusOK,
		},
		{
			name:       "non_admin_cannot_widen_scope",
			caller:     alice,
			query:      "?mine=false",
			wantOwner:  &alice.ID,
			wantLimit:  10,
			wantOffset: 0,
			wantHTTP:   http.StatusOK,
		},
		{
			name:       "admin_widens_scope",
			caller:     root,
			query:      "?mine=false",
			wantOwner:  nil,
			wantLimit:  10,
			wantOffset: 0,
			wantHTTP:   http.StatusOK,
		},
		{
			name:       "admin_defaults_to_own",
			caller:     root,
			query:      "",
			wantOwner:  &root.ID,
			wantLimit:  10,
			wantOffset: 0,
			wantHTTP:   http.StatusOK,
		},
		{
			name:     "limit_too_large",
			caller:   alice,
			query:    "?limit=500",
			wantHTTP: http.StatusUnprocessableEntity,
		},
		{
			name:     "negative_skip",
			caller:   alice,
			query:    "?skip=-1",
			wantHTTP: http.StatusUnprocessableEntity,
		},
		{
			name:     "unknown_status",
			caller:   alice,
			query:    "?status=paused",
			wantHTTP: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			var gotFilter task.ListTasksFilter

			repo := &fakeTasksRepo{
				listFn: func(ctx context.Context, filter task.ListTasksFilter) ([]task.Task, int, error) {
					gotFilter = filter
					return []task.Task{}, 0, nil
				},
			}

			r := tasksRouter(repo, tt.caller)

			req := httptest.NewRequest(http.MethodGet, "/tasks"+tt.query, nil)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantHTTP {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantHTTP, w.Body.String())
			}

			if tt.wantHTTP != http.StatusOK {
				return
			}

			if (gotFilter.OwnerID == nil) != (tt.wantOwner == nil) {
				t.Fatalf("owner scope: got %v, want %v", gotFilter.OwnerID, tt.wantOwner)
			}
			if gotFilter.OwnerID != nil && *gotFilter.OwnerID != *tt.wantOwner {
				t.Fatalf("owner scope: got %q, want %q", *gotFilter.OwnerID, *tt.wantOwner)
			}
			if (gotFilter.Status == nil) != (tt.wantStatus == nil) {
				t.Fatalf("status filter: got %v, want %v", gotFilter.Status, tt.wantStatus)
			}
			if gotFilter.Status != nil && *gotFilter.Status != *tt.wantStatus {
				t.Fatalf("status filter: got %q, want %q", *gotFilter.Status, *tt.wantStatus)
			}
			if gotFilter.Limit != tt.wantLimit {
				t.Errorf("got limit %d, want %d", gotFilter.Limit, tt.wantLimit)
			}
			if gotFilter.Offset != tt.wantOffset {
				t.Errorf("got offset %d, want %d", gotFilter.Offset, tt.wantOffset)
			}
		})
	}
}

func TestListTasks_Envelope(t *testing.T) {
	repo := &fakeTasksRepo{
		listFn: func(ctx context.Context, filter task.ListTasksFilter) ([]task.Task, int, error) {
			return []task.Task{{ID: "t1", OwnerID: alice.ID}}, 42, nil
		},
	}

	r := tasksRouter(repo, alice)

	req := httptest.NewRequest(http.MethodGet, "/tasks?skip=10&limit=1", nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var resp handlers.PaginatedTasks
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Total != 42 {
		t.Errorf("got total %d, want 42", resp.Total)
	}
	if resp.Skip != 10 || resp.Limit != 1 {
		t.Errorf("got skip=%d limit=%d, want skip=10 limit=1", resp.Skip, resp.Limit)
	}
	if len(resp.Items) != 1 {
		t.Errorf("got %d items, want 1", len(resp.Items))
	}
}

func strptr(s string) *string { return &s }
