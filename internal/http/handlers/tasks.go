package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TasksRepository interface {
	Create(ctx context.Context, req task.CreateTaskRequest, ownerID string) (task.Task, error)
	GetByID(ctx context.Context, id string) (task.Task, error)
	List(ctx context.Context, filter task.ListTasksFilter) ([]task.Task, int, error)
	Update(ctx context.Context, id string, req task.UpdateTaskRequest) (task.Task, error)
	Delete(ctx context.Context, id string) error
}

type TasksHandler struct {
	repo      TasksRepository
	listCache *cache.Cache
}

func NewTasksHandler(repo TasksRepository) *TasksHandler {
	return &TasksHandler{repo: repo}
}

// NewTasksHandlerWithCache layers a short-TTL response cache over the list
// endpoint. Every write path bumps the cache epoch, so staleness is capped
// at one in-flight read.
func NewTasksHandlerWithCache(repo TasksRepository, c *cache.Cache) *TasksHandler {
	return &TasksHandler{repo: repo, listCache: c}
}

type PaginatedTasks struct {
	Items []task.Task `json:"items"`
	Total int         `json:"total"`
	Skip  int         `json:"skip"`
	Limit int         `json:"limit"`
}

type listTasksQuery struct {
	Skip   int    `form:"skip,default=0" binding:"omitempty,min=0"`
	Limit  int    `form:"limit,default=10" binding:"min=1,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=pending in_progress done"`
	Mine   bool   `form:"mine,default=true"`
}

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	t, err := h.repo.Create(cctx, req, u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create task")
		return
	}

	h.invalidateListCache()

	ctx.JSON(http.StatusCreated, t)
}

func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var q listTasksQuery

	if !BindQuery(ctx, &q) {
		return
	}

	filter := task.ListTasksFilter{
		OwnerID: authz.ListScope(u, q.Mine),
		Limit:   q.Limit,
		Offset:  q.Skip,
	}

	if q.Status != "" {
		filter.Status = &q.Status
	}

	key := listCacheKey(filter)

	if h.listCache != nil {
		if v, ok := h.listCache.Get(key); ok {
			if resp, ok := v.(PaginatedTasks); ok {
				RespondJSONWithETag(ctx, http.StatusOK, resp)
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	items, total, err := h.repo.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list tasks")
		return
	}

	resp := PaginatedTasks{
		Items: items,
		Total: total,
		Skip:  q.Skip,
		Limit: q.Limit,
	}

	if h.listCache != nil {
		h.listCache.Set(key, resp)
	}

	RespondJSONWithETag(ctx, http.StatusOK, resp)
}

func (h *TasksHandler) GetTaskByID(ctx *gin.Context) {
	t, ok := h.loadAndAuthorize(ctx)

	if !ok {
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, t)
}

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	var req task.UpdateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	t, ok := h.loadAndAuthorize(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	updated, err := h.repo.Update(cctx, t.ID, req)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}
		RespondInternal(ctx, "Could not update task")
		return
	}

	h.invalidateListCache()

	ctx.JSON(http.StatusOK, updated)
}

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	t, ok := h.loadAndAuthorize(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	err := h.repo.Delete(cctx, t.ID)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}
		RespondInternal(ctx, "Could not delete task")
		return
	}

	h.invalidateListCache()

	ctx.Status(http.StatusNoContent)
}

// loadAndAuthorize fetches the task and applies the ownership rule.
// Existence is decided before ownership: a missing or malformed id is 404
// for everyone, an existing id the caller doesn't own is 403. Neither
// answer leaks the other signal.
func (h *TasksHandler) loadAndAuthorize(ctx *gin.Context) (task.Task, bool) {
	u, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return task.Task{}, false
	}

	id := ctx.Param("id")

	// ids are UUIDs; anything else can't name a row, so don't ask the store
	if uuid.Validate(id) != nil {
		RespondNotFound(ctx, "Task not found")
		return task.Task{}, false
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	t, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return task.Task{}, false
		}
		RespondInternal(ctx, "Could not fetch task")
		return task.Task{}, false
	}

	if !authz.CanAccess(u, t) {
		RespondForbidden(ctx, "Not allowed")
		return task.Task{}, false
	}

	return t, true
}

func (h *TasksHandler) invalidateListCache() {
	if h.listCache != nil {
		h.listCache.Invalidate()
	}
}

func listCacheKey(f task.ListTasksFilter) string {
	owner := "all"
	if f.OwnerID != nil {
		owner = *f.OwnerID
	}

	status := "any"
	if f.Status != nil {
		status = *f.Status
	}

	return fmt.Sprintf("tasks:%s:%s:%d:%d", owner, status, f.Offset, f.Limit)
}
