package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UsersRepository interface {
	List(ctx context.Context) ([]user.User, error)
	Delete(ctx context.Context, id string) error
}

// UsersHandler backs the admin-only surface. Routing guards it with
// RequireRole("admin"); nothing here re-checks the role.
type UsersHandler struct {
	repo UsersRepository
	// the task-list cache; deleting a user cascades their tasks away, so
	// the cached pages must die with them
	listCache *cache.Cache
}

func NewUsersHandler(repo UsersRepository) *UsersHandler {
	return &UsersHandler{repo: repo}
}

func NewUsersHandlerWithCache(repo UsersRepository, c *cache.Cache) *UsersHandler {
	return &UsersHandler{repo: repo, listCache: c}
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	users, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// DeleteUser removes an account. The tasks it owns go with it; the cascade
// lives at the persistence boundary, not here.
func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondNotFound(ctx, "User not found")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not delete user")
		return
	}

	if h.listCache != nil {
		h.listCache.Invalidate()
	}

	ctx.Status(http.StatusNoContent)
}
