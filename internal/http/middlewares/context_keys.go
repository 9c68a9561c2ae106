package middlewares

import (
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserKey      = "auth.user"
	CtxRequestIDKey = "request_id"
)

// Helpers so handlers don't need to know the magic keys.

func SetCurrentUser(c *gin.Context, u user.User) {
	c.Set(ctxUserKey, u)
}

func CurrentUser(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
