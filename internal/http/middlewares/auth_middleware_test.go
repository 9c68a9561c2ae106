package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verifyFn func(token string) (string, error)
}

func (f *fakeVerifier) VerifyAccessToken(token string) (string, error) {
	if f.verifyFn != nil {
		return f.verifyFn(token)
	}
	return "", errors.New("no verifier configured")
}

type fakeUserGetter struct {
	getFn func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeUserGetter) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func newGuardedRouter(m *middlewares.AuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	chain := append([]gin.HandlerFunc{m.RequireAuth()}, extra...)
	chain = append(chain, func(c *gin.Context) {
		u, ok := middlewares.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"err": "no identity"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": u.ID, "role": u.Role})
	})

	r.GET("/protected", chain...)

	return r
}

func TestRequireAuth(t *testing.T) {
	alice := user.User{ID: "alice-id", Username: "alice", Role: user.RoleUser}

	tests := []struct {
		name           string
		authHeader     string
		verifyFn       func(string) (string, error)
		getFn          func(context.Context, string) (user.User, error)
		wantStatusCode int
	}{
		{
			name:           "missing_header",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "not_bearer",
			authHeader:     "Basic abc123",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "empty_token",
			authHeader:     "Bearer ",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "invalid_token",
			authHeader: "Bearer bad-token",
			verifyFn: func(string) (string, error) {
				return "", errors.New("invalid token")
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			// token is fine but the subject is gone; same answer as a bad
			// token so existence never leaks
			name:       "deleted_user",
			authHeader: "Bearer good-token",
			verifyFn: func(string) (string, error) {
				return "ghost-id", nil
			},
			getFn: func(ctx context.Context, id string) (user.User, error) {
				return user.User{}, user.ErrNotFound
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "success",
			authHeader: "Bearer good-token",
			verifyFn: func(string) (string, error) {
				return alice.ID, nil
			},
			getFn: func(ctx context.Context, id string) (user.User, error) {
				if id != alice.ID {
					return user.User{}, user.ErrNotFound
				}
				return alice, nil
			},
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			m := middlewares.NewAuthMiddleware(
				&fakeVerifier{verifyFn: tt.verifyFn},
				&fakeUserGetter{getFn: tt.getFn},
			)

			r := newGuardedRouter(m)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name           string
		role           string
		wantStatusCode int
	}{
		{name: "admin_allowed", role: user.RoleAdmin, wantStatusCode: http.StatusOK},
		{name: "user_forbidden", role: user.RoleUser, wantStatusCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			caller := user.User{ID: "caller-id", Role: tt.role}

			m := middlewares.NewAuthMiddleware(
				&fakeVerifier{verifyFn: func(string) (string, error) { return caller.ID, nil }},
				&fakeUserGetter{getFn: func(ctx context.Context, id string) (user.User, error) { return caller, nil }},
			)

			r := newGuardedRouter(m, m.RequireRole(user.RoleAdmin))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer token")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
