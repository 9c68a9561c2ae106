package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// UsersStore is everything the HTTP layer needs from the users repository.
// Both the postgres and the in-memory implementation satisfy it.
type UsersStore interface {
	Create(ctx context.Context, username, email, passwordHash, role string) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Delete(ctx context.Context, id string) error
}

type Stores struct {
	Users UsersStore
	Tasks handlers.TasksRepository
	Ping  func() error
}

type authLimiter interface {
	Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc
}

// NewRouter is the production wiring: postgres stores, optional redis for
// the shared auth rate limit.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client, cfg config.Config) *gin.Engine {
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	st := Stores{
		Users: postgres.NewUsersRepo(pool, prom),
		Tasks: postgres.NewTasksRepo(pool, prom),
		Ping:  ping,
	}

	return buildRouter(log, cfg, st, rdb, prom, reg)
}

// NewRouterWithStores wires arbitrary store implementations; router-level
// tests feed it the in-memory repos.
func NewRouterWithStores(log *slog.Logger, cfg config.Config, st Stores, rdb *redis.Client) *gin.Engine {
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	return buildRouter(log, cfg, st, rdb, prom, reg)
}

func buildRouter(log *slog.Logger, cfg config.Config, st Stores, rdb *redis.Client, prom *observability.Prom, reg *prometheus.Registry) *gin.Engine {
	if os.Getenv("APP_ENV") != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(otelgin.Middleware("taskhub"))
	r.Use(prom.GinHandleMiddleware())

	// docs + ops endpoints

	r.GET("/", func(ctx *gin.Context) {
		ctx.Redirect(http.StatusTemporaryRedirect, "/docs")
	})
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	health := handlers.NewHealthHandler(st.Ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	// wire up auth

	jwtManager := newJWTManager(cfg)
	authmw := middlewares.NewAuthMiddleware(jwtManager, st.Users)

	authHandler := handlers.NewAuthHandler(st.Users, st.Users, jwtManager, prom)

	var limiter authLimiter

	if rdb != nil {
		limiter = middlewares.NewRedisRateLimiter(rdb, cfg.RateLimitAuthPerMinute, time.Minute)
	} else {
		limiter = middlewares.NewRateLimiter(cfg.RateLimitAuthPerMinute, time.Minute)
	}

	authGroup := r.Group("/auth")
	authGroup.Use(middlewares.RequireJSON())
	authGroup.POST("/register", limiter.Middleware(middlewares.KeyByIP), authHandler.Register)
	authGroup.POST("/login", limiter.Middleware(middlewares.KeyByIP), authHandler.Login)
	authGroup.GET("/me", authmw.RequireAuth(), authHandler.Me)

	// task CRUD, all behind the guard

	listCache := cache.New(5 * time.Second)
	tasksHandler := handlers.NewTasksHandlerWithCache(st.Tasks, listCache)

	tasks := r.Group("/tasks", middlewares.RequireJSON(), authmw.RequireAuth())
	tasks.POST("", tasksHandler.CreateTask)
	tasks.GET("", tasksHandler.ListTasks)
	tasks.GET("/:id", tasksHandler.GetTaskByID)
	tasks.PUT("/:id", tasksHandler.UpdateTask)
	tasks.DELETE("/:id", tasksHandler.DeleteTask)

	// admin surface; shares the list cache because user deletion cascades
	// to tasks

	usersHandler := handlers.NewUsersHandlerWithCache(st.Users, listCache)

	users := r.Group("/users", authmw.RequireAuth(), authmw.RequireRole(user.RoleAdmin))
	users.GET("", usersHandler.ListUsers)
	users.DELETE("/:id", usersHandler.DeleteUser)

	return r
}

func newJWTManager(cfg config.Config) *auth.Manager {
	return auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
}
