package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	appsvc "todo-api/internal/app"
	"todo-api/internal/bootstrap"
	"todo-api/internal/cache"
	"todo-api/internal/pkg/jwtutil"
	"todo-api/internal/pkg/password"
	rabbitmqClient "todo-api/internal/platform/rabbitmq"
	"todo-api/internal/repository"
	"todo-api/internal/transport/http/handler"
	"todo-api/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) (*gin.Engine, error) {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.AccessLog(app.Logger, app.Metrics), gin.Recovery())

	hasher, err := password.NewHasher(password.Config{
		Algorithm:  cfg.Auth.PasswordAlgorithm,
		BcryptCost: cfg.Auth.BcryptCost,
		Argon2id: password.Argon2idParams{
			MemoryKiB:   cfg.Auth.Argon2MemoryKiB,
			Iterations:  cfg.Auth.Argon2Iterations,
			Parallelism: cfg.Auth.Argon2Parallelism,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build password hasher failed: %w", err)
	}
	codec, err := jwtutil.NewCodec(cfg.Auth.JWTSecret, cfg.TokenTTL())
	if err != nil {
		return nil, fmt.Errorf("build token codec failed: %w", err)
	}

	// Left as nil interfaces when the backing service is disabled.
	var accountCache appsvc.AccountCache
	if app.Redis != nil {
		accountCache = cache.NewAccountCache(app.Redis, cfg.AccountCacheTTL(), cfg.AccountTombstoneTTL())
	}
	var publisher appsvc.EventPublisher
	if app.MQConn != nil {
		publisher = rabbitmqClient.NewEventPublisher(app.MQConn, cfg.RabbitMQ.EventQueue)
	}

	userRepo := repository.NewUserRepository(app.DB)
	todoRepo := repository.NewTodoRepository(app.DB)

	authService, err := appsvc.NewAuthService(userRepo, hasher, codec, publisher, app.Logger)
	if err != nil {
		return nil, err
	}
	accountService := appsvc.NewAccountService(userRepo, hasher, accountCache, publisher, app.Logger)
	todoService := appsvc.NewTodoService(todoRepo, publisher, app.Logger)

	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(authService, app.Metrics, app.Logger)
	userHandler := handler.NewUserHandler(accountService, app.Logger)
	todoHandler := handler.NewTodoHandler(todoService, app.Logger)
	requireAuth := middleware.Authenticate(authService, app.Metrics)

	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(app.Metrics.Handler()))

	users := router.Group("/users")
	users.POST("", userHandler.Create)
	users.GET("", requireAuth, userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", requireAuth, userHandler.Update)
	users.DELETE("/:id", requireAuth, userHandler.Delete)

	auth := router.Group("/auth")
	auth.POST("/token", authHandler.Token)
	auth.POST("/refresh_token", requireAuth, authHandler.Refresh)

	todos := router.Group("/todos", requireAuth)
	todos.POST("", todoHandler.Create)
	todos.GET("", todoHandler.List)
	todos.GET("/:id", todoHandler.Get)
	todos.PATCH("/:id", todoHandler.Update)
	todos.DELETE("/:id", todoHandler.Delete)

	return router, nil
}
