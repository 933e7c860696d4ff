package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/classroom-gateway/internal/api/http"
	"github.com/spec-kit/classroom-gateway/internal/api/http/handlers"
	"github.com/spec-kit/classroom-gateway/internal/auth"
	"github.com/spec-kit/classroom-gateway/internal/config"
	"github.com/spec-kit/classroom-gateway/internal/events"
	"github.com/spec-kit/classroom-gateway/internal/observability"
	"github.com/spec-kit/classroom-gateway/internal/persistence"
	"github.com/spec-kit/classroom-gateway/internal/realtime"
	"github.com/spec-kit/classroom-gateway/internal/repository"
	"github.com/spec-kit/classroom-gateway/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Missing or colliding role secrets abort startup, never a request.
	registry, err := auth.NewSecretRegistry(cfg.Auth)
	if err != nil {
		logger.Fatal("invalid auth configuration", zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	permRepo := repository.NewPermissionRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	hub := realtime.NewHub(cfg.Realtime, logger, metrics)
	go hub.Run(ctx)
	events.RegisterHubRelay(dispatcher, hub)

	tokens := auth.NewTokenService(registry, cfg.Auth.TokenTTL())
	limiter := service.NewLoginLimiter(redis.Client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow(), logger)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:       userRepo,
		PermissionRepo: permRepo,
		Tokens:         tokens,
		Limiter:        limiter,
		Dispatcher:     dispatcher,
	})
	accessMiddleware := auth.NewAccessMiddleware(tokens, registry)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:   handlers.NewAuthHandler(authService),
		Access: accessMiddleware,
		Hub:    hub,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
