package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/accounts-service/internal/api/http"
	"github.com/spec-kit/accounts-service/internal/api/http/handlers"
	"github.com/spec-kit/accounts-service/internal/auth"
	"github.com/spec-kit/accounts-service/internal/config"
	"github.com/spec-kit/accounts-service/internal/events"
	"github.com/spec-kit/accounts-service/internal/observability"
	"github.com/spec-kit/accounts-service/internal/persistence"
	"github.com/spec-kit/accounts-service/internal/repository"
	"github.com/spec-kit/accounts-service/internal/service"
	"github.com/spec-kit/accounts-service/internal/worker"
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

	rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer rdb.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	itemRepo := repository.NewItemRepository(pool)

	dispatcher := events.NewBus(logger)
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	hasher := auth.NewPasswordHasher(cfg.Security.PasswordBcryptRounds)
	tokens := auth.NewTokenManager(cfg.Security.JWTSecretKey, cfg.Security.JWTIssuer)

	var (
		denylist    auth.DenyList
		redisPinger handlers.Pinger
	)
	gateOpts := []auth.GateOption{auth.WithLogger(logger)}
	if rdb != nil {
		denylist = auth.NewRedisDenyList(rdb.Client)
		redisPinger = rdb
		gateOpts = append(gateOpts, auth.WithDenyList(denylist))
	}

	userService := service.NewUserService(userRepo, hasher, dispatcher, logger)
	authService := service.NewAuthService(cfg.Security, service.AuthDependencies{
		UserRepo:   userRepo,
		Hasher:     hasher,
		Tokens:     tokens,
		DenyList:   denylist,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	itemService := service.NewItemService(itemRepo, logger)

	if err := userService.EnsureDefaultAdmin(ctx, cfg.Admin); err != nil {
		logger.Fatal("failed to create default admin", zap.Error(err))
	}

	gate := auth.NewGate(authService.TokenManager(), userRepo, gateOpts...)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: !cfg.App.IsDevelopment(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisPinger),
		Auth:           handlers.NewAuthHandler(authService, userService),
		Users:          handlers.NewUsersHandler(userService),
		Items:          handlers.NewItemsHandler(itemService),
		AuthMiddleware: auth.NewAuthMiddleware(gate, logger),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
