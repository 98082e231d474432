package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/inquiry-service/internal/api/http"
	"github.com/spec-kit/inquiry-service/internal/api/http/handlers"
	"github.com/spec-kit/inquiry-service/internal/auth"
	"github.com/spec-kit/inquiry-service/internal/config"
	"github.com/spec-kit/inquiry-service/internal/events"
	"github.com/spec-kit/inquiry-service/internal/observability"
	"github.com/spec-kit/inquiry-service/internal/persistence"
	"github.com/spec-kit/inquiry-service/internal/repository"
	"github.com/spec-kit/inquiry-service/internal/service"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var inquiryRepo repository.InquiryRepository
	var userRepo repository.UserRepository
	if pool := pg.PoolHandle(); pool != nil {
		inquiryRepo = repository.NewInquiryRepository(pool)
		userRepo = repository.NewUserRepository(pool)
	} else {
		logger.Warn("running with in-memory store; data will not survive restarts")
		inquiryRepo = repository.NewMemoryInquiryRepository()
		userRepo = repository.NewMemoryUserRepository()
	}

	dispatcher := events.NewInMemoryDispatcher()
	events.NewNotificationLogger(logger).Register(dispatcher)
	events.NewStreamPublisher(redis.Client, cfg.Events.StreamName, logger).Register(dispatcher)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	inquiryService := service.NewInquiryService(service.InquiryDependencies{
		InquiryRepo:    inquiryRepo,
		CourseResolver: service.NewDisplayCourseResolver(),
		Dispatcher:     dispatcher,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Inquiries:      handlers.NewInquiriesHandler(inquiryService),
		AdminInquiries: handlers.NewAdminInquiriesHandler(inquiryService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
