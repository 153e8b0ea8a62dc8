package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/clubhouse/internal/api/http"
	"github.com/spec-kit/clubhouse/internal/api/http/handlers"
	"github.com/spec-kit/clubhouse/internal/auth"
	"github.com/spec-kit/clubhouse/internal/config"
	"github.com/spec-kit/clubhouse/internal/events"
	"github.com/spec-kit/clubhouse/internal/observability"
	"github.com/spec-kit/clubhouse/internal/persistence"
	"github.com/spec-kit/clubhouse/internal/repository"
	"github.com/spec-kit/clubhouse/internal/service"
	"github.com/spec-kit/clubhouse/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartActivityLogger(dispatcher, logger)

	codec := auth.NewCookieCodec(cfg.Auth.CookieSecret, cfg.Auth.SessionTTL())
	sessions := auth.NewRedisSessionManager(redis.Client, cfg.Auth.SessionTTL())

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   userRepo,
		Sessions:   sessions,
		Codec:      codec,
		Dispatcher: dispatcher,
	})
	feedService := service.NewFeedService(messageRepo, dispatcher, logger)
	authMiddleware := auth.NewMiddleware(codec, sessions, userRepo)

	metrics := observability.NewMetrics()

	engine := html.New("./web/views", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	authHandler := handlers.NewAuthHandler(authService, cfg.Auth.SessionTTL())
	feedHandler := handlers.NewFeedHandler(feedService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           authHandler,
		Feed:           feedHandler,
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
