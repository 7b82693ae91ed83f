package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/vaccine-scheduler/internal/api/http"
	"github.com/spec-kit/vaccine-scheduler/internal/api/http/handlers"
	"github.com/spec-kit/vaccine-scheduler/internal/auth"
	"github.com/spec-kit/vaccine-scheduler/internal/config"
	"github.com/spec-kit/vaccine-scheduler/internal/events"
	"github.com/spec-kit/vaccine-scheduler/internal/observability"
	"github.com/spec-kit/vaccine-scheduler/internal/persistence"
	"github.com/spec-kit/vaccine-scheduler/internal/repository"
	"github.com/spec-kit/vaccine-scheduler/internal/service"
	"github.com/spec-kit/vaccine-scheduler/internal/worker"
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
	accountRepo := repository.NewAccountRepository(pool)
	inventoryRepo := repository.NewInventoryRepository(pool)
	availabilityRepo := repository.NewAvailabilityRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	scheduleCache := service.NewRedisScheduleCache(redis, cfg.Cache.ScheduleTTL(), logger)

	accountService := service.NewAccountService(*cfg, accountRepo)
	bookingService := service.NewBookingService(service.BookingDependencies{
		BookingRepo:     bookingRepo,
		ReservationRepo: reservationRepo,
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Cache:           scheduleCache,
	})
	scheduleService := service.NewScheduleService(availabilityRepo, dispatcher, scheduleCache)
	inventoryService := service.NewInventoryService(inventoryRepo, dispatcher)
	notificationService := service.NewNotificationService(logger, cfg.Notification)
	notificationWorker := worker.NewNotificationWorker(dispatcher, notificationService, logger, cfg.Notification.QueueSize)
	notificationWorker.Start(ctx)
	defer notificationWorker.Stop()

	authMiddleware := auth.NewAuthMiddleware(accountService.TokenManager(), accountRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Accounts:       handlers.NewAccountsHandler(accountService),
		Schedule:       handlers.NewScheduleHandler(scheduleService),
		Inventory:      handlers.NewInventoryHandler(inventoryService),
		Reservations:   handlers.NewReservationsHandler(bookingService),
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
