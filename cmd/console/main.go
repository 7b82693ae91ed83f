package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/spec-kit/vaccine-scheduler/internal/cli"
	"github.com/spec-kit/vaccine-scheduler/internal/config"
	"github.com/spec-kit/vaccine-scheduler/internal/events"
	"github.com/spec-kit/vaccine-scheduler/internal/observability"
	"github.com/spec-kit/vaccine-scheduler/internal/persistence"
	"github.com/spec-kit/vaccine-scheduler/internal/repository"
	"github.com/spec-kit/vaccine-scheduler/internal/service"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
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

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	inventoryRepo := repository.NewInventoryRepository(pool)
	availabilityRepo := repository.NewAvailabilityRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	accountService := service.NewAccountService(*cfg, accountRepo)
	bookingService := service.NewBookingService(service.BookingDependencies{
		BookingRepo:     bookingRepo,
		ReservationRepo: reservationRepo,
		Dispatcher:      dispatcher,
		Metrics:         metrics,
	})
	scheduleService := service.NewScheduleService(availabilityRepo, dispatcher, nil)
	inventoryService := service.NewInventoryService(inventoryRepo, dispatcher)

	commands := cli.NewDispatcher(accountService, bookingService, scheduleService, inventoryService, cli.NewSession())

	fmt.Println("Welcome to the Vaccine Reservation Scheduling Application!")
	fmt.Println(cli.Usage)
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}

		output, err := commands.Execute(ctx, scanner.Text())
		if errors.Is(err, cli.ErrQuit) {
			fmt.Println(output)
			return
		}
		if err != nil {
			fmt.Println(apperrors.ToDomainError(err).Message)
			continue
		}
		if output != "" {
			fmt.Println(output)
		}
	}
}
