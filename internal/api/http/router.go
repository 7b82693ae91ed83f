package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vaccine-scheduler/internal/api/http/handlers"
	"github.com/spec-kit/vaccine-scheduler/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Schedule       *handlers.ScheduleHandler
	Inventory      *handlers.InventoryHandler
	Reservations   *handlers.ReservationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/patients/register", cfg.Accounts.RegisterPatient)
	authGroup.Post("/patients/login", cfg.Accounts.LoginPatient)
	authGroup.Post("/caregivers/register", cfg.Accounts.RegisterCaregiver)
	authGroup.Post("/caregivers/login", cfg.Accounts.LoginCaregiver)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	protected.Get("/schedule/:date", auth.RequireAnyRole(), cfg.Schedule.Search)
	protected.Post("/availability", auth.RequireCaregiver(), cfg.Schedule.PublishAvailability)

	protected.Post("/inventory/doses", auth.RequireCaregiver(), cfg.Inventory.Restock)
	protected.Get("/inventory/:name", auth.RequireAnyRole(), cfg.Inventory.Get)

	protected.Post("/reservations", auth.RequirePatient(), cfg.Reservations.Reserve)
	protected.Get("/reservations", auth.RequireAnyRole(), cfg.Reservations.List)
	protected.Delete("/reservations/:id", auth.RequireAnyRole(), cfg.Reservations.Cancel)
}
