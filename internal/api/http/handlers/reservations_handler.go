package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vaccine-scheduler/internal/api/dto"
	"github.com/spec-kit/vaccine-scheduler/internal/auth"
	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	"github.com/spec-kit/vaccine-scheduler/internal/service"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// ReservationsHandler exposes booking, listing and cancellation.
type ReservationsHandler struct {
	booking *service.BookingService
}

// NewReservationsHandler constructs handler.
func NewReservationsHandler(booking *service.BookingService) *ReservationsHandler {
	return &ReservationsHandler{booking: booking}
}

// Reserve handles POST /reservations.
func (h *ReservationsHandler) Reserve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewNotAuthenticated()
	}

	var req dto.ReserveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return err
	}

	reservation, err := h.booking.Book(c.UserContext(), principal.Identity, date, req.Vaccine)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.FromReservation(*reservation),
	})
}

// List handles GET /reservations.
func (h *ReservationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewNotAuthenticated()
	}

	reservations, err := h.booking.ListAppointments(c.UserContext(), principal.Identity)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.FromReservations(reservations),
	})
}

// Cancel handles DELETE /reservations/:id.
func (h *ReservationsHandler) Cancel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewNotAuthenticated()
	}

	if err := h.booking.Cancel(c.UserContext(), principal.Identity, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
