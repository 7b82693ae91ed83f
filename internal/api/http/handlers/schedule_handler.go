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

// ScheduleHandler exposes availability publication and schedule search.
type ScheduleHandler struct {
	schedule *service.ScheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(schedule *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

// Search handles GET /schedule/:date.
func (h *ScheduleHandler) Search(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewNotAuthenticated()
	}

	date, err := domain.ParseDate(c.Params("date"))
	if err != nil {
		return err
	}

	caregivers, err := h.schedule.SearchSchedule(c.UserContext(), principal.Identity, date)
	if err != nil {
		return err
	}
	if caregivers == nil {
		caregivers = []string{}
	}

	return c.JSON(fiber.Map{
		"data": dto.ScheduleResponse{Date: date.String(), Caregivers: caregivers},
	})
}

// PublishAvailability handles POST /availability.
func (h *ScheduleHandler) PublishAvailability(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewNotAuthenticated()
	}

	var req dto.PublishAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return err
	}

	if err := h.schedule.PublishAvailability(c.UserContext(), principal.Identity, date); err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"caregiver": principal.Identity.Username,
			"date":      date.String(),
		},
	})
}
