package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vaccine-scheduler/internal/api/dto"
	"github.com/spec-kit/vaccine-scheduler/internal/auth"
	"github.com/spec-kit/vaccine-scheduler/internal/service"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// InventoryHandler exposes the dose ledger.
type InventoryHandler struct {
	inventory *service.InventoryService
}

// NewInventoryHandler constructs handler.
func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// Restock handles POST /inventory/doses.
func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewNotAuthenticated()
	}

	var req dto.RestockRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	inv, err := h.inventory.Restock(c.UserContext(), principal.Identity, req.Vaccine, req.Count)
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"data": dto.InventoryResponse{Vaccine: inv.Name, Doses: inv.Doses},
	})
}

// Get handles GET /inventory/:name.
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewNotAuthenticated()
	}

	inv, err := h.inventory.Get(c.UserContext(), principal.Identity, c.Params("name"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.InventoryResponse{Vaccine: inv.Name, Doses: inv.Doses},
	})
}
