package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vaccine-scheduler/internal/api/dto"
	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	"github.com/spec-kit/vaccine-scheduler/internal/service"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// AccountsHandler exposes registration and login for both roles.
type AccountsHandler struct {
	accounts *service.AccountService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accounts *service.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: accounts}
}

// RegisterPatient handles POST /auth/patients/register.
func (h *AccountsHandler) RegisterPatient(c *fiber.Ctx) error {
	return h.register(c, domain.RolePatient)
}

// RegisterCaregiver handles POST /auth/caregivers/register.
func (h *AccountsHandler) RegisterCaregiver(c *fiber.Ctx) error {
	return h.register(c, domain.RoleCaregiver)
}

// LoginPatient handles POST /auth/patients/login.
func (h *AccountsHandler) LoginPatient(c *fiber.Ctx) error {
	return h.login(c, domain.RolePatient)
}

// LoginCaregiver handles POST /auth/caregivers/login.
func (h *AccountsHandler) LoginCaregiver(c *fiber.Ctx) error {
	return h.login(c, domain.RoleCaregiver)
}

func (h *AccountsHandler) register(c *fiber.Ctx, role domain.Role) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	account, err := h.accounts.Register(c.UserContext(), role, req.Username, req.Password)
	if err != nil {
		return err
	}

	token, exp, err := h.accounts.IssueToken(account)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"account": fiber.Map{
				"username": account.Username,
				"role":     account.Role,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

func (h *AccountsHandler) login(c *fiber.Ctx, role domain.Role) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	account, err := h.accounts.Login(c.UserContext(), role, req.Username, req.Password)
	if err != nil {
		return err
	}

	token, exp, err := h.accounts.IssueToken(account)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"account": fiber.Map{
				"username": account.Username,
				"role":     account.Role,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}
