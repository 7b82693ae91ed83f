package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// RequirePatient ensures a patient is authenticated.
func RequirePatient() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewNotAuthenticated()
		}
		if principal.Identity.Role != domain.RolePatient {
			return apperrors.NewWrongRole("patient")
		}
		return c.Next()
	}
}

// RequireCaregiver ensures a caregiver is authenticated.
func RequireCaregiver() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewNotAuthenticated()
		}
		if principal.Identity.Role != domain.RoleCaregiver {
			return apperrors.NewWrongRole("caregiver")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures the caller is authenticated as either role.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewNotAuthenticated()
		}
		return c.Next()
	}
}
