package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	"github.com/spec-kit/vaccine-scheduler/internal/events"
	"github.com/spec-kit/vaccine-scheduler/internal/repository"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// InventoryService manages the vaccine dose ledger.
type InventoryService struct {
	inventory  repository.InventoryRepository
	dispatcher events.Dispatcher
}

// NewInventoryService constructs the service.
func NewInventoryService(inventory repository.InventoryRepository, dispatcher events.Dispatcher) *InventoryService {
	return &InventoryService{inventory: inventory, dispatcher: dispatcher}
}

// Restock adds doses for a vaccine, creating the inventory row the
// first time the name is seen. No upper bound is enforced.
func (s *InventoryService) Restock(ctx context.Context, identity domain.Identity, vaccine string, count int) (*domain.VaccineInventory, error) {
	if identity.Username == "" {
		return nil, apperrors.NewNotAuthenticated()
	}
	if !identity.IsCaregiver() {
		return nil, apperrors.NewWrongRole("caregiver")
	}
	vaccine = strings.TrimSpace(vaccine)
	if vaccine == "" {
		return nil, apperrors.NewValidationError("vaccine name required", nil)
	}
	if count <= 0 {
		return nil, apperrors.NewValidationError("dose count must be positive",
			map[string]any{"count": count})
	}

	inv, err := s.inventory.Increment(ctx, vaccine, count)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventDosesRestocked,
			Actor:     events.Actor{Username: identity.Username, Role: identity.Role},
			Timestamp: time.Now().UTC(),
			Payload: events.DosesRestockedPayload{
				VaccineName: inv.Name,
				Added:       count,
				Total:       inv.Doses,
			},
		})
	}
	return inv, nil
}

// Get returns the current inventory for a vaccine.
func (s *InventoryService) Get(ctx context.Context, identity domain.Identity, vaccine string) (*domain.VaccineInventory, error) {
	if identity.Username == "" {
		return nil, apperrors.NewNotAuthenticated()
	}

	inv, err := s.inventory.Get(ctx, vaccine)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnknownVaccine(vaccine)
		}
		return nil, apperrors.MapError(err)
	}
	return inv, nil
}
