package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	"github.com/spec-kit/vaccine-scheduler/internal/events"
	"github.com/spec-kit/vaccine-scheduler/internal/repository"
	"github.com/spec-kit/vaccine-scheduler/internal/service"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

func TestRestockAccumulates(t *testing.T) {
	store := repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	inventory := service.NewInventoryService(store, dispatcher)
	ctx := context.Background()

	var restocked []events.Event
	dispatcher.Subscribe(events.EventDosesRestocked, func(_ context.Context, e events.Event) error {
		restocked = append(restocked, e)
		return nil
	})

	inv, err := inventory.Restock(ctx, carol, "Pfizer", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, inv.Doses)

	inv, err = inventory.Restock(ctx, carol, "Pfizer", 3)
	require.NoError(t, err)
	assert.Equal(t, 8, inv.Doses)

	got, err := inventory.Get(ctx, carol, "Pfizer")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Doses)
	assert.Len(t, restocked, 2)
}

func TestRestockValidation(t *testing.T) {
	inventory := service.NewInventoryService(repository.NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := inventory.Restock(ctx, domain.Identity{}, "Pfizer", 5)
	assert.True(t, apperrors.IsCode(err, "NOT_AUTHENTICATED"))

	_, err = inventory.Restock(ctx, alice, "Pfizer", 5)
	assert.True(t, apperrors.IsCode(err, "WRONG_ROLE"))

	_, err = inventory.Restock(ctx, carol, "  ", 5)
	assert.True(t, apperrors.IsCode(err, "INVALID_INPUT"))

	_, err = inventory.Restock(ctx, carol, "Pfizer", 0)
	assert.True(t, apperrors.IsCode(err, "INVALID_INPUT"))

	_, err = inventory.Restock(ctx, carol, "Pfizer", -2)
	assert.True(t, apperrors.IsCode(err, "INVALID_INPUT"))
}

func TestGetUnknownVaccine(t *testing.T) {
	inventory := service.NewInventoryService(repository.NewMemoryStore(), nil)
	_, err := inventory.Get(context.Background(), alice, "Moderna")
	assert.True(t, apperrors.IsCode(err, "UNKNOWN_VACCINE"))
}
