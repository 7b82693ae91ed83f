package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// InventoryRepository is the dose ledger for vaccine products.
type InventoryRepository interface {
	// Increment restocks a vaccine, creating the row on first sight.
	Increment(ctx context.Context, name string, n int) (*domain.VaccineInventory, error)
	// DecrementIfPositive consumes n doses only if the count stays
	// non-negative; the guard runs inside the same statement.
	DecrementIfPositive(ctx context.Context, name string, n int) error
	Get(ctx context.Context, name string) (*domain.VaccineInventory, error)
}

type inventoryRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository instantiates repository.
func NewInventoryRepository(pool *pgxpool.Pool) InventoryRepository {
	return &inventoryRepository{pool: pool}
}

func (r *inventoryRepository) Increment(ctx context.Context, name string, n int) (*domain.VaccineInventory, error) {
	const query = `
        INSERT INTO vaccines (name, doses)
        VALUES ($1, $2)
        ON CONFLICT (name) DO UPDATE
            SET doses = vaccines.doses + EXCLUDED.doses, updated_at = NOW()
        RETURNING name, doses, created_at, updated_at`

	var inv domain.VaccineInventory
	if err := r.pool.QueryRow(ctx, query, name, n).Scan(
		&inv.Name,
		&inv.Doses,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inventoryRepository) DecrementIfPositive(ctx context.Context, name string, n int) error {
	const query = `
        UPDATE vaccines SET doses = doses - $2, updated_at = NOW()
        WHERE name = $1 AND doses >= $2`

	cmd, err := r.pool.Exec(ctx, query, name, n)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.Get(ctx, name); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnknownVaccine(name)
			}
			return err
		}
		return apperrors.NewOutOfStock(name)
	}
	return nil
}

func (r *inventoryRepository) Get(ctx context.Context, name string) (*domain.VaccineInventory, error) {
	const query = `
        SELECT name, doses, created_at, updated_at
        FROM vaccines WHERE name = $1`

	var inv domain.VaccineInventory
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&inv.Name,
		&inv.Doses,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &inv, nil
}
