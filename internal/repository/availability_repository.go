package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// AvailabilityRepository is the ledger of caregiver-declared open days.
type AvailabilityRepository interface {
	// Publish inserts a slot; republishing the same (caregiver, date)
	// pair is rejected, not merged.
	Publish(ctx context.Context, caregiver string, date domain.Date) error
	// ListByDate returns caregivers with an open slot on the date,
	// ordered by username.
	ListByDate(ctx context.Context, date domain.Date) ([]string, error)
	// Restore re-inserts a slot consumed by a booking that was since
	// cancelled. Tolerates the caregiver having republished the day.
	Restore(ctx context.Context, caregiver string, date domain.Date) error
}

type availabilityRepository struct {
	pool *pgxpool.Pool
}

// NewAvailabilityRepository instantiates repository.
func NewAvailabilityRepository(pool *pgxpool.Pool) AvailabilityRepository {
	return &availabilityRepository{pool: pool}
}

func (r *availabilityRepository) Publish(ctx context.Context, caregiver string, date domain.Date) error {
	const query = `
        INSERT INTO availability_slots (caregiver_username, slot_date)
        VALUES ($1, $2)`

	if _, err := r.pool.Exec(ctx, query, caregiver, date.Time()); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperrors.NewDuplicateSlot(caregiver, date.String())
		}
		return err
	}
	return nil
}

func (r *availabilityRepository) ListByDate(ctx context.Context, date domain.Date) ([]string, error) {
	const query = `
        SELECT caregiver_username FROM availability_slots
        WHERE slot_date = $1
        ORDER BY caregiver_username`

	rows, err := r.pool.Query(ctx, query, date.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var caregivers []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, err
		}
		caregivers = append(caregivers, username)
	}
	return caregivers, rows.Err()
}

func (r *availabilityRepository) Restore(ctx context.Context, caregiver string, date domain.Date) error {
	const query = `
        INSERT INTO availability_slots (caregiver_username, slot_date)
        VALUES ($1, $2)
        ON CONFLICT (caregiver_username, slot_date) DO NOTHING`

	_, err := r.pool.Exec(ctx, query, caregiver, date.Time())
	return err
}

// consumeSlot deletes exactly one slot for the date inside the given
// transaction, picking the lexicographically smallest caregiver
// username. SKIP LOCKED keeps concurrent bookings from queueing on a
// slot that is already being consumed.
func consumeSlot(ctx context.Context, tx pgx.Tx, date domain.Date) (string, error) {
	const query = `
        DELETE FROM availability_slots
        WHERE (caregiver_username, slot_date) IN (
            SELECT caregiver_username, slot_date FROM availability_slots
            WHERE slot_date = $1
            ORDER BY caregiver_username
            LIMIT 1
            FOR UPDATE SKIP LOCKED
        )
        RETURNING caregiver_username`

	var caregiver string
	if err := tx.QueryRow(ctx, query, date.Time()).Scan(&caregiver); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNoCaregiverAvailable(date.String())
		}
		return "", err
	}
	return caregiver, nil
}
