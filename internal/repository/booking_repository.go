package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// BookingRepository executes the booking transaction and its inverse.
// Each call is a single Postgres transaction: the dose decrement, slot
// deletion and reservation insert land together or not at all.
type BookingRepository interface {
	Reserve(ctx context.Context, patient string, date domain.Date, vaccine string) (*domain.Reservation, error)
	Cancel(ctx context.Context, reservation *domain.Reservation) error
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository instantiates repository.
func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

func (r *bookingRepository) Reserve(ctx context.Context, patient string, date domain.Date, vaccine string) (*domain.Reservation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	defer tx.Rollback(ctx)

	// Guarded decrement. Re-validates doses > 0 at commit time; a
	// concurrent booking that drained the stock leaves zero rows here.
	cmd, err := tx.Exec(ctx,
		`UPDATE vaccines SET doses = doses - 1, updated_at = NOW()
         WHERE name = $1 AND doses > 0`, vaccine)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	if cmd.RowsAffected() == 0 {
		var doses int
		err := tx.QueryRow(ctx, `SELECT doses FROM vaccines WHERE name = $1`, vaccine).Scan(&doses)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnknownVaccine(vaccine)
		}
		if err != nil {
			return nil, apperrors.NewStorageFailure(err)
		}
		return nil, apperrors.NewOutOfStock(vaccine)
	}

	caregiver, err := consumeSlot(ctx, tx, date)
	if err != nil {
		return nil, err
	}

	reservation := &domain.Reservation{
		ID:                uuid.NewString(),
		VaccineName:       vaccine,
		PatientUsername:   patient,
		CaregiverUsername: caregiver,
		Date:              date,
	}
	if err := tx.QueryRow(ctx,
		`INSERT INTO reservations (id, vaccine_name, patient_username, caregiver_username, slot_date)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING created_at`,
		reservation.ID, reservation.VaccineName, reservation.PatientUsername,
		reservation.CaregiverUsername, reservation.Date.Time(),
	).Scan(&reservation.CreatedAt); err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return reservation, nil
}

// Cancel is the symmetric inverse of Reserve: delete the reservation,
// restore one dose, and recreate the caregiver's slot for that day.
func (r *bookingRepository) Cancel(ctx context.Context, reservation *domain.Reservation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperrors.NewStorageFailure(err)
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, reservation.ID)
	if err != nil {
		return apperrors.NewStorageFailure(err)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("appointment", map[string]any{"id": reservation.ID})
	}

	if _, err := tx.Exec(ctx,
		`UPDATE vaccines SET doses = doses + 1, updated_at = NOW() WHERE name = $1`,
		reservation.VaccineName); err != nil {
		return apperrors.NewStorageFailure(err)
	}

	// The caregiver may have republished the day in the meantime.
	if _, err := tx.Exec(ctx,
		`INSERT INTO availability_slots (caregiver_username, slot_date)
         VALUES ($1, $2)
         ON CONFLICT (caregiver_username, slot_date) DO NOTHING`,
		reservation.CaregiverUsername, reservation.Date.Time()); err != nil {
		return apperrors.NewStorageFailure(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewStorageFailure(err)
	}
	return nil
}
