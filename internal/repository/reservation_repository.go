package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
)

// ReservationRepository reads the append-only reservation log.
type ReservationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	// ListByPatient returns the patient's reservations ordered by date
	// then id, a stable order for repeated listings.
	ListByPatient(ctx context.Context, patient string) ([]domain.Reservation, error)
	ListByCaregiver(ctx context.Context, caregiver string) ([]domain.Reservation, error)
}

type reservationRepository struct {
	pool *pgxpool.Pool
}

// NewReservationRepository instantiates repository.
func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &reservationRepository{pool: pool}
}

const reservationColumns = `id, vaccine_name, patient_username, caregiver_username, slot_date, created_at`

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	const query = `
        SELECT ` + reservationColumns + `
        FROM reservations WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	return scanReservation(row)
}

func (r *reservationRepository) ListByPatient(ctx context.Context, patient string) ([]domain.Reservation, error) {
	const query = `
        SELECT ` + reservationColumns + `
        FROM reservations
        WHERE patient_username = $1
        ORDER BY slot_date, id`
	return r.list(ctx, query, patient)
}

func (r *reservationRepository) ListByCaregiver(ctx context.Context, caregiver string) ([]domain.Reservation, error) {
	const query = `
        SELECT ` + reservationColumns + `
        FROM reservations
        WHERE caregiver_username = $1
        ORDER BY slot_date, id`
	return r.list(ctx, query, caregiver)
}

func (r *reservationRepository) list(ctx context.Context, query, username string) ([]domain.Reservation, error) {
	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *res)
	}
	return result, rows.Err()
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	var day time.Time
	if err := row.Scan(
		&res.ID,
		&res.VaccineName,
		&res.PatientUsername,
		&res.CaregiverUsername,
		&day,
		&res.CreatedAt,
	); err != nil {
		return nil, err
	}
	res.Date = domain.DateOf(day)
	return &res, nil
}
