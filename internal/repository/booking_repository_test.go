package repository_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	"github.com/spec-kit/vaccine-scheduler/internal/repository"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// Integration tests against a real Postgres. They skip unless
// DATABASE_URL points at a migrated database.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)
	_, err = pool.Exec(context.Background(), string(schema))
	require.NoError(t, err)
	return pool
}

type fixture struct {
	pool      *pgxpool.Pool
	patient   string
	caregiver string
	vaccine   string
	date      domain.Date
}

func newFixture(t *testing.T, pool *pgxpool.Pool, doses int) fixture {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]
	f := fixture{
		pool:      pool,
		patient:   "patient-" + suffix,
		caregiver: "caregiver-" + suffix,
		vaccine:   "vaccine-" + suffix,
		date:      domain.NewDate(2030, time.January, 15),
	}

	_, err := pool.Exec(ctx, `INSERT INTO patients (username, password_hash) VALUES ($1, 'x')`, f.patient)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO caregivers (username, password_hash) VALUES ($1, 'x')`, f.caregiver)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO vaccines (name, doses) VALUES ($1, $2)`, f.vaccine, doses)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM reservations WHERE patient_username = $1`, f.patient)
		_, _ = pool.Exec(ctx, `DELETE FROM availability_slots WHERE caregiver_username = $1`, f.caregiver)
		_, _ = pool.Exec(ctx, `DELETE FROM vaccines WHERE name = $1`, f.vaccine)
		_, _ = pool.Exec(ctx, `DELETE FROM caregivers WHERE username = $1`, f.caregiver)
		_, _ = pool.Exec(ctx, `DELETE FROM patients WHERE username = $1`, f.patient)
	})
	return f
}

func (f fixture) doses(t *testing.T) int {
	t.Helper()
	var doses int
	err := f.pool.QueryRow(context.Background(),
		`SELECT doses FROM vaccines WHERE name = $1`, f.vaccine).Scan(&doses)
	require.NoError(t, err)
	return doses
}

func TestReserveConsumesDoseAndSlot(t *testing.T) {
	pool := setupPool(t)
	f := newFixture(t, pool, 3)
	ctx := context.Background()

	availability := repository.NewAvailabilityRepository(pool)
	bookings := repository.NewBookingRepository(pool)
	reservations := repository.NewReservationRepository(pool)

	require.NoError(t, availability.Publish(ctx, f.caregiver, f.date))

	reservation, err := bookings.Reserve(ctx, f.patient, f.date, f.vaccine)
	require.NoError(t, err)
	assert.Equal(t, f.caregiver, reservation.CaregiverUsername)
	require.NoError(t, uuid.Validate(reservation.ID))
	assert.False(t, reservation.CreatedAt.IsZero())

	assert.Equal(t, 2, f.doses(t))

	caregivers, err := availability.ListByDate(ctx, f.date)
	require.NoError(t, err)
	assert.NotContains(t, caregivers, f.caregiver)

	mine, err := reservations.ListByPatient(ctx, f.patient)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, reservation.ID, mine[0].ID)
	assert.True(t, mine[0].Date.Equal(f.date))
}

func TestReserveFailuresRollBack(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	bookings := repository.NewBookingRepository(pool)
	availability := repository.NewAvailabilityRepository(pool)

	t.Run("no availability leaves the dose", func(t *testing.T) {
		f := newFixture(t, pool, 3)
		_, err := bookings.Reserve(ctx, f.patient, f.date, f.vaccine)
		assert.True(t, apperrors.IsCode(err, "NO_CAREGIVER_AVAILABLE"))
		assert.Equal(t, 3, f.doses(t))
	})

	t.Run("zero doses leaves the slot", func(t *testing.T) {
		f := newFixture(t, pool, 0)
		require.NoError(t, availability.Publish(ctx, f.caregiver, f.date))

		_, err := bookings.Reserve(ctx, f.patient, f.date, f.vaccine)
		assert.True(t, apperrors.IsCode(err, "OUT_OF_STOCK"))

		caregivers, err := availability.ListByDate(ctx, f.date)
		require.NoError(t, err)
		assert.Contains(t, caregivers, f.caregiver)
	})

	t.Run("unknown vaccine", func(t *testing.T) {
		f := newFixture(t, pool, 1)
		require.NoError(t, availability.Publish(ctx, f.caregiver, f.date))

		_, err := bookings.Reserve(ctx, f.patient, f.date, "no-such-"+uuid.NewString()[:8])
		assert.True(t, apperrors.IsCode(err, "UNKNOWN_VACCINE"))
		assert.Equal(t, 1, f.doses(t))
	})
}

func TestReserveConcurrentSingleSlot(t *testing.T) {
	pool := setupPool(t)
	f := newFixture(t, pool, 100)
	ctx := context.Background()

	availability := repository.NewAvailabilityRepository(pool)
	bookings := repository.NewBookingRepository(pool)
	require.NoError(t, availability.Publish(ctx, f.caregiver, f.date))

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = bookings.Reserve(ctx, f.patient, f.date, f.vaccine)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.True(t, apperrors.IsCode(err, "NO_CAREGIVER_AVAILABLE"),
				fmt.Sprintf("unexpected error: %v", err))
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 99, f.doses(t))
}

func TestReserveConcurrentLastDose(t *testing.T) {
	pool := setupPool(t)
	f := newFixture(t, pool, 1)
	ctx := context.Background()

	availability := repository.NewAvailabilityRepository(pool)
	bookings := repository.NewBookingRepository(pool)

	// several open slots so only the dose count constrains bookings
	extraCaregivers := make([]string, 4)
	for i := range extraCaregivers {
		name := fmt.Sprintf("%s-%d", f.caregiver, i)
		extraCaregivers[i] = name
		_, err := pool.Exec(ctx, `INSERT INTO caregivers (username, password_hash) VALUES ($1, 'x')`, name)
		require.NoError(t, err)
		require.NoError(t, availability.Publish(ctx, name, f.date))
	}
	require.NoError(t, availability.Publish(ctx, f.caregiver, f.date))
	t.Cleanup(func() {
		for _, name := range extraCaregivers {
			_, _ = pool.Exec(ctx, `DELETE FROM reservations WHERE caregiver_username = $1`, name)
			_, _ = pool.Exec(ctx, `DELETE FROM availability_slots WHERE caregiver_username = $1`, name)
			_, _ = pool.Exec(ctx, `DELETE FROM caregivers WHERE username = $1`, name)
		}
	})

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = bookings.Reserve(ctx, f.patient, f.date, f.vaccine)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, f.doses(t), "dose count must never go negative")
}

func TestCancelRestoresState(t *testing.T) {
	pool := setupPool(t)
	f := newFixture(t, pool, 1)
	ctx := context.Background()

	availability := repository.NewAvailabilityRepository(pool)
	bookings := repository.NewBookingRepository(pool)
	reservations := repository.NewReservationRepository(pool)

	require.NoError(t, availability.Publish(ctx, f.caregiver, f.date))
	reservation, err := bookings.Reserve(ctx, f.patient, f.date, f.vaccine)
	require.NoError(t, err)

	require.NoError(t, bookings.Cancel(ctx, reservation))

	assert.Equal(t, 1, f.doses(t))
	caregivers, err := availability.ListByDate(ctx, f.date)
	require.NoError(t, err)
	assert.Contains(t, caregivers, f.caregiver)

	mine, err := reservations.ListByPatient(ctx, f.patient)
	require.NoError(t, err)
	assert.Empty(t, mine)

	// already cancelled
	err = bookings.Cancel(ctx, reservation)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestPublishDuplicateSlot(t *testing.T) {
	pool := setupPool(t)
	f := newFixture(t, pool, 0)
	ctx := context.Background()
	availability := repository.NewAvailabilityRepository(pool)

	require.NoError(t, availability.Publish(ctx, f.caregiver, f.date))
	err := availability.Publish(ctx, f.caregiver, f.date)
	assert.True(t, apperrors.IsCode(err, "DUPLICATE_SLOT"))
}
