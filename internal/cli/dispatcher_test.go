package cli_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/vaccine-scheduler/internal/cli"
	"github.com/spec-kit/vaccine-scheduler/internal/config"
	"github.com/spec-kit/vaccine-scheduler/internal/events"
	"github.com/spec-kit/vaccine-scheduler/internal/repository"
	"github.com/spec-kit/vaccine-scheduler/internal/service"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

func newDispatcher(t *testing.T) (*cli.Dispatcher, *cli.Session) {
	t.Helper()
	store := repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()

	cfg := config.Config{}
	cfg.Auth = config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            bcrypt.MinCost,
	}

	accounts := service.NewAccountService(cfg, store)
	booking := service.NewBookingService(service.BookingDependencies{
		BookingRepo:     store,
		ReservationRepo: store,
		Dispatcher:      dispatcher,
	})
	schedule := service.NewScheduleService(store, dispatcher, nil)
	inventory := service.NewInventoryService(store, dispatcher)

	session := cli.NewSession()
	return cli.NewDispatcher(accounts, booking, schedule, inventory, session), session
}

func run(t *testing.T, d *cli.Dispatcher, line string) string {
	t.Helper()
	out, err := d.Execute(context.Background(), line)
	require.NoError(t, err, "command %q", line)
	return out
}

func TestDispatcherEndToEnd(t *testing.T) {
	d, _ := newDispatcher(t)

	assert.Equal(t, "Created user carol", run(t, d, "create_caregiver carol Pass1234!"))
	assert.Equal(t, "Created user alice", run(t, d, "create_patient alice Pass1234!"))

	assert.Equal(t, "Logged in as: carol", run(t, d, "login_caregiver carol Pass1234!"))
	assert.Equal(t, "Availability uploaded!", run(t, d, "upload_availability 2024-06-01"))
	assert.Equal(t, "Doses updated! Pfizer: 5", run(t, d, "add_doses Pfizer 5"))
	assert.Equal(t, "Logged out!", run(t, d, "logout"))

	assert.Equal(t, "Logged in as: alice", run(t, d, "login_patient alice Pass1234!"))
	assert.Equal(t, "carol", run(t, d, "search_caregiver_schedule 2024-06-01"))

	out := run(t, d, "reserve 2024-06-01 Pfizer")
	require.True(t, strings.HasPrefix(out, "Appointment created!"), out)
	assert.Contains(t, out, "Caregiver: carol")

	listing := run(t, d, "show_appointments")
	assert.Contains(t, listing, "Pfizer")
	assert.Contains(t, listing, "carol")

	// the slot is gone once booked
	assert.Equal(t, "No caregiver is available on 2024-06-01",
		run(t, d, "search_caregiver_schedule 2024-06-01"))
}

func TestDispatcherCancelRoundTrip(t *testing.T) {
	d, _ := newDispatcher(t)
	run(t, d, "create_caregiver carol Pass1234!")
	run(t, d, "create_patient alice Pass1234!")
	run(t, d, "login_caregiver carol Pass1234!")
	run(t, d, "upload_availability 2024-06-01")
	run(t, d, "add_doses Pfizer 1")
	run(t, d, "logout")
	run(t, d, "login_patient alice Pass1234!")

	out := run(t, d, "reserve 2024-06-01 Pfizer")
	id := strings.TrimSpace(strings.Split(strings.Split(out, "Appointment ID: ")[1], ",")[0])
	require.NotEmpty(t, id)

	assert.Equal(t, "Appointment cancelled!", run(t, d, "cancel "+id))
	assert.Equal(t, "No appointments scheduled!", run(t, d, "show_appointments"))
	// slot and dose are back
	assert.Equal(t, "carol", run(t, d, "search_caregiver_schedule 2024-06-01"))
}

func TestDispatcherRejectsWhenLoggedOut(t *testing.T) {
	d, _ := newDispatcher(t)
	for _, line := range []string{
		"reserve 2024-06-01 Pfizer",
		"upload_availability 2024-06-01",
		"add_doses Pfizer 5",
		"show_appointments",
		"search_caregiver_schedule 2024-06-01",
		"cancel some-id",
	} {
		_, err := d.Execute(context.Background(), line)
		assert.True(t, apperrors.IsCode(err, "NOT_AUTHENTICATED"), "command %q", line)
	}

	_, err := d.Execute(context.Background(), "logout")
	assert.True(t, apperrors.IsCode(err, "NO_ACTIVE_SESSION"))
}

func TestDispatcherRoleGuards(t *testing.T) {
	d, _ := newDispatcher(t)
	run(t, d, "create_patient alice Pass1234!")
	run(t, d, "login_patient alice Pass1234!")

	_, err := d.Execute(context.Background(), "upload_availability 2024-06-01")
	assert.True(t, apperrors.IsCode(err, "WRONG_ROLE"))
	_, err = d.Execute(context.Background(), "add_doses Pfizer 5")
	assert.True(t, apperrors.IsCode(err, "WRONG_ROLE"))
	run(t, d, "logout")

	run(t, d, "create_caregiver carol Pass1234!")
	run(t, d, "login_caregiver carol Pass1234!")
	_, err = d.Execute(context.Background(), "reserve 2024-06-01 Pfizer")
	assert.True(t, apperrors.IsCode(err, "WRONG_ROLE"))
}

func TestDispatcherSecondLoginRejected(t *testing.T) {
	d, session := newDispatcher(t)
	run(t, d, "create_caregiver carol Pass1234!")
	run(t, d, "create_patient alice Pass1234!")
	run(t, d, "login_caregiver carol Pass1234!")

	_, err := d.Execute(context.Background(), "login_patient alice Pass1234!")
	assert.True(t, apperrors.IsCode(err, "ALREADY_LOGGED_IN"))

	identity, active := session.Current()
	require.True(t, active)
	assert.Equal(t, "carol", identity.Username)
}

func TestDispatcherValidation(t *testing.T) {
	d, _ := newDispatcher(t)

	_, err := d.Execute(context.Background(), "")
	assert.True(t, apperrors.IsCode(err, "INVALID_INPUT"))

	_, err = d.Execute(context.Background(), "frobnicate")
	assert.True(t, apperrors.IsCode(err, "INVALID_INPUT"))

	_, err = d.Execute(context.Background(), "create_patient alice")
	assert.True(t, apperrors.IsCode(err, "INVALID_INPUT"))

	_, err = d.Execute(context.Background(), "create_patient alice weak")
	assert.True(t, apperrors.IsCode(err, "WEAK_PASSWORD"))

	run(t, d, "create_patient alice Pass1234!")
	_, err = d.Execute(context.Background(), "create_patient alice Pass1234!")
	assert.True(t, apperrors.IsCode(err, "DUPLICATE_USERNAME"))

	_, err = d.Execute(context.Background(), "login_patient alice nope1234!A")
	assert.True(t, apperrors.IsCode(err, "INVALID_CREDENTIALS"))

	run(t, d, "login_patient alice Pass1234!")
	_, err = d.Execute(context.Background(), "reserve not-a-date Pfizer")
	assert.True(t, apperrors.IsCode(err, "INVALID_DATE"))

	_, err = d.Execute(context.Background(), "add_doses Pfizer five")
	assert.True(t, apperrors.IsCode(err, "INVALID_INPUT"))
}

func TestDispatcherQuit(t *testing.T) {
	d, _ := newDispatcher(t)
	out, err := d.Execute(context.Background(), "quit")
	assert.ErrorIs(t, err, cli.ErrQuit)
	assert.Equal(t, "Bye!", out)
}
