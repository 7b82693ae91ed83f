package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	"github.com/spec-kit/vaccine-scheduler/internal/service"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// Dispatcher parses console commands, enforces login state and arity,
// and forwards to the services. Business rules live below it; the
// dispatcher only validates shape.
type Dispatcher struct {
	accounts  *service.AccountService
	booking   *service.BookingService
	schedule  *service.ScheduleService
	inventory *service.InventoryService
	session   *Session
}

// NewDispatcher constructs a dispatcher over the given services.
func NewDispatcher(accounts *service.AccountService, booking *service.BookingService, schedule *service.ScheduleService, inventory *service.InventoryService, session *Session) *Dispatcher {
	return &Dispatcher{
		accounts:  accounts,
		booking:   booking,
		schedule:  schedule,
		inventory: inventory,
		session:   session,
	}
}

// Usage is the banner printed at console start.
const Usage = `*** Please enter one of the following commands ***
> create_patient <username> <password>
> create_caregiver <username> <password>
> login_patient <username> <password>
> login_caregiver <username> <password>
> search_caregiver_schedule <date>
> reserve <date> <vaccine>
> upload_availability <date>
> cancel <appointment_id>
> add_doses <vaccine> <number>
> show_appointments
> logout
> quit`

// ErrQuit signals that the operator asked to exit.
var ErrQuit = errors.New("quit")

// Execute runs one command line and returns the text to print.
func (d *Dispatcher) Execute(ctx context.Context, line string) (string, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return "", apperrors.NewValidationError("please enter a command", nil)
	}

	switch tokens[0] {
	case "create_patient":
		return d.createAccount(ctx, domain.RolePatient, tokens)
	case "create_caregiver":
		return d.createAccount(ctx, domain.RoleCaregiver, tokens)
	case "login_patient":
		return d.login(ctx, domain.RolePatient, tokens)
	case "login_caregiver":
		return d.login(ctx, domain.RoleCaregiver, tokens)
	case "search_caregiver_schedule":
		return d.searchSchedule(ctx, tokens)
	case "reserve":
		return d.reserve(ctx, tokens)
	case "upload_availability":
		return d.uploadAvailability(ctx, tokens)
	case "cancel":
		return d.cancel(ctx, tokens)
	case "add_doses":
		return d.addDoses(ctx, tokens)
	case "show_appointments":
		return d.showAppointments(ctx, tokens)
	case "logout":
		if err := d.session.Logout(); err != nil {
			return "", err
		}
		return "Logged out!", nil
	case "quit":
		return "Bye!", ErrQuit
	default:
		return "", apperrors.NewValidationError("invalid operation name", nil)
	}
}

func (d *Dispatcher) createAccount(ctx context.Context, role domain.Role, tokens []string) (string, error) {
	if len(tokens) != 3 {
		return "", arity("create", "<username> <password>")
	}
	account, err := d.accounts.Register(ctx, role, tokens[1], tokens[2])
	if err != nil {
		return "", err
	}
	return "Created user " + account.Username, nil
}

func (d *Dispatcher) login(ctx context.Context, role domain.Role, tokens []string) (string, error) {
	if _, active := d.session.Current(); active {
		return "", apperrors.NewAlreadyLoggedIn()
	}
	if len(tokens) != 3 {
		return "", arity("login", "<username> <password>")
	}
	account, err := d.accounts.Login(ctx, role, tokens[1], tokens[2])
	if err != nil {
		return "", err
	}
	if err := d.session.Login(domain.Identity{Username: account.Username, Role: account.Role}); err != nil {
		return "", err
	}
	return "Logged in as: " + account.Username, nil
}

func (d *Dispatcher) searchSchedule(ctx context.Context, tokens []string) (string, error) {
	identity, ok := d.session.Current()
	if !ok {
		return "", apperrors.NewNotAuthenticated()
	}
	if len(tokens) != 2 {
		return "", arity("search_caregiver_schedule", "<date>")
	}
	date, err := domain.ParseDate(tokens[1])
	if err != nil {
		return "", err
	}
	caregivers, err := d.schedule.SearchSchedule(ctx, identity, date)
	if err != nil {
		return "", err
	}
	if len(caregivers) == 0 {
		return "No caregiver is available on " + date.String(), nil
	}
	return strings.Join(caregivers, "\n"), nil
}

func (d *Dispatcher) reserve(ctx context.Context, tokens []string) (string, error) {
	identity, ok := d.session.Current()
	if !ok {
		return "", apperrors.NewNotAuthenticated()
	}
	if len(tokens) != 3 {
		return "", arity("reserve", "<date> <vaccine>")
	}
	date, err := domain.ParseDate(tokens[1])
	if err != nil {
		return "", err
	}
	reservation, err := d.booking.Book(ctx, identity, date, tokens[2])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Appointment created!\nAppointment ID: %s, Caregiver: %s",
		reservation.ID, reservation.CaregiverUsername), nil
}

func (d *Dispatcher) uploadAvailability(ctx context.Context, tokens []string) (string, error) {
	identity, ok := d.session.Current()
	if !ok {
		return "", apperrors.NewNotAuthenticated()
	}
	if len(tokens) != 2 {
		return "", arity("upload_availability", "<date>")
	}
	date, err := domain.ParseDate(tokens[1])
	if err != nil {
		return "", err
	}
	if err := d.schedule.PublishAvailability(ctx, identity, date); err != nil {
		return "", err
	}
	return "Availability uploaded!", nil
}

func (d *Dispatcher) cancel(ctx context.Context, tokens []string) (string, error) {
	identity, ok := d.session.Current()
	if !ok {
		return "", apperrors.NewNotAuthenticated()
	}
	if len(tokens) != 2 {
		return "", arity("cancel", "<appointment_id>")
	}
	if err := d.booking.Cancel(ctx, identity, tokens[1]); err != nil {
		return "", err
	}
	return "Appointment cancelled!", nil
}

func (d *Dispatcher) addDoses(ctx context.Context, tokens []string) (string, error) {
	identity, ok := d.session.Current()
	if !ok {
		return "", apperrors.NewNotAuthenticated()
	}
	if len(tokens) != 3 {
		return "", arity("add_doses", "<vaccine> <number>")
	}
	count, err := strconv.Atoi(tokens[2])
	if err != nil {
		return "", apperrors.NewValidationError("dose count must be a number",
			map[string]any{"value": tokens[2]})
	}
	inv, err := d.inventory.Restock(ctx, identity, tokens[1], count)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Doses updated! %s: %d", inv.Name, inv.Doses), nil
}

func (d *Dispatcher) showAppointments(ctx context.Context, tokens []string) (string, error) {
	identity, ok := d.session.Current()
	if !ok {
		return "", apperrors.NewNotAuthenticated()
	}
	if len(tokens) != 1 {
		return "", arity("show_appointments", "")
	}
	reservations, err := d.booking.ListAppointments(ctx, identity)
	if err != nil {
		return "", err
	}
	if len(reservations) == 0 {
		return "No appointments scheduled!", nil
	}

	lines := make([]string, 0, len(reservations))
	for _, r := range reservations {
		other := r.CaregiverUsername
		if identity.IsCaregiver() {
			other = r.PatientUsername
		}
		lines = append(lines, fmt.Sprintf("%s, %s, %s, %s", r.ID, r.VaccineName, r.Date, other))
	}
	return strings.Join(lines, "\n"), nil
}

func arity(command, args string) error {
	usage := strings.TrimSpace(command + " " + args)
	return apperrors.NewValidationError("usage: "+usage, nil)
}
