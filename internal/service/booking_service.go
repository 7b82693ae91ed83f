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
	"github.com/spec-kit/vaccine-scheduler/internal/observability"
	"github.com/spec-kit/vaccine-scheduler/internal/repository"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// BookingService is the reservation engine. It guards roles, delegates
// the atomic booking triple to the repository, and emits events.
type BookingService struct {
	bookings     repository.BookingRepository
	reservations repository.ReservationRepository
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	cache        ScheduleCache
}

// BookingDependencies bundles collaborators for the booking service.
type BookingDependencies struct {
	BookingRepo     repository.BookingRepository
	ReservationRepo repository.ReservationRepository
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Cache           ScheduleCache
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	cache := deps.Cache
	if cache == nil {
		cache = NewNoopScheduleCache()
	}
	return &BookingService{
		bookings:     deps.BookingRepo,
		reservations: deps.ReservationRepo,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		cache:        cache,
	}
}

// Book reserves an appointment for a patient: one dose of the vaccine
// and one caregiver slot on the date are consumed together or not at
// all. When several caregivers are open, the lexicographically smallest
// username wins.
func (s *BookingService) Book(ctx context.Context, identity domain.Identity, date domain.Date, vaccine string) (*domain.Reservation, error) {
	if identity.Username == "" {
		return nil, apperrors.NewNotAuthenticated()
	}
	if !identity.IsPatient() {
		return nil, apperrors.NewWrongRole("patient")
	}
	vaccine = strings.TrimSpace(vaccine)
	if vaccine == "" {
		return nil, apperrors.NewValidationError("vaccine name required", nil)
	}
	if date.IsZero() {
		return nil, apperrors.NewInvalidDate("")
	}

	reservation, err := s.bookings.Reserve(ctx, identity.Username, date, vaccine)
	if err != nil {
		s.metrics.RecordBooking(apperrors.ToDomainError(err).Code)
		return nil, err
	}
	s.metrics.RecordBooking("BOOKED")
	s.cache.Invalidate(ctx, date)

	s.publishEvent(ctx, events.Event{
		Type:  events.EventReservationBooked,
		Actor: events.Actor{Username: identity.Username, Role: identity.Role},
		Payload: events.ReservationBookedPayload{
			AppointmentID: reservation.ID,
			VaccineName:   reservation.VaccineName,
			Patient:       reservation.PatientUsername,
			Caregiver:     reservation.CaregiverUsername,
			Date:          reservation.Date.String(),
		},
	})
	return reservation, nil
}

// Cancel deletes a reservation and atomically restores the dose and the
// caregiver's slot. Only the reservation's patient or caregiver may
// cancel it.
func (s *BookingService) Cancel(ctx context.Context, identity domain.Identity, appointmentID string) error {
	if identity.Username == "" {
		return apperrors.NewNotAuthenticated()
	}

	reservation, err := s.reservations.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("appointment", map[string]any{"id": appointmentID})
		}
		return apperrors.MapError(err)
	}

	owns := (identity.IsPatient() && reservation.PatientUsername == identity.Username) ||
		(identity.IsCaregiver() && reservation.CaregiverUsername == identity.Username)
	if !owns {
		return apperrors.NewForbidden("appointment belongs to another user")
	}

	if err := s.bookings.Cancel(ctx, reservation); err != nil {
		return err
	}
	s.metrics.RecordBooking("CANCELLED")
	s.cache.Invalidate(ctx, reservation.Date)

	s.publishEvent(ctx, events.Event{
		Type:  events.EventReservationCancelled,
		Actor: events.Actor{Username: identity.Username, Role: identity.Role},
		Payload: events.ReservationCancelledPayload{
			AppointmentID: reservation.ID,
			VaccineName:   reservation.VaccineName,
			Patient:       reservation.PatientUsername,
			Caregiver:     reservation.CaregiverUsername,
			Date:          reservation.Date.String(),
		},
	})
	return nil
}

// ListAppointments returns the caller's reservations: by patient field
// for patients, by caregiver field for caregivers.
func (s *BookingService) ListAppointments(ctx context.Context, identity domain.Identity) ([]domain.Reservation, error) {
	switch {
	case identity.Username == "":
		return nil, apperrors.NewNotAuthenticated()
	case identity.IsPatient():
		res, err := s.reservations.ListByPatient(ctx, identity.Username)
		return res, apperrors.MapError(err)
	case identity.IsCaregiver():
		res, err := s.reservations.ListByCaregiver(ctx, identity.Username)
		return res, apperrors.MapError(err)
	default:
		return nil, apperrors.NewNotAuthenticated()
	}
}

func (s *BookingService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	_ = s.dispatcher.Publish(ctx, event)
}
