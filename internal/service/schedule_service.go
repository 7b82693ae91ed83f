package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	"github.com/spec-kit/vaccine-scheduler/internal/events"
	"github.com/spec-kit/vaccine-scheduler/internal/repository"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// ScheduleService manages caregiver availability and schedule lookups.
type ScheduleService struct {
	availability repository.AvailabilityRepository
	dispatcher   events.Dispatcher
	cache        ScheduleCache
}

// NewScheduleService constructs the service.
func NewScheduleService(availability repository.AvailabilityRepository, dispatcher events.Dispatcher, cache ScheduleCache) *ScheduleService {
	if cache == nil {
		cache = NewNoopScheduleCache()
	}
	return &ScheduleService{availability: availability, dispatcher: dispatcher, cache: cache}
}

// PublishAvailability declares the caregiver open on the given day.
// Republishing the same day is rejected as a duplicate.
func (s *ScheduleService) PublishAvailability(ctx context.Context, identity domain.Identity, date domain.Date) error {
	if identity.Username == "" {
		return apperrors.NewNotAuthenticated()
	}
	if !identity.IsCaregiver() {
		return apperrors.NewWrongRole("caregiver")
	}
	if date.IsZero() {
		return apperrors.NewInvalidDate("")
	}

	if err := s.availability.Publish(ctx, identity.Username, date); err != nil {
		return apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx, date)

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventAvailabilityPublished,
			Actor:     events.Actor{Username: identity.Username, Role: identity.Role},
			Timestamp: time.Now().UTC(),
			Payload: events.AvailabilityPublishedPayload{
				Caregiver: identity.Username,
				Date:      date.String(),
			},
		})
	}
	return nil
}

// SearchSchedule returns caregivers with an open slot on the date,
// ordered by username. Available to both roles.
func (s *ScheduleService) SearchSchedule(ctx context.Context, identity domain.Identity, date domain.Date) ([]string, error) {
	if identity.Username == "" {
		return nil, apperrors.NewNotAuthenticated()
	}
	if date.IsZero() {
		return nil, apperrors.NewInvalidDate("")
	}

	if caregivers, ok := s.cache.Get(ctx, date); ok {
		return caregivers, nil
	}

	caregivers, err := s.availability.ListByDate(ctx, date)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.Set(ctx, date, caregivers)
	return caregivers, nil
}
