package events

import (
	"time"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReservationBooked     EventType = "reservation_booked"
	EventReservationCancelled  EventType = "reservation_cancelled"
	EventAvailabilityPublished EventType = "availability_published"
	EventDosesRestocked        EventType = "doses_restocked"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReservationBookedPayload payload.
type ReservationBookedPayload struct {
	AppointmentID string `json:"appointment_id"`
	VaccineName   string `json:"vaccine_name"`
	Patient       string `json:"patient"`
	Caregiver     string `json:"caregiver"`
	Date          string `json:"date"`
}

// ReservationCancelledPayload payload.
type ReservationCancelledPayload struct {
	AppointmentID string `json:"appointment_id"`
	VaccineName   string `json:"vaccine_name"`
	Patient       string `json:"patient"`
	Caregiver     string `json:"caregiver"`
	Date          string `json:"date"`
}

// AvailabilityPublishedPayload payload.
type AvailabilityPublishedPayload struct {
	Caregiver string `json:"caregiver"`
	Date      string `json:"date"`
}

// DosesRestockedPayload payload.
type DosesRestockedPayload struct {
	VaccineName string `json:"vaccine_name"`
	Added       int    `json:"added"`
	Total       int    `json:"total"`
}
