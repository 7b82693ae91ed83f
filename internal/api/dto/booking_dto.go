package dto

import (
	"time"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
)

// ReserveRequest payload for booking an appointment.
type ReserveRequest struct {
	Date    string `json:"date"`
	Vaccine string `json:"vaccine"`
}

// ReservationResponse describes one reservation.
type ReservationResponse struct {
	AppointmentID string    `json:"appointment_id"`
	Vaccine       string    `json:"vaccine"`
	Patient       string    `json:"patient"`
	Caregiver     string    `json:"caregiver"`
	Date          string    `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromReservation maps a domain reservation to its response shape.
func FromReservation(r domain.Reservation) ReservationResponse {
	return ReservationResponse{
		AppointmentID: r.ID,
		Vaccine:       r.VaccineName,
		Patient:       r.PatientUsername,
		Caregiver:     r.CaregiverUsername,
		Date:          r.Date.String(),
		CreatedAt:     r.CreatedAt,
	}
}

// FromReservations maps a slice of reservations.
func FromReservations(rs []domain.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, FromReservation(r))
	}
	return out
}
