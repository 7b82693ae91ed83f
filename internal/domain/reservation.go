package domain

import "time"

// Reservation is the terminal record of a successful booking: evidence
// that one dose was decremented and one availability slot consumed in
// the same transaction. Append-only; removed only by cancellation.
type Reservation struct {
	ID                string
	VaccineName       string
	PatientUsername   string
	CaregiverUsername string
	Date              Date
	CreatedAt         time.Time
}
