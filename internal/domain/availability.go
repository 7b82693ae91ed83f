package domain

import "time"

// AvailabilitySlot is a caregiver's declared open day, good for exactly
// one booking. Identified by (caregiver, date); republishing the same
// day is a duplicate, not an update.
type AvailabilitySlot struct {
	CaregiverUsername string
	Date              Date
	CreatedAt         time.Time
}
