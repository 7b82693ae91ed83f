package domain

import "time"

// Role distinguishes the two kinds of registered users.
type Role string

const (
	RolePatient   Role = "PATIENT"
	RoleCaregiver Role = "CAREGIVER"
)

// Account is the domain model for a registered patient or caregiver.
// Usernames are unique per role and case-sensitive.
type Account struct {
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Identity is the authenticated caller passed explicitly into every
// operation. Services never consult shared session state.
type Identity struct {
	Username string
	Role     Role
}

// IsPatient reports whether the identity belongs to a patient.
func (i Identity) IsPatient() bool { return i.Role == RolePatient }

// IsCaregiver reports whether the identity belongs to a caregiver.
func (i Identity) IsCaregiver() bool { return i.Role == RoleCaregiver }
