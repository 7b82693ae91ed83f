package domain

import "time"

// VaccineInventory tracks the remaining dose count for one vaccine
// product. Doses is never negative: a decrement that would cross zero
// is rejected atomically, not clamped.
type VaccineInventory struct {
	Name      string
	Doses     int
	CreatedAt time.Time
	UpdatedAt time.Time
}
