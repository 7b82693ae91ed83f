package dto

// PublishAvailabilityRequest payload for declaring an open day.
type PublishAvailabilityRequest struct {
	Date string `json:"date"`
}

// ScheduleResponse lists caregivers open on a date.
type ScheduleResponse struct {
	Date       string   `json:"date"`
	Caregivers []string `json:"caregivers"`
}

// RestockRequest payload for adding doses.
type RestockRequest struct {
	Vaccine string `json:"vaccine"`
	Count   int    `json:"count"`
}

// InventoryResponse describes a vaccine's dose count.
type InventoryResponse struct {
	Vaccine string `json:"vaccine"`
	Doses   int    `json:"doses"`
}
