package entities

import "time"

// Interval is a half-open date range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type AvailabilityRequest struct {
	SpaceID   int64     `json:"space_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type AvailabilityResponse struct {
	Available            bool       `json:"available"`
	RequestedStart       time.Time  `json:"requested_start"`
	RequestedEnd         time.Time  `json:"requested_end"`
	ConflictingIntervals []Interval `json:"conflicting_intervals,omitempty"`
}
