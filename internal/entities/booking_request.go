package entities

import (
	"time"

	"garagerent/internal/db"
)

type CreateBookingRequest struct {
	SpaceID    int64     `json:"space_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	UseCredits bool      `json:"use_credits"`
}

// TransitionBookingRequest drives an owner-side status change.
// Action is one of "confirm" or "reject".
type TransitionBookingRequest struct {
	Action string `json:"action"`
}

type BookingResponse struct {
	ID          int64            `json:"id"`
	RenterID    int64            `json:"renter_id"`
	SpaceID     int64            `json:"space_id"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	Status      db.BookingStatus `json:"status"`
	TotalPrice  int64            `json:"total_price"`
	CreditsUsed int64            `json:"credits_used"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CreateBookingResult carries the explicit credit outcome: credit usage on
// creation is best-effort and the caller must be able to see whether it
// happened rather than having a failure swallowed.
type CreateBookingResult struct {
	Booking        BookingResponse `json:"booking"`
	CreditsApplied bool            `json:"credits_applied"`
}

func BookingToResponse(b *db.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		RenterID:    b.RenterID,
		SpaceID:     b.SpaceID,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		Status:      b.Status,
		TotalPrice:  b.TotalPrice,
		CreditsUsed: b.CreditsUsed,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
