package service

import (
	"context"
	"time"

	"garagerent/internal/entities"
	apperrors "garagerent/internal/errors"
	"garagerent/internal/repository"
)

// AvailabilityService answers whether a requested interval collides with any
// confirmed booking on a space. It is a pure read: the exclusion constraint
// in the store gives the final guarantee at commit time, this check is the
// fast path.
type AvailabilityService struct {
	bookings *repository.BookingRepository
	spaces   *repository.SpaceRepository
	now      func() time.Time
}

func NewAvailabilityService(bookings *repository.BookingRepository, spaces *repository.SpaceRepository) *AvailabilityService {
	return &AvailabilityService{bookings: bookings, spaces: spaces, now: time.Now}
}

func (s *AvailabilityService) ValidateInterval(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperrors.Validation("start and end dates are required")
	}
	if !end.After(start) {
		return apperrors.Validation("end date must be after start date")
	}
	if start.Before(s.now()) {
		return apperrors.Validation("start date cannot be in the past")
	}
	return nil
}

// CheckConflict reports confirmed bookings overlapping [start, end) on the
// space. excludeBookingID (0 for none) is left out of the check, so a
// booking being confirmed does not conflict with itself.
func (s *AvailabilityService) CheckConflict(ctx context.Context, spaceID int64, start, end time.Time, excludeBookingID int64) (*entities.AvailabilityResponse, error) {
	if err := s.ValidateInterval(start, end); err != nil {
		return nil, err
	}
	if _, err := s.spaces.GetByID(ctx, spaceID); err != nil {
		return nil, err
	}

	overlapping, err := s.bookings.ConfirmedOverlaps(ctx, spaceID, start, end, excludeBookingID)
	if err != nil {
		return nil, err
	}

	resp := &entities.AvailabilityResponse{
		Available:      len(overlapping) == 0,
		RequestedStart: start,
		RequestedEnd:   end,
	}
	for _, b := range overlapping {
		resp.ConflictingIntervals = append(resp.ConflictingIntervals, entities.Interval{Start: b.StartDate, End: b.EndDate})
	}
	return resp, nil
}
