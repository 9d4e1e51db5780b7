package service

import (
	"context"
	"log"
	"time"

	"garagerent/internal/db"
	"garagerent/internal/entities"
	apperrors "garagerent/internal/errors"
	"garagerent/internal/repository"
	"garagerent/internal/utils"
)

// Notifier delivers booking lifecycle events to the notification
// collaborator. Calls are fire-and-forget; a delivery failure never affects
// the booking or settlement outcome.
type Notifier interface {
	BookingEvent(eventType string, booking *db.Booking)
}

// BookingService owns the lifecycle of a booking: pending at creation, then
// exactly one transition to confirmed, rejected, cancelled or
// cancelled_by_owner. Confirmation invokes the settlement engine inside the
// same storage transaction as the status write.
type BookingService struct {
	repo         *repository.BookingRepository
	spaces       *repository.SpaceRepository
	availability *AvailabilityService
	settlement   *SettlementService
	notifier     Notifier
	now          func() time.Time
}

func NewBookingService(
	repo *repository.BookingRepository,
	spaces *repository.SpaceRepository,
	availability *AvailabilityService,
	settlement *SettlementService,
	notifier Notifier,
) *BookingService {
	return &BookingService{
		repo:         repo,
		spaces:       spaces,
		availability: availability,
		settlement:   settlement,
		notifier:     notifier,
		now:          time.Now,
	}
}

// Create validates the interval, checks availability and persists a pending
// booking. Credit usage is best-effort: a failed credit debit leaves the
// booking in place, and the result's CreditsApplied flag tells the caller
// which way it went.
func (s *BookingService) Create(ctx context.Context, renterID int64, req *entities.CreateBookingRequest) (*entities.CreateBookingResult, error) {
	space, err := s.spaces.GetByID(ctx, req.SpaceID)
	if err != nil {
		return nil, err
	}
	if space.OwnerID == renterID {
		return nil, apperrors.Validation("you cannot book your own space")
	}

	avail, err := s.availability.CheckConflict(ctx, req.SpaceID, req.StartDate, req.EndDate, 0)
	if err != nil {
		return nil, err
	}
	if !avail.Available {
		return nil, apperrors.Conflict("space is not available for the selected dates")
	}

	booking := &db.Booking{
		RenterID:   renterID,
		SpaceID:    req.SpaceID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Status:     db.StatusPending,
		TotalPrice: utils.CeilDays(req.StartDate, req.EndDate) * space.PricePerDay,
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	defer tx.Rollback()
	if err := s.repo.Create(ctx, tx, booking); err != nil {
		return nil, mapStorageErr(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, mapStorageErr(err)
	}

	creditsApplied := false
	if req.UseCredits {
		wanted := booking.TotalPrice
		if cap := s.settlement.Policy().CreditCapPerBooking; wanted > cap {
			wanted = cap
		}
		if err := s.settlement.UseCredits(ctx, renterID, wanted, booking.ID); err != nil {
			log.Printf("credit usage for booking %d failed: %v", booking.ID, err)
		} else if err := s.repo.SetCreditsUsed(ctx, booking.ID, wanted); err != nil {
			log.Printf("recording credits_used for booking %d failed: %v", booking.ID, err)
		} else {
			booking.CreditsUsed = wanted
			creditsApplied = true
		}
	}

	s.notify("booking.created", booking)
	return &entities.CreateBookingResult{
		Booking:        entities.BookingToResponse(booking),
		CreditsApplied: creditsApplied,
	}, nil
}

// Transition applies an owner-side action ("confirm" or "reject") to a
// pending booking. The booking row is locked first, so of two concurrent
// transition requests only one passes the pending guard.
//
// Confirm settles the full price inside the same transaction; if the
// transfer fails nothing is committed and the booking stays pending. The
// store's exclusion constraint over confirmed intervals fires on the status
// flip, closing the window between the creation-time pre-check and now.
func (s *BookingService) Transition(ctx context.Context, actorID, bookingID int64, action string) (*db.Booking, error) {
	var target db.BookingStatus
	switch action {
	case "confirm":
		target = db.StatusConfirmed
	case "reject":
		target = db.StatusRejected
	default:
		return nil, apperrors.Newf(apperrors.KindValidation, "unknown action %q", action)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	defer tx.Rollback()

	booking, err := s.repo.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	space, err := s.spaces.GetByID(ctx, booking.SpaceID)
	if err != nil {
		return nil, err
	}
	if space.OwnerID != actorID {
		return nil, apperrors.Authorization("only the space owner can update this booking")
	}
	if booking.Status != db.StatusPending {
		return nil, apperrors.Newf(apperrors.KindConflict, "booking is %s, not pending", booking.Status)
	}

	if target == db.StatusConfirmed {
		if err := s.settlement.TransferTx(ctx, tx, booking.RenterID, space.OwnerID, booking.TotalPrice, booking.ID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.UpdateStatus(ctx, tx, booking.ID, target); err != nil {
		return nil, mapStorageErr(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, mapStorageErr(err)
	}

	booking.Status = target
	s.notify("booking."+string(target), booking)
	return booking, nil
}

// Cancel is the renter-side exit. Allowed while the booking is still active
// and strictly before its start; afterwards the attempt fails with
// AlreadyStarted and the status is untouched.
func (s *BookingService) Cancel(ctx context.Context, actorID, bookingID int64) (*db.Booking, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	defer tx.Rollback()

	booking, err := s.repo.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != actorID {
		return nil, apperrors.Authorization("only the renter can cancel this booking")
	}
	if !booking.Status.Active() {
		return nil, apperrors.Newf(apperrors.KindConflict, "booking is already %s", booking.Status)
	}
	if !booking.StartDate.After(s.now()) {
		return nil, apperrors.New(apperrors.KindAlreadyStarted, "cannot cancel a booking that has already started")
	}

	if err := s.repo.UpdateStatus(ctx, tx, booking.ID, db.StatusCancelled); err != nil {
		return nil, mapStorageErr(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, mapStorageErr(err)
	}

	booking.Status = db.StatusCancelled
	s.notify("booking.cancelled", booking)
	return booking, nil
}

// CancelAllForSpace bulk-cancels active bookings when the listing
// collaborator deletes a space. Already-settled money is not reversed.
func (s *BookingService) CancelAllForSpace(ctx context.Context, spaceID int64) (int64, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return 0, mapStorageErr(err)
	}
	defer tx.Rollback()

	affected, err := s.repo.CancelAllForSpace(ctx, tx, spaceID)
	if err != nil {
		return 0, mapStorageErr(err)
	}
	if err := tx.Commit(); err != nil {
		return 0, mapStorageErr(err)
	}
	return affected, nil
}

// GetByID returns the booking if the actor is its renter or the space owner.
func (s *BookingService) GetByID(ctx context.Context, actorID, bookingID int64) (*db.Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != actorID {
		space, err := s.spaces.GetByID(ctx, booking.SpaceID)
		if err != nil {
			return nil, err
		}
		if space.OwnerID != actorID {
			return nil, apperrors.Authorization("not authorized to access this booking")
		}
	}
	return booking, nil
}

func (s *BookingService) ListForRenter(ctx context.Context, renterID int64) ([]db.Booking, error) {
	return s.repo.ListByRenter(ctx, renterID)
}

// ListForSpace is owner-only.
func (s *BookingService) ListForSpace(ctx context.Context, actorID, spaceID int64) ([]db.Booking, error) {
	space, err := s.spaces.GetByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if space.OwnerID != actorID {
		return nil, apperrors.Authorization("not authorized to access this space's bookings")
	}
	return s.repo.ListBySpace(ctx, spaceID)
}

func (s *BookingService) notify(eventType string, booking *db.Booking) {
	if s.notifier == nil {
		return
	}
	s.notifier.BookingEvent(eventType, booking)
}
