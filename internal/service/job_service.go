package service

import (
	"context"
	"fmt"
	"log"

	"garagerent/internal/db"
	"garagerent/internal/repository"
)

type JobService struct {
	Repo *repository.JobRepository
}

func NewJobService(repo *repository.JobRepository) *JobService {
	return &JobService{Repo: repo}
}

// ExpireStalePendingBookings rejects pending bookings whose start date has
// passed. Such bookings can no longer be confirmed, so the sweeper closes
// them out instead of leaving them dangling.
func (s *JobService) ExpireStalePendingBookings(ctx context.Context) error {
	log.Println("Cron Job: checking for stale pending bookings...")

	ids, err := s.Repo.GetPendingBookingIDsPastStart(ctx)
	if err != nil {
		return fmt.Errorf("cron job: failed to get stale pending bookings: %w", err)
	}

	if len(ids) == 0 {
		log.Println("Cron Job: no stale pending bookings found.")
		return nil
	}

	log.Printf("Cron Job: found %d stale pending bookings. IDs: %v", len(ids), ids)

	if err := s.Repo.UpdateBookingStatuses(ctx, ids, db.StatusRejected); err != nil {
		return fmt.Errorf("cron job: failed to reject stale bookings: %w", err)
	}
	return nil
}
