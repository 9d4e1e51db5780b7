package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq"

	"garagerent/internal/db"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// GetPendingBookingIDsPastStart finds pending bookings whose start date has
// already passed. They can never be confirmed (availability validation
// rejects intervals starting in the past), so the sweeper rejects them.
func (r *JobRepository) GetPendingBookingIDsPastStart(ctx context.Context) ([]int64, error) {
	query := `SELECT id FROM bookings WHERE status = $1 AND start_date < NOW()`
	rows, err := r.DB.QueryContext(ctx, query, db.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("querying stale pending bookings: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning booking id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stale booking rows: %w", err)
	}
	return ids, nil
}

// UpdateBookingStatuses flips a batch of bookings to newStatus. The status
// guard is repeated in SQL so a booking already moved by a concurrent
// transition is skipped rather than overwritten.
func (r *JobRepository) UpdateBookingStatuses(ctx context.Context, ids []int64, newStatus db.BookingStatus) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = ANY($2) AND status = $3`
	result, err := r.DB.ExecContext(ctx, query, newStatus, pq.Array(ids), db.StatusPending)
	if err != nil {
		return fmt.Errorf("updating booking statuses: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Updated status for %d bookings to '%s'", rowsAffected, newStatus)
	}
	return nil
}
