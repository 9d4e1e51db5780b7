package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"garagerent/internal/db"
	apperrors "garagerent/internal/errors"
)

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(database *sql.DB) *BookingRepository {
	return &BookingRepository{DB: database}
}

func (r *BookingRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.DB.BeginTx(ctx, nil)
}

const bookingColumns = `id, user_id, space_id, start_date, end_date, status, total_price, credits_used, created_at, updated_at`

func scanBooking(row *sql.Row) (*db.Booking, error) {
	var b db.Booking
	err := row.Scan(
		&b.ID, &b.RenterID, &b.SpaceID, &b.StartDate, &b.EndDate,
		&b.Status, &b.TotalPrice, &b.CreditsUsed, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("booking not found")
		}
		return nil, fmt.Errorf("scanning booking: %w", err)
	}
	return &b, nil
}

func (r *BookingRepository) Create(ctx context.Context, tx *sql.Tx, b *db.Booking) error {
	query := `
		INSERT INTO bookings (user_id, space_id, start_date, end_date, status, total_price, credits_used, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	err := tx.QueryRowContext(ctx, query,
		b.RenterID, b.SpaceID, b.StartDate, b.EndDate, b.Status, b.TotalPrice, b.CreditsUsed,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.DB.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate locks the booking row for the remainder of tx so that two
// concurrent transitions on the same booking serialize; the loser re-reads
// the already-updated status and fails its guard.
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return scanBooking(tx.QueryRowContext(ctx, query, id))
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status db.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("updating booking %d status: %w", id, err)
	}
	return nil
}

func (r *BookingRepository) SetCreditsUsed(ctx context.Context, id, creditsUsed int64) error {
	query := `UPDATE bookings SET credits_used = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.DB.ExecContext(ctx, query, id, creditsUsed); err != nil {
		return fmt.Errorf("updating booking %d credits_used: %w", id, err)
	}
	return nil
}

// ConfirmedOverlaps returns the intervals of confirmed bookings on the space
// that intersect the half-open range [start, end). Touching intervals do not
// count. Pending, rejected and cancelled bookings never block.
func (r *BookingRepository) ConfirmedOverlaps(ctx context.Context, spaceID int64, start, end time.Time, excludeBookingID int64) ([]db.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE space_id = $1
		  AND status = $2
		  AND start_date < $4
		  AND end_date > $3
		  AND id <> $5
		ORDER BY start_date`
	rows, err := r.DB.QueryContext(ctx, query, spaceID, db.StatusConfirmed, start, end, excludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("querying overlapping bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		var b db.Booking
		if err := rows.Scan(
			&b.ID, &b.RenterID, &b.SpaceID, &b.StartDate, &b.EndDate,
			&b.Status, &b.TotalPrice, &b.CreditsUsed, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning overlapping booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating overlapping bookings: %w", err)
	}
	return bookings, nil
}

func (r *BookingRepository) ListByRenter(ctx context.Context, renterID int64) ([]db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, renterID)
}

func (r *BookingRepository) ListBySpace(ctx context.Context, spaceID int64) ([]db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE space_id = $1 ORDER BY start_date DESC`
	return r.list(ctx, query, spaceID)
}

func (r *BookingRepository) list(ctx context.Context, query string, arg interface{}) ([]db.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("querying bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		var b db.Booking
		if err := rows.Scan(
			&b.ID, &b.RenterID, &b.SpaceID, &b.StartDate, &b.EndDate,
			&b.Status, &b.TotalPrice, &b.CreditsUsed, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning booking row: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating booking rows: %w", err)
	}
	return bookings, nil
}

// AdminList returns bookings filtered by optional status, space and start
// date (YYYY-MM-DD) for the operator surface.
func (r *BookingRepository) AdminList(ctx context.Context, status, date string, spaceID int64) ([]db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, status)
		idx++
	}
	if date != "" {
		query += fmt.Sprintf(" AND DATE(start_date) = $%d", idx)
		args = append(args, date)
		idx++
	}
	if spaceID > 0 {
		query += fmt.Sprintf(" AND space_id = $%d", idx)
		args = append(args, spaceID)
		idx++
	}
	query += " ORDER BY start_date DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		var b db.Booking
		if err := rows.Scan(
			&b.ID, &b.RenterID, &b.SpaceID, &b.StartDate, &b.EndDate,
			&b.Status, &b.TotalPrice, &b.CreditsUsed, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning booking row: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating booking rows: %w", err)
	}
	return bookings, nil
}

// CancelAllForSpace bulk-marks every active booking on the space as
// cancelled_by_owner. Invoked when the listing collaborator deletes a space;
// settled money is deliberately not reversed here.
func (r *BookingRepository) CancelAllForSpace(ctx context.Context, tx *sql.Tx, spaceID int64) (int64, error) {
	query := `
		UPDATE bookings SET status = $1, updated_at = NOW()
		WHERE space_id = $2 AND status = ANY($3)`
	active := []string{string(db.StatusPending), string(db.StatusConfirmed)}
	result, err := tx.ExecContext(ctx, query, db.StatusCancelledByOwner, spaceID, pq.Array(active))
	if err != nil {
		return 0, fmt.Errorf("cancelling bookings for space %d: %w", spaceID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}
