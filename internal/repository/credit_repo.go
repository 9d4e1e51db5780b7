package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"garagerent/internal/db"
)

// CreditRepository stores the secondary credit currency. Credits are a
// different balance class from wallet money and never mix with it.
type CreditRepository interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)

	GetCreditsForUpdate(ctx context.Context, tx *sql.Tx, userID int64) (int64, error)

	EnsureCredits(ctx context.Context, tx *sql.Tx, userID int64) error

	AddToCredits(ctx context.Context, tx *sql.Tx, userID, delta int64) error

	InsertTransaction(ctx context.Context, tx *sql.Tx, record *db.CreditTransaction) error

	GetCredits(ctx context.Context, userID int64) (int64, error)

	ListTransactions(ctx context.Context, userID int64) ([]db.CreditTransaction, error)
}

type PostgresCreditRepository struct {
	DB *sql.DB
}

func NewCreditRepository(database *sql.DB) *PostgresCreditRepository {
	return &PostgresCreditRepository{DB: database}
}

func (r *PostgresCreditRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.DB.BeginTx(ctx, nil)
}

// GetCreditsForUpdate locks the row; a missing row reads as zero credits so
// insufficient-credit checks work for users who never earned any.
func (r *PostgresCreditRepository) GetCreditsForUpdate(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
	var credits int64
	err := tx.QueryRowContext(ctx, `SELECT credits FROM user_credits WHERE user_id = $1 FOR UPDATE`, userID).Scan(&credits)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("locking credits for user %d: %w", userID, err)
	}
	return credits, nil
}

func (r *PostgresCreditRepository) EnsureCredits(ctx context.Context, tx *sql.Tx, userID int64) error {
	query := `
		INSERT INTO user_credits (user_id, credits)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING`
	if _, err := tx.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("ensuring credit row for user %d: %w", userID, err)
	}
	return nil
}

func (r *PostgresCreditRepository) AddToCredits(ctx context.Context, tx *sql.Tx, userID, delta int64) error {
	query := `UPDATE user_credits SET credits = credits + $2 WHERE user_id = $1`
	if _, err := tx.ExecContext(ctx, query, userID, delta); err != nil {
		return fmt.Errorf("updating credits for user %d: %w", userID, err)
	}
	return nil
}

func (r *PostgresCreditRepository) InsertTransaction(ctx context.Context, tx *sql.Tx, record *db.CreditTransaction) error {
	query := `
		INSERT INTO credit_transactions (user_id, amount, tx_type, booking_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`
	err := tx.QueryRowContext(ctx, query, record.UserID, record.Amount, record.TxType, record.BookingID).
		Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording credit transaction: %w", err)
	}
	return nil
}

func (r *PostgresCreditRepository) GetCredits(ctx context.Context, userID int64) (int64, error) {
	var credits int64
	err := r.DB.QueryRowContext(ctx, `SELECT credits FROM user_credits WHERE user_id = $1`, userID).Scan(&credits)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying credits for user %d: %w", userID, err)
	}
	return credits, nil
}

func (r *PostgresCreditRepository) ListTransactions(ctx context.Context, userID int64) ([]db.CreditTransaction, error) {
	query := `
		SELECT id, user_id, amount, tx_type, booking_id, created_at
		FROM credit_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying credit transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var records []db.CreditTransaction
	for rows.Next() {
		var t db.CreditTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.TxType, &t.BookingID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning credit transaction: %w", err)
		}
		records = append(records, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating credit transactions: %w", err)
	}
	return records, nil
}
