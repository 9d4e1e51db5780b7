package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"garagerent/internal/db"
	apperrors "garagerent/internal/errors"
)

// WalletRepository exposes tx-scoped primitives so the settlement service can
// compose one atomic unit across balances, ledger entries and booking state.
type WalletRepository interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)

	// GetBalanceForUpdate locks the wallet row until the tx ends.
	GetBalanceForUpdate(ctx context.Context, tx *sql.Tx, userID int64) (int64, error)

	// EnsureWallet creates a zero-balance row if the user has none.
	EnsureWallet(ctx context.Context, tx *sql.Tx, userID int64) error

	AddToBalance(ctx context.Context, tx *sql.Tx, userID, delta int64) error

	InsertLedgerEntry(ctx context.Context, tx *sql.Tx, entry *db.LedgerEntry) error

	GetBalance(ctx context.Context, userID int64) (int64, error)

	ListLedgerEntries(ctx context.Context, userID int64) ([]db.LedgerEntry, error)
}

type PostgresWalletRepository struct {
	DB *sql.DB
}

func NewWalletRepository(database *sql.DB) *PostgresWalletRepository {
	return &PostgresWalletRepository{DB: database}
}

func (r *PostgresWalletRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.DB.BeginTx(ctx, nil)
}

func (r *PostgresWalletRepository) GetBalanceForUpdate(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
	var balance int64
	err := tx.QueryRowContext(ctx, `SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperrors.Newf(apperrors.KindNotFound, "wallet for user %d not found", userID)
		}
		return 0, fmt.Errorf("locking wallet for user %d: %w", userID, err)
	}
	return balance, nil
}

func (r *PostgresWalletRepository) EnsureWallet(ctx context.Context, tx *sql.Tx, userID int64) error {
	query := `
		INSERT INTO wallets (user_id, balance, updated_at)
		VALUES ($1, 0, NOW())
		ON CONFLICT (user_id) DO NOTHING`
	if _, err := tx.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("ensuring wallet for user %d: %w", userID, err)
	}
	return nil
}

func (r *PostgresWalletRepository) AddToBalance(ctx context.Context, tx *sql.Tx, userID, delta int64) error {
	query := `UPDATE wallets SET balance = balance + $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := tx.ExecContext(ctx, query, userID, delta); err != nil {
		return fmt.Errorf("updating balance for user %d: %w", userID, err)
	}
	return nil
}

func (r *PostgresWalletRepository) InsertLedgerEntry(ctx context.Context, tx *sql.Tx, entry *db.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (user_id, booking_id, amount, entry_type, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`
	err := tx.QueryRowContext(ctx, query, entry.UserID, entry.BookingID, entry.Amount, entry.EntryType).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending ledger entry: %w", err)
	}
	return nil
}

// GetBalance lazily creates the wallet row, matching top-up behavior: a user
// who never held money reads as zero rather than missing.
func (r *PostgresWalletRepository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := r.DB.QueryRowContext(ctx, `SELECT balance FROM wallets WHERE user_id = $1`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		query := `
			INSERT INTO wallets (user_id, balance, updated_at)
			VALUES ($1, 0, NOW())
			ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
			RETURNING balance`
		err = r.DB.QueryRowContext(ctx, query, userID).Scan(&balance)
	}
	if err != nil {
		return 0, fmt.Errorf("querying balance for user %d: %w", userID, err)
	}
	return balance, nil
}

func (r *PostgresWalletRepository) ListLedgerEntries(ctx context.Context, userID int64) ([]db.LedgerEntry, error) {
	query := `
		SELECT id, user_id, booking_id, amount, entry_type, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying ledger entries for user %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []db.LedgerEntry
	for rows.Next() {
		var e db.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.BookingID, &e.Amount, &e.EntryType, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger entries: %w", err)
	}
	return entries, nil
}
