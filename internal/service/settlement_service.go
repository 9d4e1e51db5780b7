package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"

	"garagerent/internal/db"
	apperrors "garagerent/internal/errors"
	"garagerent/internal/repository"
)

var (
	ErrInsufficientBalance = apperrors.New(apperrors.KindInsufficientBalance, "insufficient balance")
	ErrInsufficientCredits = apperrors.New(apperrors.KindInsufficientCredits, "insufficient credits")
)

// SettlementPolicy holds the platform constants applied to every settlement.
type SettlementPolicy struct {
	// CommissionRateBps is the platform cut in basis points (1000 = 10%).
	CommissionRateBps int64
	// CreditCapPerBooking limits how many credits one booking may consume.
	CreditCapPerBooking int64
	// PlatformAccountID receives the commission leg of each transfer.
	PlatformAccountID int64
}

func DefaultSettlementPolicy() SettlementPolicy {
	return SettlementPolicy{
		CommissionRateBps:   1000,
		CreditCapPerBooking: 100,
		PlatformAccountID:   1,
	}
}

// SettlementService moves wallet money and credits between users. Every
// operation is a single atomic unit: on any failure the balance store is left
// exactly as it was before the call.
type SettlementService struct {
	wallets repository.WalletRepository
	credits repository.CreditRepository
	policy  SettlementPolicy
}

func NewSettlementService(wallets repository.WalletRepository, credits repository.CreditRepository, policy SettlementPolicy) *SettlementService {
	return &SettlementService{wallets: wallets, credits: credits, policy: policy}
}

func (s *SettlementService) Policy() SettlementPolicy {
	return s.policy
}

// Transfer settles bookingID by moving amount from one wallet to another in
// its own transaction. See TransferTx for the algorithm.
func (s *SettlementService) Transfer(ctx context.Context, fromUser, toUser, amount, bookingID int64) error {
	tx, err := s.wallets.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transfer tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.TransferTx(ctx, tx, fromUser, toUser, amount, bookingID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapStorageErr(err)
	}
	return nil
}

// TransferTx runs the wallet transfer inside the caller's transaction so a
// booking transition and its settlement commit or roll back together.
//
// Both wallet rows are locked in ascending user-id order; two concurrent
// transfers between the same pair cannot deadlock. The sender is debited the
// full amount, the receiver credited amount minus commission, and the
// commission leg goes to the platform account. Three ledger entries record
// the move against bookingID.
func (s *SettlementService) TransferTx(ctx context.Context, tx *sql.Tx, fromUser, toUser, amount, bookingID int64) error {
	if amount <= 0 {
		return apperrors.Validation("transfer amount must be positive")
	}
	if fromUser == toUser {
		return apperrors.Validation("cannot transfer to the same user")
	}

	// The receiver may never have held money; the sender must have.
	if err := s.wallets.EnsureWallet(ctx, tx, toUser); err != nil {
		return err
	}

	firstID, secondID := fromUser, toUser
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}

	firstBalance, err := s.wallets.GetBalanceForUpdate(ctx, tx, firstID)
	if err != nil {
		return err
	}
	secondBalance, err := s.wallets.GetBalanceForUpdate(ctx, tx, secondID)
	if err != nil {
		return err
	}

	fromBalance := firstBalance
	if fromUser == secondID {
		fromBalance = secondBalance
	}
	if fromBalance < amount {
		return ErrInsufficientBalance
	}

	commission := amount * s.policy.CommissionRateBps / 10000
	amountForReceiver := amount - commission

	if err := s.wallets.AddToBalance(ctx, tx, fromUser, -amount); err != nil {
		return err
	}
	if err := s.wallets.AddToBalance(ctx, tx, toUser, amountForReceiver); err != nil {
		return err
	}

	ref := bookingRef(bookingID)
	debit := db.LedgerEntry{UserID: fromUser, BookingID: ref, Amount: -amount, EntryType: db.EntryDebit}
	if err := s.wallets.InsertLedgerEntry(ctx, tx, &debit); err != nil {
		return err
	}
	credit := db.LedgerEntry{UserID: toUser, BookingID: ref, Amount: amountForReceiver, EntryType: db.EntryCredit}
	if err := s.wallets.InsertLedgerEntry(ctx, tx, &credit); err != nil {
		return err
	}

	if commission > 0 {
		// Platform wallet is always touched last, after all user locks, so
		// it cannot participate in a lock cycle.
		if err := s.wallets.EnsureWallet(ctx, tx, s.policy.PlatformAccountID); err != nil {
			return err
		}
		if err := s.wallets.AddToBalance(ctx, tx, s.policy.PlatformAccountID, commission); err != nil {
			return err
		}
		entry := db.LedgerEntry{UserID: s.policy.PlatformAccountID, BookingID: ref, Amount: commission, EntryType: db.EntryCommission}
		if err := s.wallets.InsertLedgerEntry(ctx, tx, &entry); err != nil {
			return err
		}
	}
	return nil
}

// UseCredits atomically debits the credit balance for a booking.
func (s *SettlementService) UseCredits(ctx context.Context, userID, amount, bookingID int64) error {
	tx, err := s.credits.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin credits tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.UseCreditsTx(ctx, tx, userID, amount, bookingID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapStorageErr(err)
	}
	return nil
}

func (s *SettlementService) UseCreditsTx(ctx context.Context, tx *sql.Tx, userID, amount, bookingID int64) error {
	if amount <= 0 {
		return apperrors.Validation("credit amount must be positive")
	}
	if err := s.credits.EnsureCredits(ctx, tx, userID); err != nil {
		return err
	}
	credits, err := s.credits.GetCreditsForUpdate(ctx, tx, userID)
	if err != nil {
		return err
	}
	if credits < amount {
		return ErrInsufficientCredits
	}
	if err := s.credits.AddToCredits(ctx, tx, userID, -amount); err != nil {
		return err
	}
	record := db.CreditTransaction{UserID: userID, Amount: amount, TxType: db.CreditTxUse, BookingID: bookingRef(bookingID)}
	return s.credits.InsertTransaction(ctx, tx, &record)
}

// AddCredits tops up the credit balance and records the transaction.
func (s *SettlementService) AddCredits(ctx context.Context, userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperrors.Validation("credit amount must be positive")
	}
	tx, err := s.credits.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin credits tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.credits.EnsureCredits(ctx, tx, userID); err != nil {
		return 0, err
	}
	credits, err := s.credits.GetCreditsForUpdate(ctx, tx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.credits.AddToCredits(ctx, tx, userID, amount); err != nil {
		return 0, err
	}
	record := db.CreditTransaction{UserID: userID, Amount: amount, TxType: db.CreditTxAdd}
	if err := s.credits.InsertTransaction(ctx, tx, &record); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, mapStorageErr(err)
	}
	return credits + amount, nil
}

// AddFunds deposits wallet money. The matching ledger entry keeps the
// balance equal to the sum of the user's entries.
func (s *SettlementService) AddFunds(ctx context.Context, userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperrors.Validation("deposit amount must be positive")
	}
	tx, err := s.wallets.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin wallet tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.wallets.EnsureWallet(ctx, tx, userID); err != nil {
		return 0, err
	}
	balance, err := s.wallets.GetBalanceForUpdate(ctx, tx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.wallets.AddToBalance(ctx, tx, userID, amount); err != nil {
		return 0, err
	}
	entry := db.LedgerEntry{UserID: userID, Amount: amount, EntryType: db.EntryDeposit}
	if err := s.wallets.InsertLedgerEntry(ctx, tx, &entry); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, mapStorageErr(err)
	}
	return balance + amount, nil
}

func (s *SettlementService) WalletBalance(ctx context.Context, userID int64) (int64, error) {
	return s.wallets.GetBalance(ctx, userID)
}

func (s *SettlementService) CreditBalance(ctx context.Context, userID int64) (int64, error) {
	return s.credits.GetCredits(ctx, userID)
}

func (s *SettlementService) WalletHistory(ctx context.Context, userID int64) ([]db.LedgerEntry, error) {
	return s.wallets.ListLedgerEntries(ctx, userID)
}

func (s *SettlementService) CreditHistory(ctx context.Context, userID int64) ([]db.CreditTransaction, error) {
	return s.credits.ListTransactions(ctx, userID)
}

func bookingRef(bookingID int64) sql.NullInt64 {
	if bookingID <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: bookingID, Valid: true}
}

// mapStorageErr translates Postgres failure codes into the stable error
// kinds callers react to. An exclusion-constraint violation means a
// conflicting confirmed interval won the race; a serialization failure means
// nothing changed and the request may be retried.
func mapStorageErr(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23P01": // exclusion_violation
			return apperrors.Conflict("space is not available for the selected dates")
		case "40001": // serialization_failure
			return apperrors.New(apperrors.KindStorage, "transaction aborted, no change occurred, retry")
		}
	}
	log.Printf("storage error: %v", err)
	return apperrors.New(apperrors.KindStorage, "storage error")
}
