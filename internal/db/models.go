package db

import (
	"database/sql"
	"time"
)

// BookingStatus is the closed set of booking lifecycle states. "pending" is
// the only non-terminal state; every transition out of it is final.
type BookingStatus string

const (
	StatusPending          BookingStatus = "pending"
	StatusConfirmed        BookingStatus = "confirmed"
	StatusRejected         BookingStatus = "rejected"
	StatusCancelled        BookingStatus = "cancelled"
	StatusCancelledByOwner BookingStatus = "cancelled_by_owner"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCancelled, StatusCancelledByOwner:
		return true
	}
	return false
}

// Active reports whether the booking can still be cancelled by the renter.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Space struct {
	ID          int64
	OwnerID     int64
	Title       string
	PricePerDay int64 // cents per day
	CreatedAt   time.Time
}

// Booking reserves a space for the half-open interval [StartDate, EndDate).
type Booking struct {
	ID          int64
	RenterID    int64
	SpaceID     int64
	StartDate   time.Time
	EndDate     time.Time
	Status      BookingStatus
	TotalPrice  int64
	CreditsUsed int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Wallet struct {
	UserID    int64
	Balance   int64 // cents, never negative
	UpdatedAt time.Time
}

type CreditBalance struct {
	UserID  int64
	Credits int64
}

type LedgerEntryType string

const (
	EntryDebit      LedgerEntryType = "debit"
	EntryCredit     LedgerEntryType = "credit"
	EntryCommission LedgerEntryType = "commission"
	EntryDeposit    LedgerEntryType = "deposit"
)

// LedgerEntry is append-only. A wallet balance is the sum of its owner's
// entry amounts; the ledger, not the cached balance, is the source of truth.
type LedgerEntry struct {
	ID        int64
	UserID    int64
	BookingID sql.NullInt64
	Amount    int64 // signed
	EntryType LedgerEntryType
	CreatedAt time.Time
}

type CreditTxType string

const (
	CreditTxAdd CreditTxType = "add"
	CreditTxUse CreditTxType = "use"
)

type CreditTransaction struct {
	ID        int64
	UserID    int64
	Amount    int64
	TxType    CreditTxType
	BookingID sql.NullInt64
	CreatedAt time.Time
}
