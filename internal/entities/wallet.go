package entities

import (
	"time"

	"garagerent/internal/db"
)

type BalanceResponse struct {
	UserID  int64 `json:"user_id"`
	Balance int64 `json:"balance"`
}

type CreditsResponse struct {
	UserID  int64 `json:"user_id"`
	Credits int64 `json:"credits"`
}

type AddFundsRequest struct {
	Amount int64 `json:"amount"`
}

type AddCreditsRequest struct {
	Amount int64 `json:"amount"`
}

type TransferRequest struct {
	ToUserID  int64 `json:"to_user_id"`
	Amount    int64 `json:"amount"`
	BookingID int64 `json:"booking_id"`
}

type LedgerEntryResponse struct {
	ID        int64              `json:"id"`
	UserID    int64              `json:"user_id"`
	BookingID *int64             `json:"booking_id,omitempty"`
	Amount    int64              `json:"amount"`
	EntryType db.LedgerEntryType `json:"entry_type"`
	CreatedAt time.Time          `json:"created_at"`
}

type CreditTransactionResponse struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	BookingID *int64          `json:"booking_id,omitempty"`
	Amount    int64           `json:"amount"`
	TxType    db.CreditTxType `json:"tx_type"`
	CreatedAt time.Time       `json:"created_at"`
}

func LedgerEntryToResponse(e *db.LedgerEntry) LedgerEntryResponse {
	resp := LedgerEntryResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		Amount:    e.Amount,
		EntryType: e.EntryType,
		CreatedAt: e.CreatedAt,
	}
	if e.BookingID.Valid {
		id := e.BookingID.Int64
		resp.BookingID = &id
	}
	return resp
}

func CreditTransactionToResponse(t *db.CreditTransaction) CreditTransactionResponse {
	resp := CreditTransactionResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		Amount:    t.Amount,
		TxType:    t.TxType,
		CreatedAt: t.CreatedAt,
	}
	if t.BookingID.Valid {
		id := t.BookingID.Int64
		resp.BookingID = &id
	}
	return resp
}
