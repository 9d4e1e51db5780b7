package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "garagerent/internal/errors"
	"garagerent/internal/repository"
)

func newSettlementMock(t *testing.T) (*SettlementService, sqlmock.Sqlmock) {
	t.Helper()
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	wallets := repository.NewWalletRepository(database)
	credits := repository.NewCreditRepository(database)
	return NewSettlementService(wallets, credits, DefaultSettlementPolicy()), mock
}

func expectBalanceLock(mock sqlmock.Sqlmock, userID, balance int64) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(balance))
}

func expectEnsureWallet(mock sqlmock.Sqlmock, userID int64) {
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO wallets`)).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func expectAddToBalance(mock sqlmock.Sqlmock, userID, delta int64) {
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE wallets SET balance = balance + $2`)).
		WithArgs(userID, delta).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func expectLedgerInsert(mock sqlmock.Sqlmock, userID int64, bookingID interface{}, amount int64, entryType string) {
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO ledger_entries`)).
		WithArgs(userID, bookingID, amount, entryType).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))
}

func TestTransferCommissionSplit(t *testing.T) {
	svc, mock := newSettlementMock(t)

	// 100 from user 5 to user 3 at 10%: sender -100, receiver +90,
	// platform account +10, three ledger entries.
	mock.ExpectBegin()
	expectEnsureWallet(mock, 3)
	expectBalanceLock(mock, 3, 0)
	expectBalanceLock(mock, 5, 500)
	expectAddToBalance(mock, 5, -100)
	expectAddToBalance(mock, 3, 90)
	expectLedgerInsert(mock, 5, int64(7), -100, "debit")
	expectLedgerInsert(mock, 3, int64(7), 90, "credit")
	expectEnsureWallet(mock, 1)
	expectAddToBalance(mock, 1, 10)
	expectLedgerInsert(mock, 1, int64(7), 10, "commission")
	mock.ExpectCommit()

	err := svc.Transfer(context.Background(), 5, 3, 100, 7)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferLocksInAscendingOrder(t *testing.T) {
	svc, mock := newSettlementMock(t)

	// Sender id is higher than receiver id; the lower id must still be
	// locked first.
	mock.ExpectBegin()
	expectEnsureWallet(mock, 2)
	expectBalanceLock(mock, 2, 0)
	expectBalanceLock(mock, 9, 1000)
	expectAddToBalance(mock, 9, -200)
	expectAddToBalance(mock, 2, 180)
	expectLedgerInsert(mock, 9, int64(11), -200, "debit")
	expectLedgerInsert(mock, 2, int64(11), 180, "credit")
	expectEnsureWallet(mock, 1)
	expectAddToBalance(mock, 1, 20)
	expectLedgerInsert(mock, 1, int64(11), 20, "commission")
	mock.ExpectCommit()

	err := svc.Transfer(context.Background(), 9, 2, 200, 11)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferInsufficientBalance(t *testing.T) {
	svc, mock := newSettlementMock(t)

	mock.ExpectBegin()
	expectEnsureWallet(mock, 3)
	expectBalanceLock(mock, 3, 0)
	expectBalanceLock(mock, 5, 40)
	mock.ExpectRollback()

	err := svc.Transfer(context.Background(), 5, 3, 100, 7)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, apperrors.KindInsufficientBalance, apperrors.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRejectsBadInput(t *testing.T) {
	svc, mock := newSettlementMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()
	err := svc.Transfer(context.Background(), 5, 3, 0, 7)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	mock.ExpectBegin()
	mock.ExpectRollback()
	err = svc.Transfer(context.Background(), 5, 5, 100, 7)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUseCreditsDebitsBalance(t *testing.T) {
	svc, mock := newSettlementMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_credits`)).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT credits FROM user_credits WHERE user_id = $1 FOR UPDATE`)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"credits"}).AddRow(150))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE user_credits SET credits = credits + $2`)).
		WithArgs(int64(4), int64(-60)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO credit_transactions`)).
		WithArgs(int64(4), int64(60), "use", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))
	mock.ExpectCommit()

	err := svc.UseCredits(context.Background(), 4, 60, 9)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUseCreditsInsufficient(t *testing.T) {
	svc, mock := newSettlementMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_credits`)).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT credits FROM user_credits WHERE user_id = $1 FOR UPDATE`)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"credits"}).AddRow(30))
	mock.ExpectRollback()

	err := svc.UseCredits(context.Background(), 4, 60, 9)
	require.ErrorIs(t, err, ErrInsufficientCredits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddFundsReturnsNewBalance(t *testing.T) {
	svc, mock := newSettlementMock(t)

	mock.ExpectBegin()
	expectEnsureWallet(mock, 6)
	expectBalanceLock(mock, 6, 20)
	expectAddToBalance(mock, 6, 80)
	expectLedgerInsert(mock, 6, nil, 80, "deposit")
	mock.ExpectCommit()

	balance, err := svc.AddFunds(context.Background(), 6, 80)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCreditsReturnsNewBalance(t *testing.T) {
	svc, mock := newSettlementMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_credits`)).
		WithArgs(int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT credits FROM user_credits WHERE user_id = $1 FOR UPDATE`)).
		WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"credits"}).AddRow(10))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE user_credits SET credits = credits + $2`)).
		WithArgs(int64(6), int64(40)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO credit_transactions`)).
		WithArgs(int64(6), int64(40), "add", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(2, time.Now()))
	mock.ExpectCommit()

	credits, err := svc.AddCredits(context.Background(), 6, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(50), credits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapStorageErr(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind apperrors.Kind
	}{
		{"exclusion violation means conflict", &pq.Error{Code: "23P01"}, apperrors.KindConflict},
		{"serialization failure is retryable storage", &pq.Error{Code: "40001"}, apperrors.KindStorage},
		{"anything else is generic storage", errors.New("connection reset"), apperrors.KindStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, apperrors.KindOf(mapStorageErr(tt.err)))
		})
	}
	assert.NoError(t, mapStorageErr(nil))
}
