package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DATA-DOG/go-sqlmock"

	apperrors "garagerent/internal/errors"
	"garagerent/internal/repository"
)

func newAvailabilityMock(t *testing.T) (*AvailabilityService, sqlmock.Sqlmock) {
	t.Helper()
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	bookings := repository.NewBookingRepository(database)
	spaces := repository.NewSpaceRepository(database)
	return NewAvailabilityService(bookings, spaces), mock
}

func TestValidateInterval(t *testing.T) {
	svc, _ := newAvailabilityMock(t)
	start, end := futureRange()

	tests := []struct {
		name       string
		start, end time.Time
		wantErr    bool
	}{
		{"valid future interval", start, end, false},
		{"missing start", time.Time{}, end, true},
		{"missing end", start, time.Time{}, true},
		{"end equals start", start, start, true},
		{"end before start", end, start, true},
		{"start in the past", time.Now().Add(-time.Hour), end, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateInterval(tt.start, tt.end)
			if tt.wantErr {
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckConflictAvailable(t *testing.T) {
	svc, mock := newAvailabilityMock(t)
	start, end := futureRange()

	expectSpace(mock, 10, 3, 50)
	expectNoOverlaps(mock, 10, start, end, 0)

	resp, err := svc.CheckConflict(context.Background(), 10, start, end, 0)
	require.NoError(t, err)
	assert.True(t, resp.Available)
	assert.Empty(t, resp.ConflictingIntervals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckConflictReportsIntervals(t *testing.T) {
	svc, mock := newAvailabilityMock(t)
	start, end := futureRange()
	busyStart := start.Add(12 * time.Hour)
	busyEnd := busyStart.Add(24 * time.Hour)

	expectSpace(mock, 10, 3, 50)
	mock.ExpectQuery(`FROM bookings`).
		WithArgs(int64(10), "confirmed", start, end, int64(0)).
		WillReturnRows(bookingRow(7, 8, 10, busyStart, busyEnd, "confirmed", 100))

	resp, err := svc.CheckConflict(context.Background(), 10, start, end, 0)
	require.NoError(t, err)
	assert.False(t, resp.Available)
	require.Len(t, resp.ConflictingIntervals, 1)
	assert.True(t, resp.ConflictingIntervals[0].Start.Equal(busyStart))
	assert.True(t, resp.ConflictingIntervals[0].End.Equal(busyEnd))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckConflictUnknownSpace(t *testing.T) {
	svc, mock := newAvailabilityMock(t)
	start, end := futureRange()

	mock.ExpectQuery(`FROM spaces`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "price_per_day", "created_at"}))

	_, err := svc.CheckConflict(context.Background(), 99, start, end, 0)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
