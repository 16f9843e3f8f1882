package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-allocation/internal/allocator"
	"github.com/iliyamo/hotel-room-allocation/internal/model"
)

var (
	bookingCols = []string{"id", "guest_id", "check_in", "check_out", "travel_time_minutes", "placement", "status", "source", "seq", "created_at", "cancelled_at"}
	t0          = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func sampleSnapshot(version uint64) allocator.Snapshot {
	cancelledAt := t0.Add(time.Hour)
	return allocator.Snapshot{
		Version: version,
		TakenAt: t0.Add(2 * time.Hour),
		Bookings: []model.Booking{
			{ID: "bk-1", GuestID: 7, Rooms: []int{101, 102}, CheckIn: t0, CheckOut: t0.AddDate(0, 0, 2),
				TravelTimeMinutes: 1, Placement: model.PlacementSingleFloor, Status: model.BookingConfirmed,
				Source: model.SourceRequest, Seq: 1, CreatedAt: t0},
			{ID: "bk-2", GuestID: 8, Rooms: []int{201}, CheckIn: t0, CheckOut: t0.AddDate(0, 0, 1),
				Placement: model.PlacementSingleFloor, Status: model.BookingCancelled,
				Source: model.SourceRequest, Seq: 2, CreatedAt: t0, CancelledAt: &cancelledAt},
		},
	}
}

func TestSnapshotRepo_SaveWritesNewerVersion(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSnapshotRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT version FROM engine_state WHERE id = 1 FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(2))
	mock.ExpectExec(`DELETE FROM booking_rooms`).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM bookings`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO bookings \(`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO booking_rooms`).
		WithArgs("bk-1", int64(101), "bk-1", int64(102), "bk-2", int64(201)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO engine_state`).
		WithArgs(int64(3), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	saved, err := repo.Save(context.Background(), sampleSnapshot(3))
	require.NoError(t, err)
	assert.True(t, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_SaveFirstSnapshot(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSnapshotRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT version FROM engine_state`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectExec(`DELETE FROM booking_rooms`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM bookings`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO engine_state`).
		WithArgs(int64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	saved, err := repo.Save(context.Background(), allocator.Snapshot{Version: 1, TakenAt: t0})
	require.NoError(t, err)
	assert.True(t, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_SaveSkipsStaleVersion(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSnapshotRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT version FROM engine_state`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(5))
	mock.ExpectRollback()

	saved, err := repo.Save(context.Background(), sampleSnapshot(5))
	require.NoError(t, err)
	assert.False(t, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_SaveBatchesLargeInserts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSnapshotRepo(db)

	snap := allocator.Snapshot{Version: 9, TakenAt: t0}
	for i := 0; i < insertBatch+1; i++ {
		snap.Bookings = append(snap.Bookings, model.Booking{
			ID: fmt.Sprintf("bk-%d", i), Rooms: []int{101}, CheckIn: t0, CheckOut: t0.AddDate(0, 0, 1),
			Status: model.BookingCancelled, Seq: uint64(i + 1), CreatedAt: t0,
		})
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT version FROM engine_state`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(8))
	mock.ExpectExec(`DELETE FROM booking_rooms`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM bookings`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO bookings \(`).WillReturnResult(sqlmock.NewResult(0, insertBatch))
	mock.ExpectExec(`INSERT INTO bookings \(`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO booking_rooms`).WillReturnResult(sqlmock.NewResult(0, insertBatch))
	mock.ExpectExec(`INSERT INTO booking_rooms`).WithArgs(fmt.Sprintf("bk-%d", insertBatch), int64(101)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO engine_state`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	saved, err := repo.Save(context.Background(), snap)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_SaveRollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSnapshotRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT version FROM engine_state`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))
	mock.ExpectExec(`DELETE FROM booking_rooms`).WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	saved, err := repo.Save(context.Background(), sampleSnapshot(2))
	require.Error(t, err)
	assert.False(t, saved)
	assert.Contains(t, err.Error(), "clear booking_rooms")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_Load(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSnapshotRepo(db)
	cancelledAt := t0.Add(time.Hour)

	mock.ExpectQuery(`SELECT version, saved_at FROM engine_state`).
		WillReturnRows(sqlmock.NewRows([]string{"version", "saved_at"}).AddRow(4, t0))
	mock.ExpectQuery(`FROM bookings ORDER BY seq`).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow("bk-1", 7, t0, t0.AddDate(0, 0, 2), 1, "single-floor", "CONFIRMED", "request", 1, t0, nil).
			AddRow("bk-2", 8, t0, t0.AddDate(0, 0, 1), 0, "single-floor", "CANCELLED", "request", 2, t0, cancelledAt))
	mock.ExpectQuery(`SELECT booking_id, room_number FROM booking_rooms`).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "room_number"}).
			AddRow("bk-1", 101).AddRow("bk-1", 102).AddRow("bk-2", 201))

	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(4), snap.Version)
	require.Len(t, snap.Bookings, 2)

	b := snap.Bookings[0]
	assert.Equal(t, "bk-1", b.ID)
	assert.Equal(t, uint64(7), b.GuestID)
	assert.Equal(t, []int{101, 102}, b.Rooms)
	assert.Equal(t, model.PlacementSingleFloor, b.Placement)
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.Equal(t, uint64(1), b.Seq)
	assert.Nil(t, b.CancelledAt)

	b = snap.Bookings[1]
	assert.Equal(t, model.BookingCancelled, b.Status)
	require.NotNil(t, b.CancelledAt)
	assert.True(t, cancelledAt.Equal(*b.CancelledAt))
	assert.Equal(t, []int{201}, b.Rooms)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_LoadRestoresIntoEngine(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSnapshotRepo(db)

	mock.ExpectQuery(`SELECT version, saved_at FROM engine_state`).
		WillReturnRows(sqlmock.NewRows([]string{"version", "saved_at"}).AddRow(2, t0))
	mock.ExpectQuery(`FROM bookings ORDER BY seq`).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow("bk-1", 7, t0, t0.AddDate(0, 0, 2), 1, "single-floor", "CONFIRMED", "request", 1, t0, nil))
	mock.ExpectQuery(`SELECT booking_id, room_number FROM booking_rooms`).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "room_number"}).
			AddRow("bk-1", 101).AddRow("bk-1", 102))

	snap, err := repo.Load(context.Background())
	require.NoError(t, err)

	eng := allocator.New()
	require.NoError(t, eng.Restore(snap))
	assert.Equal(t, 2, eng.Stats().Occupied)
	assert.Equal(t, uint64(2), eng.Snapshot().Version)
}

func TestSnapshotRepo_LoadEmpty(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSnapshotRepo(db)

	mock.ExpectQuery(`SELECT version, saved_at FROM engine_state`).
		WillReturnRows(sqlmock.NewRows([]string{"version", "saved_at"}))

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_LoadOrphanRoom(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSnapshotRepo(db)

	mock.ExpectQuery(`SELECT version, saved_at FROM engine_state`).
		WillReturnRows(sqlmock.NewRows([]string{"version", "saved_at"}).AddRow(1, t0))
	mock.ExpectQuery(`FROM bookings ORDER BY seq`).
		WillReturnRows(sqlmock.NewRows(bookingCols))
	mock.ExpectQuery(`SELECT booking_id, room_number FROM booking_rooms`).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "room_number"}).AddRow("ghost", 101))

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, allocator.ErrCorruptSnapshot)
}

func TestSnapshotRepo_LoadFailsOnBookingRowError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSnapshotRepo(db)
	rowErr := errors.New("connection reset")

	mock.ExpectQuery(`SELECT version, saved_at FROM engine_state`).
		WillReturnRows(sqlmock.NewRows([]string{"version", "saved_at"}).AddRow(3, t0))
	mock.ExpectQuery(`FROM bookings ORDER BY seq`).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow("bk-1", 7, t0, t0.AddDate(0, 0, 2), 1, "single-floor", "CONFIRMED", "request", 1, t0, nil).
			AddRow("bk-2", 8, t0, t0.AddDate(0, 0, 1), 0, "single-floor", "CONFIRMED", "request", 2, t0, nil).
			RowError(1, rowErr))

	snap, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, rowErr)
	assert.Empty(t, snap.Bookings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_LoadFailsOnRoomRowError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSnapshotRepo(db)
	rowErr := errors.New("connection reset")

	mock.ExpectQuery(`SELECT version, saved_at FROM engine_state`).
		WillReturnRows(sqlmock.NewRows([]string{"version", "saved_at"}).AddRow(3, t0))
	mock.ExpectQuery(`FROM bookings ORDER BY seq`).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow("bk-1", 7, t0, t0.AddDate(0, 0, 2), 1, "single-floor", "CONFIRMED", "request", 1, t0, nil))
	mock.ExpectQuery(`SELECT booking_id, room_number FROM booking_rooms`).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "room_number"}).
			AddRow("bk-1", 101).AddRow("bk-1", 102).
			RowError(1, rowErr))

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, rowErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
