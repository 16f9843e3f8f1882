package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/hotel-room-allocation/internal/allocator"
	"github.com/iliyamo/hotel-room-allocation/internal/model"
)

// insertBatch bounds the rows per multi-row INSERT so the statement stays
// well below MySQL's placeholder limit.
const insertBatch = 500

// SnapshotRepo stores engine snapshots.  The bookings and booking_rooms
// tables always hold exactly one snapshot, whose version is kept in the
// single engine_state row.
type SnapshotRepo struct {
	db *sql.DB
}

// NewSnapshotRepo returns a SnapshotRepo bound to db.
func NewSnapshotRepo(db *sql.DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

// Save replaces the stored snapshot with snap inside one transaction.  It
// returns false without writing when the stored version is the same or
// newer, which happens when saves from concurrent requests finish out of
// order.
func (r *SnapshotRepo) Save(ctx context.Context, snap allocator.Snapshot) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var stored uint64
	err = tx.QueryRowContext(ctx, `SELECT version FROM engine_state WHERE id = 1 FOR UPDATE`).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("read version: %w", err)
	}
	if err == nil && stored >= snap.Version {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM booking_rooms`); err != nil {
		return false, fmt.Errorf("clear booking_rooms: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
		return false, fmt.Errorf("clear bookings: %w", err)
	}
	if err := insertBookingsTx(ctx, tx, snap.Bookings); err != nil {
		return false, err
	}
	if err := insertBookingRoomsTx(ctx, tx, snap.Bookings); err != nil {
		return false, err
	}
	const upsert = `INSERT INTO engine_state (id, version, saved_at) VALUES (1, ?, ?)
		ON DUPLICATE KEY UPDATE version = VALUES(version), saved_at = VALUES(saved_at)`
	if _, err := tx.ExecContext(ctx, upsert, snap.Version, snap.TakenAt.UTC()); err != nil {
		return false, fmt.Errorf("write version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return true, nil
}

func insertBookingsTx(ctx context.Context, tx *sql.Tx, bookings []model.Booking) error {
	for start := 0; start < len(bookings); start += insertBatch {
		end := min(start+insertBatch, len(bookings))
		var q strings.Builder
		q.WriteString(`INSERT INTO bookings (id, guest_id, check_in, check_out, travel_time_minutes, placement, status, source, seq, created_at, cancelled_at) VALUES `)
		args := make([]interface{}, 0, (end-start)*11)
		for i, b := range bookings[start:end] {
			if i > 0 {
				q.WriteString(",")
			}
			q.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			var cancelled interface{}
			if b.CancelledAt != nil {
				cancelled = b.CancelledAt.UTC()
			}
			args = append(args, b.ID, b.GuestID, b.CheckIn.UTC(), b.CheckOut.UTC(), b.TravelTimeMinutes,
				string(b.Placement), string(b.Status), string(b.Source), b.Seq, b.CreatedAt.UTC(), cancelled)
		}
		if _, err := tx.ExecContext(ctx, q.String(), args...); err != nil {
			return fmt.Errorf("insert bookings: %w", err)
		}
	}
	return nil
}

func insertBookingRoomsTx(ctx context.Context, tx *sql.Tx, bookings []model.Booking) error {
	type row struct {
		id   string
		room int
	}
	var rows []row
	for _, b := range bookings {
		for _, n := range b.Rooms {
			rows = append(rows, row{b.ID, n})
		}
	}
	for start := 0; start < len(rows); start += insertBatch {
		end := min(start+insertBatch, len(rows))
		var q strings.Builder
		q.WriteString(`INSERT INTO booking_rooms (booking_id, room_number) VALUES `)
		args := make([]interface{}, 0, (end-start)*2)
		for i, rw := range rows[start:end] {
			if i > 0 {
				q.WriteString(",")
			}
			q.WriteString("(?, ?)")
			args = append(args, rw.id, rw.room)
		}
		if _, err := tx.ExecContext(ctx, q.String(), args...); err != nil {
			return fmt.Errorf("insert booking_rooms: %w", err)
		}
	}
	return nil
}

// Load reads the stored snapshot.  It returns ErrNoSnapshot when nothing
// has been saved yet.
func (r *SnapshotRepo) Load(ctx context.Context) (allocator.Snapshot, error) {
	var (
		snap    allocator.Snapshot
		savedAt time.Time
	)
	err := r.db.QueryRowContext(ctx, `SELECT version, saved_at FROM engine_state WHERE id = 1`).Scan(&snap.Version, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return allocator.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return allocator.Snapshot{}, fmt.Errorf("read version: %w", err)
	}
	snap.TakenAt = savedAt.UTC()

	rows, err := r.db.QueryContext(ctx, `SELECT id, guest_id, check_in, check_out, travel_time_minutes, placement, status, source, seq, created_at, cancelled_at
		FROM bookings ORDER BY seq`)
	if err != nil {
		return allocator.Snapshot{}, fmt.Errorf("query bookings: %w", err)
	}
	index := make(map[string]int)
	for rows.Next() {
		var (
			b         model.Booking
			placement string
			status    string
			source    string
			cancelled sql.NullTime
		)
		if err := rows.Scan(&b.ID, &b.GuestID, &b.CheckIn, &b.CheckOut, &b.TravelTimeMinutes,
			&placement, &status, &source, &b.Seq, &b.CreatedAt, &cancelled); err != nil {
			rows.Close()
			return allocator.Snapshot{}, fmt.Errorf("scan booking: %w", err)
		}
		b.Placement = model.Placement(placement)
		b.Status = model.BookingStatus(status)
		b.Source = model.BookingSource(source)
		if cancelled.Valid {
			t := cancelled.Time.UTC()
			b.CancelledAt = &t
		}
		index[b.ID] = len(snap.Bookings)
		snap.Bookings = append(snap.Bookings, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return allocator.Snapshot{}, fmt.Errorf("read bookings: %w", err)
	}
	if err := rows.Close(); err != nil {
		return allocator.Snapshot{}, fmt.Errorf("read bookings: %w", err)
	}

	roomRows, err := r.db.QueryContext(ctx, `SELECT booking_id, room_number FROM booking_rooms ORDER BY booking_id, room_number`)
	if err != nil {
		return allocator.Snapshot{}, fmt.Errorf("query booking_rooms: %w", err)
	}
	defer roomRows.Close()
	for roomRows.Next() {
		var (
			id   string
			room int
		)
		if err := roomRows.Scan(&id, &room); err != nil {
			return allocator.Snapshot{}, fmt.Errorf("scan booking_room: %w", err)
		}
		i, ok := index[id]
		if !ok {
			return allocator.Snapshot{}, fmt.Errorf("%w: room %d references missing booking %s", allocator.ErrCorruptSnapshot, room, id)
		}
		snap.Bookings[i].Rooms = append(snap.Bookings[i].Rooms, room)
	}
	if err := roomRows.Err(); err != nil {
		return allocator.Snapshot{}, fmt.Errorf("read booking_rooms: %w", err)
	}
	return snap, nil
}
