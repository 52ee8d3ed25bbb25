package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"karabook/internal/models"

	"github.com/google/uuid"
)

const bookingColumns = `id, room_id, customer_id, date, start_time, end_time, status, created_at, updated_at`

// expandedColumns joins in the referenced room and customer so read paths
// can return populated snapshots. LEFT JOIN keeps bookings visible after
// a referenced entity was deleted.
const expandedColumns = `b.id, b.room_id, b.customer_id, b.date, b.start_time, b.end_time,
              b.status, b.created_at, b.updated_at,
              r.id, r.room_number, r.capacity, r.status,
              c.id, c.name, c.phone, c.email`

const expandedFrom = ` FROM bookings b
              LEFT JOIN rooms r ON r.id = b.room_id
              LEFT JOIN customers c ON c.id = b.customer_id`

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanBooking(scan func(dest ...any) error) (*models.Booking, error) {
	b := &models.Booking{}
	var dateStr string
	err := scan(
		&b.ID, &b.RoomID, &b.CustomerID, &dateStr, &b.StartTime, &b.EndTime,
		&b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
	}
	return b, nil
}

func scanExpandedBooking(scan func(dest ...any) error) (*models.Booking, error) {
	b := &models.Booking{}
	var dateStr string
	var roomID, roomNumber, roomStatus sql.NullString
	var roomCapacity sql.NullInt64
	var customerID, customerName, customerPhone, customerEmail sql.NullString

	err := scan(
		&b.ID, &b.RoomID, &b.CustomerID, &dateStr, &b.StartTime, &b.EndTime,
		&b.Status, &b.CreatedAt, &b.UpdatedAt,
		&roomID, &roomNumber, &roomCapacity, &roomStatus,
		&customerID, &customerName, &customerPhone, &customerEmail,
	)
	if err != nil {
		return nil, err
	}
	b.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
	}

	if roomID.Valid {
		b.Room = &models.Room{
			ID:         roomID.String,
			RoomNumber: roomNumber.String,
			Capacity:   int(roomCapacity.Int64),
			Status:     roomStatus.String,
		}
	}
	if customerID.Valid {
		b.Customer = &models.Customer{
			ID:    customerID.String,
			Name:  customerName.String,
			Phone: models.Phone(customerPhone.String),
			Email: models.Email(customerEmail.String),
		}
	}
	return b, nil
}

// findConflict returns the first non-cancelled booking for the room/day
// whose [start,end) interval overlaps the proposed one, or nil. Runs
// against either the DB or an open transaction so insert/update can
// re-check right before committing.
func findConflict(ctx context.Context, q rowQuerier, roomID string, date time.Time,
	start, end models.TimeOfDay, excludeID string) (*models.Booking, error) {

	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE room_id = ? AND date = ? AND status != ?
              AND start_time < ? AND end_time > ?
              AND id != ?
              ORDER BY start_time ASC LIMIT 1`

	row := q.QueryRowContext(ctx, query,
		roomID, models.DayKey(date), models.StatusCancelled,
		string(end), string(start), excludeID)

	booking, err := scanBooking(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicting booking: %w", err)
	}
	return booking, nil
}

// FindConflict is the read-only conflict probe used by the validator.
func (db *DB) FindConflict(ctx context.Context, roomID string, date time.Time,
	start, end models.TimeOfDay, excludeID string) (*models.Booking, error) {
	return findConflict(ctx, db.DB, roomID, date, start, end, excludeID)
}

// ListByRoomAndDate returns the non-cancelled bookings for a room on a
// calendar day, minus excludeID when set, ordered by start time.
func (db *DB) ListByRoomAndDate(ctx context.Context, roomID string, date time.Time, excludeID string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE room_id = ? AND date = ? AND status != ? AND id != ?
              ORDER BY start_time ASC`
	rows, err := db.QueryContext(ctx, query, roomID, models.DayKey(date), models.StatusCancelled, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings by room and date: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CreateBooking validates the time range and inserts the booking. The
// conflict search re-runs inside the transaction so a concurrent insert
// between validation and write still gets rejected with no partial write.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if err := booking.ValidateTimeRange(); err != nil {
		return err
	}
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	conflict, err := findConflict(ctx, tx, booking.RoomID, booking.Date,
		booking.StartTime, booking.EndTime, booking.ID)
	if err != nil {
		return err
	}
	if conflict != nil {
		return ErrTimeSlotConflict
	}

	query := `INSERT INTO bookings (id, room_id, customer_id, date, start_time, end_time, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err = tx.ExecContext(ctx, query,
		booking.ID, booking.RoomID, booking.CustomerID, models.DayKey(booking.Date),
		string(booking.StartTime), string(booking.EndTime), booking.Status, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now
	return tx.Commit()
}

// UpdateBooking persists an already-merged booking. Like CreateBooking it
// re-runs the time and conflict checks inside the transaction, excluding
// the booking's own id from the search.
func (db *DB) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	if err := booking.ValidateTimeRange(); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// A cancelled booking does not occupy its slot, so it cannot conflict.
	if booking.Status != models.StatusCancelled {
		conflict, err := findConflict(ctx, tx, booking.RoomID, booking.Date,
			booking.StartTime, booking.EndTime, booking.ID)
		if err != nil {
			return err
		}
		if conflict != nil {
			return ErrTimeSlotConflict
		}
	}

	query := `UPDATE bookings SET room_id = ?, customer_id = ?, date = ?, start_time = ?,
              end_time = ?, status = ?, updated_at = ? WHERE id = ?`
	now := time.Now()
	result, err := tx.ExecContext(ctx, query,
		booking.RoomID, booking.CustomerID, models.DayKey(booking.Date),
		string(booking.StartTime), string(booking.EndTime), booking.Status, now, booking.ID)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	booking.UpdatedAt = now
	return tx.Commit()
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + expandedColumns + expandedFrom + ` WHERE b.id = ?`
	booking, err := scanExpandedBooking(db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) DeleteBooking(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBookings returns bookings matching the filter, ordered by date then
// start time ascending.
func (db *DB) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	query := `SELECT ` + expandedColumns + expandedFrom + ` WHERE 1=1`
	var args []any

	if filter.Date != nil {
		query += ` AND b.date = ?`
		args = append(args, models.DayKey(*filter.Date))
	}
	if filter.RoomID != "" {
		query += ` AND b.room_id = ?`
		args = append(args, filter.RoomID)
	}
	query += ` ORDER BY b.date ASC, b.start_time ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanExpandedBooking(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
