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

func (db *DB) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	query := `INSERT INTO rooms (id, room_number, capacity, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		room.ID, room.RoomNumber, room.Capacity, room.Status, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrRoomNumberExists
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	room.CreatedAt = now
	room.UpdatedAt = now
	return nil
}

func (db *DB) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	query := `SELECT id, room_number, capacity, status, created_at, updated_at FROM rooms WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&room.ID, &room.RoomNumber, &room.Capacity, &room.Status, &room.CreatedAt, &room.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

func (db *DB) ListRooms(ctx context.Context) ([]*models.Room, error) {
	query := `SELECT id, room_number, capacity, status, created_at, updated_at FROM rooms ORDER BY room_number ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		r := &models.Room{}
		if err := rows.Scan(&r.ID, &r.RoomNumber, &r.Capacity, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func (db *DB) UpdateRoom(ctx context.Context, room *models.Room) error {
	query := `UPDATE rooms SET room_number = ?, capacity = ?, status = ?, updated_at = ? WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		room.RoomNumber, room.Capacity, room.Status, now, room.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrRoomNumberExists
		}
		return fmt.Errorf("failed to update room: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	room.UpdatedAt = now
	return nil
}

// DeleteRoom removes the room only. Bookings referencing it are left in
// place and render without a room snapshot.
func (db *DB) DeleteRoom(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedRooms inserts bootstrap rooms, skipping numbers that already exist.
func (db *DB) SeedRooms(ctx context.Context, rooms []models.Room) error {
	query := `INSERT INTO rooms (id, room_number, capacity, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)
              ON CONFLICT(room_number) DO NOTHING`
	now := time.Now()
	for i := range rooms {
		room := rooms[i]
		if room.ID == "" {
			room.ID = uuid.NewString()
		}
		if room.Status == "" {
			room.Status = models.RoomAvailable
		}
		if _, err := db.ExecContext(ctx, query,
			room.ID, room.RoomNumber, room.Capacity, room.Status, now, now); err != nil {
			return fmt.Errorf("failed to seed room %s: %w", room.RoomNumber, err)
		}
	}
	return nil
}
