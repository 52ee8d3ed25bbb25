package database

import (
	"context"
	"io"
	"testing"
	"time"

	"karabook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.New(io.Discard)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func mustCreateRoom(t *testing.T, db *DB, number string) *models.Room {
	t.Helper()
	room := &models.Room{RoomNumber: number, Capacity: 8, Status: models.RoomAvailable}
	require.NoError(t, db.CreateRoom(context.Background(), room))
	return room
}

func mustCreateCustomer(t *testing.T, db *DB, email string) *models.Customer {
	t.Helper()
	c := &models.Customer{Name: "Test Customer", Phone: "+79161234567", Email: models.Email(email)}
	require.NoError(t, db.CreateCustomer(context.Background(), c))
	return c
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
