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

func (db *DB) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	query := `INSERT INTO customers (id, name, phone, email, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		customer.ID, customer.Name, string(customer.Phone), string(customer.Email), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	customer.CreatedAt = now
	customer.UpdatedAt = now
	return nil
}

func (db *DB) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	var c models.Customer
	query := `SELECT id, name, phone, email, created_at, updated_at FROM customers WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

func (db *DB) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	query := `SELECT id, name, phone, email, created_at, updated_at FROM customers ORDER BY name ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c := &models.Customer{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (db *DB) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `UPDATE customers SET name = ?, phone = ?, email = ?, updated_at = ? WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		customer.Name, string(customer.Phone), string(customer.Email), now, customer.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	customer.UpdatedAt = now
	return nil
}

// DeleteCustomer removes the customer only; their bookings stay behind.
func (db *DB) DeleteCustomer(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
