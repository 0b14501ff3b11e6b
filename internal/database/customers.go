package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hotelier/internal/models"
)

// GetCustomerByEmail returns the oldest customer row carrying the email.
// Email is deduplicated on write but not unique in the schema, so the
// earliest row wins deterministically.
func (db *DB) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	query := `SELECT id, first_name, last_name, address, email, phone, created_at
              FROM customers WHERE email = ? ORDER BY id LIMIT 1`
	var c models.Customer
	err := db.QueryRowContext(ctx, query, email).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Address, &c.Email, &c.Phone, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer by email: %w", err)
	}
	return &c, nil
}

func (db *DB) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	query := `SELECT id, first_name, last_name, address, email, phone, created_at
              FROM customers WHERE id = ?`
	var c models.Customer
	err := db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Address, &c.Email, &c.Phone, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer by id: %w", err)
	}
	return &c, nil
}

func (db *DB) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `INSERT INTO customers (first_name, last_name, address, email, phone)
              VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		customer.FirstName, customer.LastName, customer.Address, customer.Email, customer.Phone)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	customer.ID = id
	return nil
}
