package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hotelier/internal/models"
)

// CreateBookingWithStays inserts the booking and all its stays in one
// transaction. Each stay's availability is re-checked against committed
// stays inside the transaction, so two concurrent requests for the same
// room and dates cannot both succeed: the loser observes the winner's
// rows and gets ErrRoomUnavailable, rolling back everything.
func (db *DB) CreateBookingWithStays(ctx context.Context, booking *models.Booking, stays []models.StayInsert) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Re-check availability for every requested stay.
	conflictQuery := `SELECT COUNT(*)
                      FROM room_stays rs
                      JOIN bookings b ON b.id = rs.booking_id
                      WHERE rs.room_id = ? AND b.cancelled = 0
                        AND date(rs.start_date) <= date(?)
                        AND date(rs.end_date) >= date(?)`
	for _, stay := range stays {
		var conflicts int
		err := tx.QueryRowContext(ctx, conflictQuery,
			stay.RoomID,
			stay.EndDate.Format(dateLayout),
			stay.StartDate.Format(dateLayout),
		).Scan(&conflicts)
		if err != nil {
			return fmt.Errorf("failed to check room availability: %w", err)
		}
		if conflicts > 0 {
			db.log.Warn().
				Int64("room_id", stay.RoomID).
				Str("start_date", stay.StartDate.Format(dateLayout)).
				Str("end_date", stay.EndDate.Format(dateLayout)).
				Msg("booking lost availability re-check")
			return &RoomConflictError{RoomID: stay.RoomID}
		}
	}

	// 2. Create the booking row.
	result, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (customer_id, reference, total_price) VALUES (?, ?, ?)`,
		booking.CustomerID, booking.Reference, booking.TotalPrice)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	bookingID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get booking id: %w", err)
	}

	// 3. Create stays and guest links.
	for _, stay := range stays {
		stayResult, err := tx.ExecContext(ctx,
			`INSERT INTO room_stays (booking_id, room_id, start_date, end_date) VALUES (?, ?, ?, ?)`,
			bookingID, stay.RoomID,
			stay.StartDate.Format(dateLayout),
			stay.EndDate.Format(dateLayout))
		if err != nil {
			return fmt.Errorf("failed to create room stay: %w", err)
		}
		stayID, err := stayResult.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get room stay id: %w", err)
		}
		for _, guestID := range stay.GuestIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO stay_guests (room_stay_id, guest_id) VALUES (?, ?)`,
				stayID, guestID); err != nil {
				return fmt.Errorf("failed to create stay guest: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	booking.ID = bookingID
	return nil
}

// ReferenceExists reports whether a booking already carries the reference.
func (db *DB) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE reference = ?`, reference).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check reference: %w", err)
	}
	return count > 0, nil
}

// GetBookingByReference loads a booking with its customer, stays and guests.
// An empty reference is a miss, never a match.
func (db *DB) GetBookingByReference(ctx context.Context, reference string) (*models.BookingDetails, error) {
	if reference == "" {
		return nil, ErrNotFound
	}

	query := `SELECT b.id, b.customer_id, b.reference, b.total_price, b.cancelled, b.created_at,
                     c.id, c.first_name, c.last_name, c.address, c.email, c.phone, c.created_at
              FROM bookings b
              JOIN customers c ON c.id = b.customer_id
              WHERE b.reference = ?`
	var details models.BookingDetails
	err := db.QueryRowContext(ctx, query, reference).Scan(
		&details.Booking.ID, &details.Booking.CustomerID, &details.Booking.Reference,
		&details.Booking.TotalPrice, &details.Booking.Cancelled, &details.Booking.CreatedAt,
		&details.Customer.ID, &details.Customer.FirstName, &details.Customer.LastName,
		&details.Customer.Address, &details.Customer.Email, &details.Customer.Phone,
		&details.Customer.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by reference: %w", err)
	}

	stays, err := db.getBookingStays(ctx, details.Booking.ID)
	if err != nil {
		return nil, err
	}
	details.Stays = stays
	return &details, nil
}

func (db *DB) getBookingStays(ctx context.Context, bookingID int64) ([]models.StayDetails, error) {
	query := `SELECT rs.id, rs.booking_id, rs.room_id, date(rs.start_date), date(rs.end_date),
                     h.name, r.room_number
              FROM room_stays rs
              JOIN rooms r ON r.id = rs.room_id
              JOIN hotels h ON h.id = r.hotel_id
              WHERE rs.booking_id = ?
              ORDER BY rs.id`
	rows, err := db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stays: %w", err)
	}
	defer rows.Close()

	var stays []models.StayDetails
	for rows.Next() {
		var sd models.StayDetails
		var startStr, endStr string
		if err := rows.Scan(&sd.Stay.ID, &sd.Stay.BookingID, &sd.Stay.RoomID,
			&startStr, &endStr, &sd.HotelName, &sd.RoomNumber); err != nil {
			return nil, fmt.Errorf("failed to scan booking stay: %w", err)
		}
		if sd.Stay.StartDate, err = time.Parse(dateLayout, startStr); err != nil {
			return nil, fmt.Errorf("failed to parse stay start date %s: %w", startStr, err)
		}
		if sd.Stay.EndDate, err = time.Parse(dateLayout, endStr); err != nil {
			return nil, fmt.Errorf("failed to parse stay end date %s: %w", endStr, err)
		}
		stays = append(stays, sd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range stays {
		guests, err := db.getStayGuests(ctx, stays[i].Stay.ID)
		if err != nil {
			return nil, err
		}
		stays[i].Guests = guests
	}
	return stays, nil
}

func (db *DB) getStayGuests(ctx context.Context, stayID int64) ([]models.Customer, error) {
	query := `SELECT c.id, c.first_name, c.last_name, c.address, c.email, c.phone, c.created_at
              FROM stay_guests sg
              JOIN customers c ON c.id = sg.guest_id
              WHERE sg.room_stay_id = ?
              ORDER BY sg.id`
	rows, err := db.QueryContext(ctx, query, stayID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stay guests: %w", err)
	}
	defer rows.Close()

	var guests []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Address, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stay guest: %w", err)
		}
		guests = append(guests, c)
	}
	return guests, rows.Err()
}
