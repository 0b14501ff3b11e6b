package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotelier/internal/models"
)

const dateLayout = "2006-01-02"

func (db *DB) CreateHotel(ctx context.Context, hotel *models.Hotel) error {
	query := `INSERT INTO hotels (name, address, phone) VALUES (?, ?, ?)`
	result, err := db.ExecContext(ctx, query, hotel.Name, hotel.Address, hotel.Phone)
	if err != nil {
		return fmt.Errorf("failed to create hotel: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	hotel.ID = id
	return nil
}

func (db *DB) CreateRoom(ctx context.Context, room *models.Room) error {
	query := `INSERT INTO rooms (hotel_id, room_type, room_number, price_per_night, capacity)
              VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		room.HotelID, room.RoomType, room.RoomNumber, room.PricePerNight, room.Capacity)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	room.ID = id
	return nil
}

// GetHotelByName resolves the exact stored name, the lookup key the booking
// flow uses.
func (db *DB) GetHotelByName(ctx context.Context, name string) (*models.Hotel, error) {
	query := `SELECT id, name, address, phone FROM hotels WHERE name = ? LIMIT 1`
	var hotel models.Hotel
	err := db.QueryRowContext(ctx, query, name).Scan(&hotel.ID, &hotel.Name, &hotel.Address, &hotel.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hotel by name: %w", err)
	}
	return &hotel, nil
}

// SearchHotelsByName matches hotel names case-insensitively and attaches
// each hotel's rooms.
func (db *DB) SearchHotelsByName(ctx context.Context, name string) ([]*models.Hotel, error) {
	query := `SELECT id, name, address, phone FROM hotels WHERE LOWER(name) = ?`
	rows, err := db.QueryContext(ctx, query, strings.ToLower(name))
	if err != nil {
		return nil, fmt.Errorf("failed to search hotels: %w", err)
	}
	defer rows.Close()

	var hotels []*models.Hotel
	for rows.Next() {
		h := &models.Hotel{}
		if err := rows.Scan(&h.ID, &h.Name, &h.Address, &h.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}
		hotels = append(hotels, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, h := range hotels {
		rooms, err := db.GetHotelRooms(ctx, h.ID)
		if err != nil {
			return nil, err
		}
		h.Rooms = rooms
	}
	return hotels, nil
}

// ListHotels returns every hotel with its rooms attached, the catalog the
// availability aggregator walks.
func (db *DB) ListHotels(ctx context.Context) ([]*models.Hotel, error) {
	query := `SELECT id, name, address, phone FROM hotels ORDER BY id`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	defer rows.Close()

	var hotels []*models.Hotel
	for rows.Next() {
		h := &models.Hotel{}
		if err := rows.Scan(&h.ID, &h.Name, &h.Address, &h.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}
		hotels = append(hotels, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, h := range hotels {
		rooms, err := db.GetHotelRooms(ctx, h.ID)
		if err != nil {
			return nil, err
		}
		h.Rooms = rooms
	}
	return hotels, nil
}

func (db *DB) GetHotelRooms(ctx context.Context, hotelID int64) ([]models.Room, error) {
	query := `SELECT id, hotel_id, room_type, room_number, price_per_night, capacity
              FROM rooms WHERE hotel_id = ? ORDER BY room_number`
	rows, err := db.QueryContext(ctx, query, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get hotel rooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var r models.Room
		if err := rows.Scan(&r.ID, &r.HotelID, &r.RoomType, &r.RoomNumber, &r.PricePerNight, &r.Capacity); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// GetRoomByNumber resolves a room by its composite key (hotel, room number).
func (db *DB) GetRoomByNumber(ctx context.Context, hotelID int64, roomNumber int) (*models.Room, error) {
	query := `SELECT id, hotel_id, room_type, room_number, price_per_night, capacity
              FROM rooms WHERE hotel_id = ? AND room_number = ?`
	var r models.Room
	err := db.QueryRowContext(ctx, query, hotelID, roomNumber).Scan(
		&r.ID, &r.HotelID, &r.RoomType, &r.RoomNumber, &r.PricePerNight, &r.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room by number: %w", err)
	}
	return &r, nil
}

// GetRoomStays returns all stays recorded against a room, cancelled bookings
// excluded.
func (db *DB) GetRoomStays(ctx context.Context, roomID int64) ([]models.RoomStay, error) {
	query := `SELECT rs.id, rs.booking_id, rs.room_id, date(rs.start_date), date(rs.end_date)
              FROM room_stays rs
              JOIN bookings b ON b.id = rs.booking_id
              WHERE rs.room_id = ? AND b.cancelled = 0
              ORDER BY rs.start_date`
	rows, err := db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room stays: %w", err)
	}
	defer rows.Close()

	var stays []models.RoomStay
	for rows.Next() {
		var s models.RoomStay
		var startStr, endStr string
		if err := rows.Scan(&s.ID, &s.BookingID, &s.RoomID, &startStr, &endStr); err != nil {
			return nil, fmt.Errorf("failed to scan room stay: %w", err)
		}
		if s.StartDate, err = time.Parse(dateLayout, startStr); err != nil {
			return nil, fmt.Errorf("failed to parse stay start date %s: %w", startStr, err)
		}
		if s.EndDate, err = time.Parse(dateLayout, endStr); err != nil {
			return nil, fmt.Errorf("failed to parse stay end date %s: %w", endStr, err)
		}
		stays = append(stays, s)
	}
	return stays, rows.Err()
}

func (db *DB) CountHotels(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hotels`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count hotels: %w", err)
	}
	return count, nil
}
