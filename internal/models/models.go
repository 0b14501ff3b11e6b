package models

import "time"

type Hotel struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Rooms   []Room `json:"rooms,omitempty"`
}

type Room struct {
	ID            int64   `json:"id"`
	HotelID       int64   `json:"hotel_id"`
	RoomType      string  `json:"room_type"` // single, double, suite
	RoomNumber    int     `json:"room_number"`
	PricePerNight float64 `json:"price_per_night"`
	Capacity      int     `json:"capacity"`
}

type Customer struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Address   string    `json:"address"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

type Booking struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	Reference  string    `json:"reference"`
	TotalPrice float64   `json:"total_price"`
	Cancelled  bool      `json:"cancelled"`
	CreatedAt  time.Time `json:"created_at"`
}

// RoomStay is one room occupied over an interval under a booking. EndDate is
// the last occupied night; checkout happens the following morning.
type RoomStay struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"booking_id"`
	RoomID    int64     `json:"room_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type StayGuest struct {
	ID         int64 `json:"id"`
	RoomStayID int64 `json:"room_stay_id"`
	GuestID    int64 `json:"guest_id"`
}

// Payment rows are written by the payments pipeline; nothing in this service
// reads or mutates them.
type Payment struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"booking_id"`
	PaymentDate time.Time `json:"payment_date"`
	Amount      float64   `json:"amount"`
	Method      string    `json:"method"`
}

// HotelAvailability pairs a hotel with the subset of its rooms free for the
// requested interval.
type HotelAvailability struct {
	Hotel Hotel  `json:"hotel"`
	Rooms []Room `json:"rooms"`
}
