package models

import "time"

// StayInsert is one room occupation to record under a new booking.
type StayInsert struct {
	RoomID    int64
	StartDate time.Time
	EndDate   time.Time
	GuestIDs  []int64
}

// StayDetails is a stored stay joined with its room, hotel and guest rows.
type StayDetails struct {
	Stay       RoomStay
	HotelName  string
	RoomNumber int
	Guests     []Customer
}

// BookingDetails is a booking joined with its customer and stays.
type BookingDetails struct {
	Booking  Booking
	Customer Customer
	Stays    []StayDetails
}
