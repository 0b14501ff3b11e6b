package models

import "time"

// CustomerInput carries the identity fields submitted for a booker or guest.
type CustomerInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (c CustomerInput) DisplayName() string {
	return c.FirstName + " " + c.LastName
}

// RoomSelection is one requested room line within a booking request.
type RoomSelection struct {
	RoomNumber int             `json:"room_number"`
	Guests     []CustomerInput `json:"guests"`
}

// BookingRequest is the validated input to booking creation. StartDate and
// EndDate follow the inclusive-night convention shared with RoomStay.
type BookingRequest struct {
	Customer  CustomerInput   `json:"customer"`
	HotelName string          `json:"hotel_name"`
	Rooms     []RoomSelection `json:"rooms"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
}

// RoomStayResult describes one created or retrieved stay.
type RoomStayResult struct {
	HotelName  string    `json:"hotel_name"`
	RoomNumber string    `json:"room_number"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Guests     []string  `json:"guests"`
}

// BookingResult is the external representation of a booking. An empty
// Reference signals a business failure; the accompanying message says why.
type BookingResult struct {
	Reference    string           `json:"reference"`
	CustomerName string           `json:"customer_name"`
	TotalPrice   float64          `json:"total_price"`
	RoomStays    []RoomStayResult `json:"room_stays"`
}
