package domain

import (
	"context"
	"time"

	"hotelier/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Store is what the services need from sqlite.
type Store interface {
	CreateHotel(ctx context.Context, hotel *models.Hotel) error
	CreateRoom(ctx context.Context, room *models.Room) error
	GetHotelByName(ctx context.Context, name string) (*models.Hotel, error)
	SearchHotelsByName(ctx context.Context, name string) ([]*models.Hotel, error)
	ListHotels(ctx context.Context) ([]*models.Hotel, error)
	GetHotelRooms(ctx context.Context, hotelID int64) ([]models.Room, error)
	GetRoomByNumber(ctx context.Context, hotelID int64, roomNumber int) (*models.Room, error)
	GetRoomStays(ctx context.Context, roomID int64) ([]models.RoomStay, error)
	CountHotels(ctx context.Context) (int, error)

	GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error

	CreateBookingWithStays(ctx context.Context, booking *models.Booking, stays []models.StayInsert) error
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	GetBookingByReference(ctx context.Context, reference string) (*models.BookingDetails, error)
}

// Clock abstracts time.Now so booking and cache logic can be tested against
// fixed instants.
type Clock interface {
	Now() time.Time
}

// AvailabilityCache holds short-lived availability query results keyed by
// interval and guest count.
type AvailabilityCache interface {
	Get(ctx context.Context, key string) ([]models.HotelAvailability, bool, error)
	Set(ctx context.Context, key string, hotels []models.HotelAvailability, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// ReferenceSource issues unique booking references.
type ReferenceSource interface {
	NewReference(ctx context.Context) (string, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type SheetsWriter interface {
	AppendBooking(ctx context.Context, details *models.BookingDetails) error
	ReplaceBookingsSheet(ctx context.Context, bookings []*models.BookingDetails) error
}

// ExportWorker accepts durable export tasks for completed bookings.
type ExportWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, details *models.BookingDetails) error
}

type HotelService interface {
	GetAvailableHotelRooms(ctx context.Context, start, end time.Time, minGuests int) ([]models.HotelAvailability, error)
	GetHotelByName(ctx context.Context, name string) ([]*models.Hotel, error)
	IsRoomAvailable(ctx context.Context, roomID int64, interval models.StayInterval) (bool, error)
}

type CustomerService interface {
	Resolve(ctx context.Context, input models.CustomerInput) (*models.Customer, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingResult, string, error)
	GetBookingByReference(ctx context.Context, reference string) (*models.BookingResult, error)
}
