package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"hotelier/internal/database"
	"hotelier/internal/domain"
	"hotelier/internal/events"
	"hotelier/internal/metrics"
	"hotelier/internal/models"

	"github.com/rs/zerolog"
)

// BookingService orchestrates booking creation: hotel and room resolution,
// availability checks, customer dedup, reference generation and the final
// transactional insert. Business rejections come back as a message with a
// nil error; callers show the message and move on.
type BookingService struct {
	store        domain.Store
	hotels       domain.HotelService
	customers    domain.CustomerService
	refs         domain.ReferenceSource
	eventBus     domain.EventPublisher
	exportWorker domain.ExportWorker
	cache        domain.AvailabilityCache
	clock        domain.Clock
	logger       *zerolog.Logger
}

func NewBookingService(
	store domain.Store,
	hotels domain.HotelService,
	customers domain.CustomerService,
	refs domain.ReferenceSource,
	eventBus domain.EventPublisher,
	exportWorker domain.ExportWorker,
	cache domain.AvailabilityCache,
	clock domain.Clock,
	logger *zerolog.Logger,
) *BookingService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &BookingService{
		store:        store,
		hotels:       hotels,
		customers:    customers,
		refs:         refs,
		eventBus:     eventBus,
		exportWorker: exportWorker,
		cache:        cache,
		clock:        clock,
		logger:       logger,
	}
}

type pendingStay struct {
	room      models.Room
	selection models.RoomSelection
}

// CreateBooking runs the full booking flow. The second return value is the
// business failure message; when it is non-empty the booking was rejected
// and the result carries no reference. Failure messages quote the hotel
// name as the caller submitted it, not the stored row.
func (s *BookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingResult, string, error) {
	interval := models.NewStayInterval(req.StartDate, req.EndDate)

	// The booker's identity is resolved before any business check; a rejected
	// request still registers the customer, matching how repeat bookers are
	// deduplicated.
	customer, err := s.customers.Resolve(ctx, req.Customer)
	if err != nil {
		return nil, "", err
	}

	hotel, err := s.store.GetHotelByName(ctx, req.HotelName)
	if errors.Is(err, database.ErrNotFound) {
		return s.reject(req, fmt.Sprintf("Hotel not found: %s", req.HotelName), "hotel_not_found")
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up hotel: %w", err)
	}

	var pending []pendingStay
	for _, sel := range req.Rooms {
		room, err := s.store.GetRoomByNumber(ctx, hotel.ID, sel.RoomNumber)
		if errors.Is(err, database.ErrNotFound) {
			return s.reject(req,
				fmt.Sprintf("Room not found: Hotel '%s', Room Number '%d'", req.HotelName, sel.RoomNumber),
				"room_not_found")
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to look up room: %w", err)
		}

		available, err := s.hotels.IsRoomAvailable(ctx, room.ID, interval)
		if err != nil {
			return nil, "", fmt.Errorf("failed to check room availability: %w", err)
		}
		if !available {
			return s.reject(req,
				fmt.Sprintf("Room not available: Hotel '%s', Room Number '%d'", req.HotelName, sel.RoomNumber),
				"room_not_available")
		}
		pending = append(pending, pendingStay{room: *room, selection: sel})
	}

	nights := interval.Nights()
	var total float64
	var stays []models.StayInsert
	for _, p := range pending {
		total += p.room.PricePerNight * float64(nights)

		guestIDs := make([]int64, 0, len(p.selection.Guests))
		for _, guestInput := range p.selection.Guests {
			guest, err := s.customers.Resolve(ctx, guestInput)
			if err != nil {
				return nil, "", err
			}
			guestIDs = append(guestIDs, guest.ID)
		}
		stays = append(stays, models.StayInsert{
			RoomID:    p.room.ID,
			StartDate: interval.Start,
			EndDate:   interval.End,
			GuestIDs:  guestIDs,
		})
	}

	ref, err := s.refs.NewReference(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate booking reference: %w", err)
	}

	booking := &models.Booking{
		CustomerID: customer.ID,
		Reference:  ref,
		TotalPrice: total,
	}
	err = s.store.CreateBookingWithStays(ctx, booking, stays)
	var conflict *database.RoomConflictError
	if errors.As(err, &conflict) {
		metrics.IncBookingConflict()
		number := conflict.RoomID
		for _, p := range pending {
			if p.room.ID == conflict.RoomID {
				number = int64(p.room.RoomNumber)
				break
			}
		}
		return s.reject(req,
			fmt.Sprintf("Room not available: Hotel '%s', Room Number '%d'", req.HotelName, number),
			"room_not_available")
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to create booking: %w", err)
	}

	metrics.IncBookingCreated()
	s.afterCreate(ctx, booking, hotel, req, pending)

	result := &models.BookingResult{
		Reference:    ref,
		CustomerName: req.Customer.DisplayName(),
		TotalPrice:   total,
	}
	for _, p := range pending {
		guests := make([]string, 0, len(p.selection.Guests))
		for _, g := range p.selection.Guests {
			guests = append(guests, g.DisplayName())
		}
		result.RoomStays = append(result.RoomStays, models.RoomStayResult{
			HotelName:  hotel.Name,
			RoomNumber: strconv.Itoa(p.room.RoomNumber),
			StartDate:  interval.Start,
			EndDate:    interval.End,
			Guests:     guests,
		})
	}
	return result, "", nil
}

// afterCreate fans out side effects that must not fail the booking: the
// domain event, the export queue task and the availability cache flush.
func (s *BookingService) afterCreate(ctx context.Context, booking *models.Booking, hotel *models.Hotel, req models.BookingRequest, pending []pendingStay) {
	roomNumbers := make([]int, 0, len(pending))
	for _, p := range pending {
		roomNumbers = append(roomNumbers, p.room.RoomNumber)
	}
	payload := events.BookingEventPayload{
		BookingID:    booking.ID,
		Reference:    booking.Reference,
		CustomerName: req.Customer.DisplayName(),
		HotelName:    hotel.Name,
		RoomNumbers:  roomNumbers,
		StartDate:    models.DateOnly(req.StartDate),
		EndDate:      models.DateOnly(req.EndDate),
		TotalPrice:   booking.TotalPrice,
	}
	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventBookingCreated, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish booking event")
		}
	}

	if s.exportWorker != nil {
		details, err := s.store.GetBookingByReference(ctx, booking.Reference)
		if err != nil {
			s.logger.Warn().Err(err).Str("reference", booking.Reference).Msg("failed to load booking for export")
		} else if err := s.exportWorker.EnqueueTask(ctx, models.TaskBookingExport, booking.ID, details); err != nil {
			s.logger.Warn().Err(err).Msg("failed to enqueue export task")
		}
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate availability cache")
		}
	}
}

// GetBookingByReference loads a stored booking for display. Unlike creation
// results, the customer and guest names come from the stored rows, so a
// repeat booker sees the identity recorded on first contact.
func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*models.BookingResult, error) {
	details, err := s.store.GetBookingByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	result := &models.BookingResult{
		Reference:    details.Booking.Reference,
		CustomerName: details.Customer.FirstName + " " + details.Customer.LastName,
		TotalPrice:   details.Booking.TotalPrice,
	}
	for _, stay := range details.Stays {
		guests := make([]string, 0, len(stay.Guests))
		for _, g := range stay.Guests {
			guests = append(guests, g.FirstName+" "+g.LastName)
		}
		result.RoomStays = append(result.RoomStays, models.RoomStayResult{
			HotelName:  stay.HotelName,
			RoomNumber: strconv.Itoa(stay.RoomNumber),
			StartDate:  stay.Stay.StartDate,
			EndDate:    stay.Stay.EndDate,
			Guests:     guests,
		})
	}
	return result, nil
}

func (s *BookingService) reject(req models.BookingRequest, message, reason string) (*models.BookingResult, string, error) {
	metrics.IncBookingFailure(reason)
	s.logger.Info().
		Str("hotel", req.HotelName).
		Str("reason", reason).
		Time("at", s.clock.Now()).
		Msg("booking rejected")
	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventBookingFailed, events.BookingEventPayload{
			CustomerName: req.Customer.DisplayName(),
			HotelName:    req.HotelName,
			StartDate:    models.DateOnly(req.StartDate),
			EndDate:      models.DateOnly(req.EndDate),
			FailReason:   message,
		})
	}
	return &models.BookingResult{CustomerName: req.Customer.DisplayName()}, message, nil
}
