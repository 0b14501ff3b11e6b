package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotelier/internal/domain"
	"hotelier/internal/metrics"
	"hotelier/internal/models"

	"github.com/rs/zerolog"
)

// HotelService answers availability and catalog queries. Availability
// results are cached for a short TTL; every successful booking invalidates
// the cache, so stale positives survive at most one TTL window and the
// booking transaction re-checks anyway.
type HotelService struct {
	store    domain.Store
	cache    domain.AvailabilityCache
	cacheTTL time.Duration
	logger   *zerolog.Logger
}

func NewHotelService(store domain.Store, cache domain.AvailabilityCache, cacheTTL time.Duration, logger *zerolog.Logger) *HotelService {
	return &HotelService{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// GetAvailableHotelRooms returns each hotel whose free rooms can sleep at
// least minGuests over the interval, together with those free rooms. A room
// whose stay history cannot be read is treated as booked rather than
// failing the whole search.
func (s *HotelService) GetAvailableHotelRooms(ctx context.Context, start, end time.Time, minGuests int) ([]models.HotelAvailability, error) {
	startDay, endDay := models.DateOnly(start), models.DateOnly(end)
	if !startDay.Before(endDay) {
		return nil, ErrInvalidRange
	}
	interval := models.NewStayInterval(startDay, endDay)

	cacheKey := availabilityKey(startDay, endDay, minGuests)
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, cacheKey); err != nil {
			s.logger.Warn().Err(err).Msg("availability cache read failed")
			metrics.IncCacheOutcome("error")
		} else if ok {
			metrics.IncCacheOutcome("hit")
			return cached, nil
		} else {
			metrics.IncCacheOutcome("miss")
		}
	}

	hotels, err := s.store.ListHotels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}

	var result []models.HotelAvailability
	for _, hotel := range hotels {
		var free []models.Room
		capacity := 0
		for _, room := range hotel.Rooms {
			available, err := s.IsRoomAvailable(ctx, room.ID, interval)
			if err != nil {
				s.logger.Warn().Err(err).
					Str("hotel", hotel.Name).
					Int("room_number", room.RoomNumber).
					Msg("availability check failed, treating room as booked")
				continue
			}
			if available {
				free = append(free, room)
				capacity += room.Capacity
			}
		}
		// A hotel with no free rooms is dropped outright, never returned
		// with an empty room list, even when minGuests asks for nothing.
		if len(free) > 0 && capacity >= minGuests {
			h := *hotel
			h.Rooms = nil
			result = append(result, models.HotelAvailability{Hotel: h, Rooms: free})
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Msg("availability cache write failed")
		}
	}
	return result, nil
}

// IsRoomAvailable reports whether no recorded stay overlaps the interval.
func (s *HotelService) IsRoomAvailable(ctx context.Context, roomID int64, interval models.StayInterval) (bool, error) {
	stays, err := s.store.GetRoomStays(ctx, roomID)
	if err != nil {
		return false, err
	}
	for _, stay := range stays {
		if stay.Interval().Overlaps(interval) {
			return false, nil
		}
	}
	return true, nil
}

// GetHotelByName searches hotels case-insensitively. Queries shorter than
// the minimum length are rejected to keep the endpoint from enumerating
// the catalog.
func (s *HotelService) GetHotelByName(ctx context.Context, name string) ([]*models.Hotel, error) {
	if len(strings.TrimSpace(name)) < models.MinHotelNameSearch {
		return nil, ErrNameTooShort
	}
	return s.store.SearchHotelsByName(ctx, strings.TrimSpace(name))
}

func availabilityKey(start, end time.Time, minGuests int) string {
	return fmt.Sprintf("availability:%s:%s:%d",
		start.Format("2006-01-02"), end.Format("2006-01-02"), minGuests)
}
