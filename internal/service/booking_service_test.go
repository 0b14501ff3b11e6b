package service

import (
	"context"
	"testing"
	"time"

	"hotelier/internal/database"
	"hotelier/internal/domain"
	"hotelier/internal/events"
	"hotelier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	db      *database.DB
	svc     *BookingService
	bus     *fakeBus
	exports *fakeExports
	cache   *fakeCache
	refs    *fakeRefs
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	db := setupStore(t)
	logger := testLogger()

	f := &bookingFixture{
		db:      db,
		bus:     &fakeBus{},
		exports: &fakeExports{},
		cache:   newFakeCache(),
		refs:    &fakeRefs{},
	}
	hotels := NewHotelService(db, nil, 0, logger)
	customers := NewCustomerService(db, logger)
	f.svc = NewBookingService(db, hotels, customers, f.refs, f.bus, f.exports, f.cache,
		fixedClock{at: day(1)}, logger)
	return f
}

func bookingRequest(hotelName string, start, end time.Time, roomNumbers ...int) models.BookingRequest {
	req := models.BookingRequest{
		Customer: models.CustomerInput{
			FirstName: "John", LastName: "Doe", Email: "jdoe@example.com",
		},
		HotelName: hotelName,
		StartDate: start,
		EndDate:   end,
	}
	for _, n := range roomNumbers {
		req.Rooms = append(req.Rooms, models.RoomSelection{RoomNumber: n})
	}
	return req
}

func TestCreateBooking(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	seedHotel(t, f.db, "Grand Plaza", roomSpec{75, 1}, roomSpec{155, 2})

	req := bookingRequest("Grand Plaza", day(1), day(5), 1, 2)
	req.Rooms[1].Guests = []models.CustomerInput{
		{FirstName: "Holly", LastName: "Tilsley", Email: "htilsley@example.com"},
	}

	result, message, err := f.svc.CreateBooking(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, message)

	// 5 nights inclusive of both endpoints.
	assert.Equal(t, "TESTREF1", result.Reference)
	assert.Equal(t, "John Doe", result.CustomerName)
	assert.Equal(t, (75.0+155.0)*5, result.TotalPrice)

	require.Len(t, result.RoomStays, 2)
	assert.Equal(t, "Grand Plaza", result.RoomStays[0].HotelName)
	assert.Equal(t, "1", result.RoomStays[0].RoomNumber)
	assert.Equal(t, "2", result.RoomStays[1].RoomNumber)
	assert.Equal(t, []string{"Holly Tilsley"}, result.RoomStays[1].Guests)

	// Side effects: event, export task, cache flush.
	created := f.bus.byType(events.EventBookingCreated)
	require.Len(t, created, 1)
	payload := created[0].payload.(events.BookingEventPayload)
	assert.Equal(t, "TESTREF1", payload.Reference)
	assert.Equal(t, []int{1, 2}, payload.RoomNumbers)

	require.Len(t, f.exports.tasks, 1)
	assert.Equal(t, "booking_export", f.exports.tasks[0].taskType)
	assert.Equal(t, "TESTREF1", f.exports.tasks[0].details.Booking.Reference)

	assert.Equal(t, 1, f.cache.invalidated)
}

func TestCreateBooking_SingleNight(t *testing.T) {
	f := newBookingFixture(t)
	seedHotel(t, f.db, "Grand Plaza", roomSpec{75, 1})

	result, message, err := f.svc.CreateBooking(context.Background(),
		bookingRequest("Grand Plaza", day(1), day(1), 1))
	require.NoError(t, err)
	assert.Empty(t, message)
	assert.Equal(t, 75.0, result.TotalPrice, "same-day interval is one night")
}

func TestCreateBooking_HotelNotFound(t *testing.T) {
	f := newBookingFixture(t)
	seedHotel(t, f.db, "Grand Plaza", roomSpec{75, 1})

	t.Run("unknown hotel", func(t *testing.T) {
		result, message, err := f.svc.CreateBooking(context.Background(),
			bookingRequest("Nowhere Inn", day(1), day(5), 1))
		require.NoError(t, err)
		assert.Equal(t, "Hotel not found: Nowhere Inn", message)
		assert.Empty(t, result.Reference)
		assert.Equal(t, "John Doe", result.CustomerName)
	})

	t.Run("rejection still registers the booker", func(t *testing.T) {
		got, err := f.db.GetCustomerByEmail(context.Background(), "jdoe@example.com")
		require.NoError(t, err)
		assert.Equal(t, "John", got.FirstName)
	})

	t.Run("lookup is case sensitive and quotes the submitted name", func(t *testing.T) {
		_, message, err := f.svc.CreateBooking(context.Background(),
			bookingRequest("grand plaza", day(1), day(5), 1))
		require.NoError(t, err)
		assert.Equal(t, "Hotel not found: grand plaza", message)
	})

	failed := f.bus.byType(events.EventBookingFailed)
	assert.Len(t, failed, 2)
}

func TestCreateBooking_RoomNotFound(t *testing.T) {
	f := newBookingFixture(t)
	seedHotel(t, f.db, "Grand Plaza", roomSpec{75, 1})

	result, message, err := f.svc.CreateBooking(context.Background(),
		bookingRequest("Grand Plaza", day(1), day(5), 99))
	require.NoError(t, err)
	assert.Equal(t, "Room not found: Hotel 'Grand Plaza', Room Number '99'", message)
	assert.Empty(t, result.Reference)
}

func TestCreateBooking_RoomNotAvailable(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	seedHotel(t, f.db, "Grand Plaza", roomSpec{75, 1})

	_, message, err := f.svc.CreateBooking(ctx, bookingRequest("Grand Plaza", day(3), day(7), 1))
	require.NoError(t, err)
	require.Empty(t, message)

	result, message, err := f.svc.CreateBooking(ctx, bookingRequest("Grand Plaza", day(5), day(9), 1))
	require.NoError(t, err)
	assert.Equal(t, "Room not available: Hotel 'Grand Plaza', Room Number '1'", message)
	assert.Empty(t, result.Reference)

	// The rejected attempt leaves no booking behind.
	_, err = f.db.GetBookingByReference(ctx, "TESTREF2")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCreateBooking_ZeroRooms(t *testing.T) {
	f := newBookingFixture(t)
	seedHotel(t, f.db, "Grand Plaza", roomSpec{75, 1})

	result, message, err := f.svc.CreateBooking(context.Background(),
		bookingRequest("Grand Plaza", day(1), day(5)))
	require.NoError(t, err)
	assert.Empty(t, message)
	assert.Equal(t, "TESTREF1", result.Reference)
	assert.Zero(t, result.TotalPrice)
	assert.Empty(t, result.RoomStays)
}

func TestCreateBooking_AvailabilityErrorIsNotARejection(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	hotel := seedHotel(t, f.db, "Grand Plaza", roomSpec{75, 1})

	logger := testLogger()
	store := &faultyStayStore{Store: f.db, failRoomID: hotel.Rooms[0].ID}
	svc := NewBookingService(f.db, NewHotelService(store, nil, 0, logger),
		NewCustomerService(f.db, logger), f.refs, f.bus, f.exports, f.cache,
		fixedClock{at: day(1)}, logger)

	// A broken availability read is an infrastructure failure, not a
	// "Room not available" rejection.
	result, message, err := svc.CreateBooking(ctx, bookingRequest("Grand Plaza", day(1), day(5), 1))
	require.Error(t, err)
	assert.Empty(t, message)
	assert.Nil(t, result)
	assert.Empty(t, f.bus.byType(events.EventBookingFailed))
}

// alwaysAvailable reports every room as free, bypassing the pre-check so the
// transactional re-check has to catch the conflict.
type alwaysAvailable struct {
	domain.HotelService
}

func (alwaysAvailable) IsRoomAvailable(context.Context, int64, models.StayInterval) (bool, error) {
	return true, nil
}

func TestCreateBooking_TransactionalConflict(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	seedHotel(t, f.db, "Grand Plaza", roomSpec{75, 1})

	logger := testLogger()
	racy := NewBookingService(f.db, alwaysAvailable{}, NewCustomerService(f.db, logger),
		f.refs, f.bus, f.exports, f.cache, fixedClock{at: day(1)}, logger)

	_, message, err := racy.CreateBooking(ctx, bookingRequest("Grand Plaza", day(3), day(7), 1))
	require.NoError(t, err)
	require.Empty(t, message)

	result, message, err := racy.CreateBooking(ctx, bookingRequest("Grand Plaza", day(5), day(9), 1))
	require.NoError(t, err)
	assert.Equal(t, "Room not available: Hotel 'Grand Plaza', Room Number '1'", message)
	assert.Empty(t, result.Reference)
}

func TestCreateBooking_RepeatBookerKeepsStoredIdentity(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	seedHotel(t, f.db, "Grand Plaza", roomSpec{75, 1}, roomSpec{155, 2})

	first := bookingRequest("Grand Plaza", day(1), day(5), 1)
	_, message, err := f.svc.CreateBooking(ctx, first)
	require.NoError(t, err)
	require.Empty(t, message)

	// Same email, different spelling. The creation result echoes the
	// submitted name; the stored booking keeps the original identity.
	second := bookingRequest("Grand Plaza", day(1), day(5), 2)
	second.Customer.FirstName = "Jon"
	second.Customer.LastName = "Dough"

	result, message, err := f.svc.CreateBooking(ctx, second)
	require.NoError(t, err)
	require.Empty(t, message)
	assert.Equal(t, "Jon Dough", result.CustomerName)

	stored, err := f.svc.GetBookingByReference(ctx, result.Reference)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", stored.CustomerName)
}

func TestBookingService_GetBookingByReference(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	seedHotel(t, f.db, "Grand Plaza", roomSpec{75, 1})

	created, message, err := f.svc.CreateBooking(ctx, bookingRequest("Grand Plaza", day(1), day(5), 1))
	require.NoError(t, err)
	require.Empty(t, message)

	t.Run("found", func(t *testing.T) {
		got, err := f.svc.GetBookingByReference(ctx, created.Reference)
		require.NoError(t, err)
		assert.Equal(t, created.Reference, got.Reference)
		assert.Equal(t, created.TotalPrice, got.TotalPrice)
		require.Len(t, got.RoomStays, 1)
		assert.Equal(t, "Grand Plaza", got.RoomStays[0].HotelName)
		assert.Equal(t, "1", got.RoomStays[0].RoomNumber)
		assert.True(t, got.RoomStays[0].StartDate.Equal(day(1)))
		assert.True(t, got.RoomStays[0].EndDate.Equal(day(5)))
	})

	t.Run("unknown reference", func(t *testing.T) {
		_, err := f.svc.GetBookingByReference(ctx, "NOPE1234")
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("empty reference", func(t *testing.T) {
		_, err := f.svc.GetBookingByReference(ctx, "")
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}
