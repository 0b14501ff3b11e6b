package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"hotelier/internal/database"
	"hotelier/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func setupStore(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type roomSpec struct {
	price    float64
	capacity int
}

func seedHotel(t *testing.T, db *database.DB, name string, specs ...roomSpec) *models.Hotel {
	t.Helper()
	ctx := context.Background()

	hotel := &models.Hotel{Name: name, Address: "1 Test St"}
	require.NoError(t, db.CreateHotel(ctx, hotel))

	for i, spec := range specs {
		room := &models.Room{
			HotelID:       hotel.ID,
			RoomType:      models.RoomTypeDouble,
			RoomNumber:    i + 1,
			PricePerNight: spec.price,
			Capacity:      spec.capacity,
		}
		require.NoError(t, db.CreateRoom(ctx, room))
		hotel.Rooms = append(hotel.Rooms, *room)
	}
	return hotel
}

func day(d int) time.Time {
	return time.Date(2026, 7, d, 0, 0, 0, 0, time.UTC)
}

// fakeRefs hands out sequential references.
type fakeRefs struct {
	n int
}

func (f *fakeRefs) NewReference(context.Context) (string, error) {
	f.n++
	return fmt.Sprintf("TESTREF%d", f.n), nil
}

// fakeBus records published events.
type fakeBus struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	eventType string
	payload   interface{}
}

func (f *fakeBus) PublishJSON(eventType string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{eventType, payload})
	return nil
}

func (f *fakeBus) byType(eventType string) []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []publishedEvent
	for _, e := range f.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// fakeExports records enqueued tasks.
type fakeExports struct {
	tasks []enqueuedTask
}

type enqueuedTask struct {
	taskType  string
	bookingID int64
	details   *models.BookingDetails
}

func (f *fakeExports) EnqueueTask(_ context.Context, taskType string, bookingID int64, details *models.BookingDetails) error {
	f.tasks = append(f.tasks, enqueuedTask{taskType, bookingID, details})
	return nil
}

// fakeCache records writes and invalidations and can be preloaded.
type fakeCache struct {
	data        map[string][]models.HotelAvailability
	sets        int
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]models.HotelAvailability)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]models.HotelAvailability, bool, error) {
	hotels, ok := f.data[key]
	return hotels, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, hotels []models.HotelAvailability, _ time.Duration) error {
	f.data[key] = hotels
	f.sets++
	return nil
}

func (f *fakeCache) Invalidate(context.Context) error {
	f.data = make(map[string][]models.HotelAvailability)
	f.invalidated++
	return nil
}

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }
