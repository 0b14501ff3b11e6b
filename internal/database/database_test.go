package database

import (
	"context"
	"path/filepath"
	"testing"

	"hotelier/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// seedHotel inserts a hotel with one room per given capacity and returns it
// with rooms attached.
func seedHotel(t *testing.T, db *DB, name string, capacities ...int) *models.Hotel {
	t.Helper()
	ctx := context.Background()

	hotel := &models.Hotel{Name: name, Address: "1 Test St", Phone: "+44 1234"}
	require.NoError(t, db.CreateHotel(ctx, hotel))

	for i, capacity := range capacities {
		room := &models.Room{
			HotelID:       hotel.ID,
			RoomType:      models.RoomTypeDouble,
			RoomNumber:    i + 1,
			PricePerNight: 100,
			Capacity:      capacity,
		}
		require.NoError(t, db.CreateRoom(ctx, room))
		hotel.Rooms = append(hotel.Rooms, *room)
	}
	return hotel
}

func seedCustomer(t *testing.T, db *DB, email string) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		FirstName: "John",
		LastName:  "Doe",
		Email:     email,
	}
	require.NoError(t, db.CreateCustomer(context.Background(), customer))
	return customer
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)

	err := db.PingContext(context.Background())
	assert.NoError(t, err)
}
