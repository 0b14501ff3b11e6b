package database

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a missing hotel, room, customer or booking.
	ErrNotFound = errors.New("not found")
	// ErrRoomUnavailable is returned when a stay insert loses the
	// availability re-check inside the booking transaction.
	ErrRoomUnavailable = errors.New("room not available for requested dates")
)

// RoomConflictError identifies which room lost the availability re-check.
// It unwraps to ErrRoomUnavailable.
type RoomConflictError struct {
	RoomID int64
}

func (e *RoomConflictError) Error() string {
	return fmt.Sprintf("room %d not available for requested dates", e.RoomID)
}

func (e *RoomConflictError) Unwrap() error {
	return ErrRoomUnavailable
}
