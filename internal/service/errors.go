package service

import "errors"

var (
	// ErrInvalidRange rejects availability searches whose start date is not
	// strictly before the end date.
	ErrInvalidRange = errors.New("start date must be before end date")

	// ErrNameTooShort rejects hotel name searches below the minimum length.
	ErrNameTooShort = errors.New("hotel name query is too short")
)
