package domain

import (
	"errors"
	"fmt"
)

// Lifecycle error taxonomy. Engine operations wrap these with an
// operation-scoped prefix ("Booking failed: ...") via %w, so callers can
// still match the cause with errors.Is / errors.As.
var (
	ErrUserNotFound     = errors.New("User not found.")
	ErrBookingNotFound  = errors.New("Booking not found.")
	ErrDeparturePassed  = errors.New("Departure time has already passed.")
	ErrAlreadyCancelled = errors.New("Booking is already cancelled.")

	ErrNoSegments           = errors.New("at least one flight segment is required")
	ErrNoPassengers         = errors.New("at least one passenger is required")
	ErrInvalidTripType      = errors.New("unknown trip type")
	ErrInvalidCabinClass    = errors.New("unknown cabin class")
	ErrInvalidPassengerType = errors.New("unknown passenger type")
)

// NoSeatsError reports that no seat of the requested cabin class was
// available on the target leg.
type NoSeatsError struct {
	Class CabinClass
}

func (e NoSeatsError) Error() string {
	return fmt.Sprintf("No available seats in %s.", e.Class)
}
