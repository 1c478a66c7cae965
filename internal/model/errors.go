// Package model defines the domain entities of the reservation core
// and the sentinel errors its operations surface.  Every rejected
// operation leaves seat state unchanged; there are no partial effects.
package model

import "errors"

var (
	// ErrInvalidPassenger is returned for malformed passenger input.
	// Fully recoverable by correcting the input; no state change.
	ErrInvalidPassenger = errors.New("invalid passenger details")

	// ErrSeatUnavailable is returned when a requested seat is already
	// held or booked by someone else.  Recoverable by re-reading the
	// seat map and reselecting.
	ErrSeatUnavailable = errors.New("seat unavailable")

	// ErrNoSeats is returned when a hold request names no seats.
	ErrNoSeats = errors.New("no seats requested")

	// ErrMaxSeatsExceeded is returned when a hold requests more than
	// MaxSeatsPerHold seats.  Rejected before any store access.
	ErrMaxSeatsExceeded = errors.New("too many seats requested")

	// ErrHoldExpired is returned when a hold lapsed (naturally or via
	// the sweeper) before the operation completed.  Recoverable only
	// by restarting seat selection.
	ErrHoldExpired = errors.New("hold expired")

	// ErrNotOwner is returned when a commit is attempted by an
	// identity other than the hold's creator.
	ErrNotOwner = errors.New("hold owned by another user")

	// ErrPaymentFailed is returned when the payment collaborator
	// declines the charge.  Seats stay held, so the same caller may
	// retry before the TTL lapses.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrTrainNotFound is returned for lookups of unknown trains.
	ErrTrainNotFound = errors.New("train not found")

	// ErrHoldNotFound is returned for lookups of unknown holds.
	ErrHoldNotFound = errors.New("hold not found")

	// ErrUnknownSeat is returned when a seat number does not belong to
	// the named train.
	ErrUnknownSeat = errors.New("unknown seat")
)
