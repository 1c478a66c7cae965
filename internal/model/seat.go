package model

import "time"

// SeatState enumerates the three mutually exclusive states a seat can
// be in.  Every seat of a train is always in exactly one of them, so
// for any train count(Available)+count(Held)+count(Booked) equals the
// train's seat count.
type SeatState uint8

const (
	SeatAvailable SeatState = iota + 1
	SeatHeld
	SeatBooked
)

// String returns the wire/database representation of the state.
func (s SeatState) String() string {
	switch s {
	case SeatAvailable:
		return "AVAILABLE"
	case SeatHeld:
		return "HELD"
	case SeatBooked:
		return "BOOKED"
	}
	return "UNKNOWN"
}

// SeatStatus is a closed tagged variant over the three seat states.
// The fields are unexported so that illegal combinations (an available
// seat carrying a holder, a booked seat carrying an expiry) cannot be
// constructed; use Available, HeldBy or BookedUnder.
type SeatStatus struct {
	state     SeatState
	holderID  uint64
	holdID    string
	expiresAt time.Time
	bookingID string
}

// Available returns the status of a free seat.
func Available() SeatStatus {
	return SeatStatus{state: SeatAvailable}
}

// HeldBy returns the status of a seat claimed by a hold.
func HeldBy(holderID uint64, holdID string, expiresAt time.Time) SeatStatus {
	return SeatStatus{state: SeatHeld, holderID: holderID, holdID: holdID, expiresAt: expiresAt}
}

// BookedUnder returns the status of a seat consumed by a booking.
func BookedUnder(bookingID string) SeatStatus {
	return SeatStatus{state: SeatBooked, bookingID: bookingID}
}

// State reports which of the three variants this status is.
func (s SeatStatus) State() SeatState { return s.state }

// HolderID returns the owning user for a held seat; zero otherwise.
func (s SeatStatus) HolderID() uint64 { return s.holderID }

// HoldID returns the claiming hold for a held seat; empty otherwise.
func (s SeatStatus) HoldID() string { return s.holdID }

// ExpiresAt returns the hold deadline for a held seat; zero otherwise.
func (s SeatStatus) ExpiresAt() time.Time { return s.expiresAt }

// BookingID returns the booking for a booked seat; empty otherwise.
func (s SeatStatus) BookingID() string { return s.bookingID }

// Matches reports whether this status satisfies the caller's
// expectation in a compare-and-set transition.  Identity of the claim
// is what matters: a held seat matches when the hold ID matches
// (expiry is enforced by whoever reclaims the seat, not here), a
// booked seat matches on the booking ID, and an available seat
// matches any available expectation.
func (s SeatStatus) Matches(expected SeatStatus) bool {
	if s.state != expected.state {
		return false
	}
	switch s.state {
	case SeatHeld:
		return s.holdID == expected.holdID
	case SeatBooked:
		return s.bookingID == expected.bookingID
	}
	return true
}

// Seat is a single seat of a train together with its current status.
// Seats are created once at train provisioning and never deleted.
type Seat struct {
	TrainID    uint64
	SeatNumber string
	Status     SeatStatus
}
