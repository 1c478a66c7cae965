package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Gender is the closed set of passenger gender values accepted at
// checkout.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is one of the accepted values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Passenger carries the traveller details captured at checkout and
// snapshotted into the booking.
type Passenger struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`
}

// Validate checks the passenger fields against the checkout rules:
// name 2–100 characters, age 1–120, gender in the fixed enumeration.
// It returns ErrInvalidPassenger on any violation.
func (p Passenger) Validate() error {
	name := strings.TrimSpace(p.Name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return ErrInvalidPassenger
	}
	if p.Age < 1 || p.Age > 120 {
		return ErrInvalidPassenger
	}
	if !p.Gender.Valid() {
		return ErrInvalidPassenger
	}
	return nil
}

// BookingStatus is the payment/booking status recorded on a booking.
// Bookings are only ever created confirmed; cancellation is out of
// scope for this core.
type BookingStatus string

const BookingConfirmed BookingStatus = "CONFIRMED"

// Booking is the immutable record produced by a successful commit: a
// snapshot of the passenger, the exact seats, the total amount and the
// payment reference.  It is never mutated after creation, and no two
// bookings for the same train ever share a seat number.
type Booking struct {
	ID               string
	TrainID          uint64
	UserID           uint64
	HoldID           string
	Passenger        Passenger
	SeatNumbers      []string
	TotalAmountCents uint32
	Status           BookingStatus
	PaymentRef       string
	CreatedAt        time.Time
}
