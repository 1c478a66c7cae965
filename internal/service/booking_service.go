package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/iliyamo/train-seat-reservation/internal/clock"
	"github.com/iliyamo/train-seat-reservation/internal/inventory"
	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// BookingStore persists the immutable booking records produced by
// successful commits.
type BookingStore interface {
	CreateBooking(ctx context.Context, b model.Booking) error
	// GetBookingByHold returns the booking created from the given
	// hold, or nil when none exists.
	GetBookingByHold(ctx context.Context, holdID string) (*model.Booking, error)
	ListBookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
}

// PaymentCharger is the external payment collaborator.  One attempt
// per commit call; the core performs no retries of its own.
type PaymentCharger interface {
	Charge(ctx context.Context, token string, amountCents uint32) (ref string, err error)
}

// Notifier is the fire-and-forget notification collaborator.  A
// failure here must never roll back a committed booking, so
// implementations log and swallow their own errors.
type Notifier interface {
	BookingConfirmed(ctx context.Context, b model.Booking, t model.Train)
}

// BookingService converts an active hold plus validated passenger and
// payment data into a durable, immutable booking.
type BookingService struct {
	seats    inventory.Store
	holds    HoldStore
	bookings BookingStore
	trains   TrainCatalog
	payments PaymentCharger
	notifier Notifier
	clock    clock.Clock
}

// NewBookingService wires a BookingService.
func NewBookingService(seats inventory.Store, holds HoldStore, bookings BookingStore, trains TrainCatalog, payments PaymentCharger, notifier Notifier, clk clock.Clock) *BookingService {
	return &BookingService{
		seats:    seats,
		holds:    holds,
		bookings: bookings,
		trains:   trains,
		payments: payments,
		notifier: notifier,
		clock:    clk,
	}
}

// CommitBooking is the irreversible state change of the system.  It
// validates input, verifies hold ownership and freshness, charges the
// payment collaborator once, atomically flips every held seat to
// Booked, and persists the booking.  Commit is idempotent per hold:
// a second call for an already committed hold returns the same
// booking instead of creating a duplicate.
func (s *BookingService) CommitBooking(ctx context.Context, holdID string, requesterID uint64, p model.Passenger, paymentToken string) (model.Booking, error) {
	if err := p.Validate(); err != nil {
		return model.Booking{}, err
	}

	// Idempotency: a booking derived from this hold may already exist
	// (prior success, or a duplicate commit that lost the race below).
	if existing, err := s.bookings.GetBookingByHold(ctx, holdID); err != nil {
		return model.Booking{}, err
	} else if existing != nil {
		if existing.UserID != requesterID {
			return model.Booking{}, model.ErrNotOwner
		}
		return *existing, nil
	}

	h, err := s.holds.GetHold(ctx, holdID)
	if err != nil {
		return model.Booking{}, err
	}
	if h.HolderID != requesterID {
		return model.Booking{}, model.ErrNotOwner
	}
	now := s.clock.Now()
	if h.State != model.HoldActive || !h.ExpiresAt.After(now) {
		return model.Booking{}, model.ErrHoldExpired
	}

	train, err := s.trains.GetTrain(ctx, h.TrainID)
	if err != nil {
		return model.Booking{}, err
	}
	total := train.PricePerSeatCents * uint32(len(h.SeatNumbers))

	// One charge attempt.  On decline the seats stay Held, so the
	// caller may retry the commit until the TTL lapses.
	ref, err := s.payments.Charge(ctx, paymentToken, total)
	if err != nil {
		return model.Booking{}, fmt.Errorf("%w: %v", model.ErrPaymentFailed, err)
	}

	bookingID := uuid.NewString()
	err = s.seats.TryTransition(ctx, h.TrainID, h.SeatNumbers,
		model.HeldBy(h.HolderID, h.ID, h.ExpiresAt),
		model.BookedUnder(bookingID))
	if err != nil {
		if errors.Is(err, inventory.ErrConflict) {
			// Either the sweeper reclaimed the seats microseconds ago,
			// or a concurrent duplicate commit beat us to it.
			if existing, lerr := s.bookings.GetBookingByHold(ctx, holdID); lerr == nil && existing != nil {
				if existing.UserID != requesterID {
					return model.Booking{}, model.ErrNotOwner
				}
				return *existing, nil
			}
			return model.Booking{}, model.ErrHoldExpired
		}
		return model.Booking{}, err
	}

	booking := model.Booking{
		ID:               bookingID,
		TrainID:          h.TrainID,
		UserID:           h.HolderID,
		HoldID:           h.ID,
		Passenger:        p,
		SeatNumbers:      h.SeatNumbers,
		TotalAmountCents: total,
		Status:           model.BookingConfirmed,
		PaymentRef:       ref,
		CreatedAt:        now,
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		// Put the seats back under the hold so the TTL path reclaims
		// them; a half-visible booking must never survive.
		if rerr := s.seats.TryTransition(ctx, h.TrainID, h.SeatNumbers,
			model.BookedUnder(bookingID),
			model.HeldBy(h.HolderID, h.ID, h.ExpiresAt)); rerr != nil {
			log.Printf("booking: revert seats of failed booking %s: %v", bookingID, rerr)
		}
		return model.Booking{}, err
	}

	if changed, uerr := s.holds.UpdateHoldState(ctx, holdID, model.HoldActive, model.HoldCommitted); uerr != nil || !changed {
		log.Printf("booking: mark hold %s committed (changed=%v): %v", holdID, changed, uerr)
	}

	s.notifier.BookingConfirmed(ctx, booking, train)

	return booking, nil
}

// MyBookings lists the bookings owned by a user, newest first.
func (s *BookingService) MyBookings(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return s.bookings.ListBookingsByUser(ctx, userID)
}
