// Package service implements the reservation core: acquiring and
// releasing holds, sweeping expired holds, and committing holds into
// bookings.  Services talk to storage through small consumer-side
// interfaces so the in-memory and MySQL backends are interchangeable.
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/train-seat-reservation/internal/clock"
	"github.com/iliyamo/train-seat-reservation/internal/inventory"
	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// TrainCatalog supplies train existence and pricing.  Read-only input
// to validation; the reservation core never mutates trains.
type TrainCatalog interface {
	GetTrain(ctx context.Context, trainID uint64) (model.Train, error)
}

// HoldStore persists hold records.  Seat state stays authoritative in
// the inventory store; hold records carry ownership, the seat set and
// the lifecycle state.
type HoldStore interface {
	CreateHold(ctx context.Context, h model.Hold) error
	GetHold(ctx context.Context, holdID string) (model.Hold, error)
	// UpdateHoldState transitions the hold's state only when it still
	// equals from, and reports whether the row changed.
	UpdateHoldState(ctx context.Context, holdID string, from, to model.HoldState) (bool, error)
	// ListExpired returns Active holds whose deadline is at or before
	// now.
	ListExpired(ctx context.Context, now time.Time) ([]model.Hold, error)
}

const defaultHoldTTL = 10 * time.Minute

// HoldService turns a seat-selection intent into a time-bounded
// exclusive claim, and reclaims claims whose TTL has lapsed.
type HoldService struct {
	seats  inventory.Store
	holds  HoldStore
	trains TrainCatalog
	clock  clock.Clock
	ttl    time.Duration
}

// HoldServiceOption customizes a HoldService.
type HoldServiceOption func(*HoldService)

// WithHoldTTL overrides the default TTL for new holds.
func WithHoldTTL(d time.Duration) HoldServiceOption {
	return func(s *HoldService) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// NewHoldService wires a HoldService.
func NewHoldService(seats inventory.Store, holds HoldStore, trains TrainCatalog, clk clock.Clock, opts ...HoldServiceOption) *HoldService {
	s := &HoldService{
		seats:  seats,
		holds:  holds,
		trains: trains,
		clock:  clk,
		ttl:    defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the fixed hold time-to-live.
func (s *HoldService) TTL() time.Duration { return s.ttl }

// AcquireHold claims the given seats of a train for holderID.  All
// seats transition Available → Held together or the call fails with
// no effect: under concurrent acquires racing for the same seat
// exactly one caller wins and the rest get ErrSeatUnavailable.
func (s *HoldService) AcquireHold(ctx context.Context, trainID uint64, seatNumbers []string, holderID uint64) (model.Hold, error) {
	unique := dedupe(seatNumbers)
	if len(unique) == 0 {
		return model.Hold{}, model.ErrNoSeats
	}
	if len(unique) > model.MaxSeatsPerHold {
		return model.Hold{}, model.ErrMaxSeatsExceeded
	}
	if _, err := s.trains.GetTrain(ctx, trainID); err != nil {
		return model.Hold{}, err
	}

	// Reclaim lapsed holds first so seats whose holds have expired are
	// acquirable even if the background sweeper has not run yet.
	if _, err := s.ReapExpired(ctx); err != nil {
		return model.Hold{}, err
	}

	now := s.clock.Now()
	hold := model.Hold{
		ID:          uuid.NewString(),
		TrainID:     trainID,
		HolderID:    holderID,
		SeatNumbers: unique,
		State:       model.HoldActive,
		ExpiresAt:   now.Add(s.ttl),
		CreatedAt:   now,
	}

	// The hold record exists before the seats are claimed, so a crash
	// between the two steps leaves only a harmless empty hold, never
	// orphaned Held seats.
	if err := s.holds.CreateHold(ctx, hold); err != nil {
		return model.Hold{}, err
	}

	err := s.seats.TryTransition(ctx, trainID, unique,
		model.Available(),
		model.HeldBy(holderID, hold.ID, hold.ExpiresAt))
	if err != nil {
		if _, uerr := s.holds.UpdateHoldState(ctx, hold.ID, model.HoldActive, model.HoldReleased); uerr != nil {
			log.Printf("holds: release of unclaimed hold %s failed: %v", hold.ID, uerr)
		}
		if errors.Is(err, inventory.ErrConflict) {
			return model.Hold{}, model.ErrSeatUnavailable
		}
		return model.Hold{}, err
	}

	return hold, nil
}

// ReleaseHold frees the seats of an Active hold and marks it
// Released.  Only the holder may release.  Idempotent: releasing an
// already released, expired or committed hold is a no-op, not an
// error.
func (s *HoldService) ReleaseHold(ctx context.Context, holdID string, requesterID uint64) error {
	h, err := s.holds.GetHold(ctx, holdID)
	if err != nil {
		return err
	}
	if h.HolderID != requesterID {
		return model.ErrNotOwner
	}
	if h.State != model.HoldActive {
		return nil
	}

	err = s.seats.TryTransition(ctx, h.TrainID, h.SeatNumbers,
		model.HeldBy(h.HolderID, h.ID, h.ExpiresAt),
		model.Available())
	if err != nil && !errors.Is(err, inventory.ErrConflict) {
		return err
	}
	// A conflict means the sweeper or a commit got there first; the
	// release is still a success from the caller's point of view.
	if err == nil {
		if _, uerr := s.holds.UpdateHoldState(ctx, holdID, model.HoldActive, model.HoldReleased); uerr != nil {
			return uerr
		}
	}
	return nil
}

// ReapExpired releases the seats of every Active hold whose TTL has
// lapsed and marks those holds Expired.  It is called by the periodic
// sweeper and at the start of AcquireHold.  A hold whose seats were
// already moved on by a concurrent commit is left untouched.  Returns
// the number of holds reclaimed.
func (s *HoldService) ReapExpired(ctx context.Context) (int, error) {
	now := s.clock.Now()
	expired, err := s.holds.ListExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	reclaimed := 0
	for _, h := range expired {
		err := s.seats.TryTransition(ctx, h.TrainID, h.SeatNumbers,
			model.HeldBy(h.HolderID, h.ID, h.ExpiresAt),
			model.Available())
		switch {
		case err == nil:
			if _, uerr := s.holds.UpdateHoldState(ctx, h.ID, model.HoldActive, model.HoldExpired); uerr != nil {
				log.Printf("sweeper: mark hold %s expired failed: %v", h.ID, uerr)
				continue
			}
			reclaimed++
		case errors.Is(err, inventory.ErrConflict):
			// An in-flight commit won the race for at least one seat.
			// If the hold no longer claims any seat at all it is a
			// leftover (e.g. its seats were booked but the state
			// update never landed) and can be retired.
			if s.holdClaimsNothing(ctx, h) {
				if _, uerr := s.holds.UpdateHoldState(ctx, h.ID, model.HoldActive, model.HoldExpired); uerr != nil {
					log.Printf("sweeper: retire stale hold %s failed: %v", h.ID, uerr)
				}
			}
		default:
			log.Printf("sweeper: release hold %s failed: %v", h.ID, err)
		}
	}
	return reclaimed, nil
}

func (s *HoldService) holdClaimsNothing(ctx context.Context, h model.Hold) bool {
	seats, err := s.seats.SeatMap(ctx, h.TrainID)
	if err != nil {
		return false
	}
	for _, v := range seats {
		if v.Status.State() == model.SeatHeld && v.Status.HoldID() == h.ID {
			return false
		}
	}
	return true
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, n := range in {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
