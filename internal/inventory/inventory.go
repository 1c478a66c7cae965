// Package inventory is the single source of truth for seat status.
// Every mutation of seat state in the whole service goes through
// Store.TryTransition; no other code path writes seat status.  That is
// what makes the all-or-nothing and ordering guarantees enforceable.
package inventory

import (
	"context"
	"errors"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// ErrConflict is returned by TryTransition when at least one seat's
// actual state differs from the caller's expectation (already held by
// someone else, already booked, or the hold changed underneath).  The
// store never retries internally; callers retry with a fresh read or
// translate the conflict into a domain error.
var ErrConflict = errors.New("seat state conflict")

// SeatView is one entry of a seat map snapshot.
type SeatView struct {
	SeatNumber string
	Status     model.SeatStatus
}

// Store is the seat inventory abstraction.  Two implementations
// exist: Memory (per-seat mutexes, used by tests and memory-backed
// deployments) and MySQL (row locks inside one transaction).
type Store interface {
	// CreateSeats provisions the seat set of a train.  Called once,
	// when the train itself is created; all seats start Available.
	CreateSeats(ctx context.Context, trainID uint64, seatNumbers []string) error

	// SeatMap returns a snapshot of every seat of the train in
	// ascending seat-number order.  The snapshot may be momentarily
	// stale relative to in-flight transitions; authoritative checks
	// happen inside TryTransition.
	SeatMap(ctx context.Context, trainID uint64) ([]SeatView, error)

	// TryTransition atomically moves every named seat from a state
	// matching the caller's expectation to the new state.  Either all
	// seats transition or none do.  Implementations acquire their
	// per-seat locks in ascending seat-number order so concurrent
	// multi-seat callers cannot deadlock.  Returns ErrConflict when
	// any seat fails the expectation check, model.ErrTrainNotFound or
	// model.ErrUnknownSeat for bad identifiers.
	TryTransition(ctx context.Context, trainID uint64, seatNumbers []string, from, to model.SeatStatus) error
}

// Tally counts a seat map snapshot by state.  The train-level
// "available seats" figure shown to clients is always recomputed this
// way, never kept as an incrementally updated counter.
func Tally(seats []SeatView) (available, held, booked int) {
	for _, s := range seats {
		switch s.Status.State() {
		case model.SeatAvailable:
			available++
		case model.SeatHeld:
			held++
		case model.SeatBooked:
			booked++
		}
	}
	return available, held, booked
}
