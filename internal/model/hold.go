package model

import "time"

// HoldState tracks the lifecycle of a hold.  A hold starts Active and
// moves exactly once to Committed (booking succeeded), Released
// (explicit release) or Expired (reclaimed by the sweeper); it is
// never resurrected.
type HoldState string

const (
	HoldActive    HoldState = "ACTIVE"
	HoldCommitted HoldState = "COMMITTED"
	HoldReleased  HoldState = "RELEASED"
	HoldExpired   HoldState = "EXPIRED"
)

// Hold is a time-bounded exclusive claim on a set of seats of one
// train, pending booking commitment.  The seat set is immutable once
// the hold is created; seats cannot be added or removed afterwards.
//
// Fields:
//  ID          – opaque hold identifier (UUID), returned to the client.
//  TrainID     – train the seats belong to.
//  HolderID    – user who owns the hold.
//  SeatNumbers – the claimed seats, at most MaxSeatsPerHold of them.
//  State       – current lifecycle state.
//  ExpiresAt   – absolute deadline; fixed TTL from creation, no extension.
//  CreatedAt   – creation timestamp.
type Hold struct {
	ID          string
	TrainID     uint64
	HolderID    uint64
	SeatNumbers []string
	State       HoldState
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// MaxSeatsPerHold caps how many seats a single hold may claim.  The
// original interface only enforced this in the browser; here it is a
// server-side business rule.
const MaxSeatsPerHold = 4
