package model

import "time"

// Train describes a single scheduled train service between two
// stations.  Trains are provisioned once by an administrator together
// with their full seat set and are immutable afterwards as far as the
// reservation core is concerned.
//
// Fields:
//  ID                – primary key identifier.
//  Number            – public train number (e.g. "12951").
//  Name              – display name (e.g. "Rajdhani Express").
//  Source            – departure station.
//  Destination       – arrival station.
//  DepartsAt         – scheduled departure time (UTC).
//  ArrivesAt         – scheduled arrival time (UTC).
//  PricePerSeatCents – fare for one seat in cents.
//  SeatCount         – total number of seats on the train.
//  CreatedAt         – creation timestamp.
type Train struct {
	ID                uint64    // trains.id
	Number            string    // trains.number
	Name              string    // trains.name
	Source            string    // trains.source
	Destination       string    // trains.destination
	DepartsAt         time.Time // trains.departs_at
	ArrivesAt         time.Time // trains.arrives_at
	PricePerSeatCents uint32    // trains.price_per_seat_cents
	SeatCount         int       // trains.seat_count
	CreatedAt         time.Time // trains.created_at
}
