package model

import (
	"testing"
	"time"
)

func TestSeatStateString(t *testing.T) {
	cases := map[SeatState]string{
		SeatAvailable: "AVAILABLE",
		SeatHeld:      "HELD",
		SeatBooked:    "BOOKED",
		SeatState(0):  "UNKNOWN",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("SeatState(%d).String() = %q, want %q", state, got, want)
		}
	}
}

func TestSeatStatusMatches(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute)
	heldA := HeldBy(1, "hold-a", exp)
	heldB := HeldBy(2, "hold-b", exp)
	bookedX := BookedUnder("booking-x")
	bookedY := BookedUnder("booking-y")

	cases := []struct {
		name     string
		actual   SeatStatus
		expected SeatStatus
		want     bool
	}{
		{"available matches available", Available(), Available(), true},
		{"available does not match held", Available(), heldA, false},
		{"held matches same hold", heldA, HeldBy(1, "hold-a", exp), true},
		{"held does not match other hold", heldA, heldB, false},
		{"held does not match available", heldA, Available(), false},
		{"booked matches same booking", bookedX, BookedUnder("booking-x"), true},
		{"booked does not match other booking", bookedX, bookedY, false},
		{"booked does not match held", bookedX, heldA, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.actual.Matches(tc.expected); got != tc.want {
				t.Errorf("Matches() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHeldSeatMatchesIgnoresExpiry(t *testing.T) {
	// Identity of the claim decides a match; expiry enforcement belongs
	// to the reclaim path.
	early := HeldBy(1, "hold-a", time.Now())
	late := HeldBy(1, "hold-a", time.Now().Add(time.Hour))
	if !early.Matches(late) {
		t.Errorf("same hold with different expiries should match")
	}
}
