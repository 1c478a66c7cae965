package handler

import (
	"sort"
	"testing"
)

func TestSeatNumbers(t *testing.T) {
	seats := SeatNumbers(120)
	if len(seats) != 120 {
		t.Fatalf("len = %d, want 120", len(seats))
	}
	if seats[0] != "S001" || seats[119] != "S120" {
		t.Errorf("endpoints = %s..%s", seats[0], seats[119])
	}
	// Lexicographic order must equal numeric order; the inventory
	// stores lock in this order.
	if !sort.StringsAreSorted(seats) {
		t.Error("seat numbers are not sorted")
	}
	seen := make(map[string]struct{}, len(seats))
	for _, s := range seats {
		if _, dup := seen[s]; dup {
			t.Fatalf("duplicate seat number %s", s)
		}
		seen[s] = struct{}{}
	}
}
