package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/train-seat-reservation/internal/clock"
	"github.com/iliyamo/train-seat-reservation/internal/inventory"
	"github.com/iliyamo/train-seat-reservation/internal/model"
	"github.com/iliyamo/train-seat-reservation/internal/repository"
)

type holdFixture struct {
	seats  *inventory.Memory
	holds  *repository.MemoryHoldStore
	trains *repository.MemoryTrainStore
	clock  *clock.Manual
	svc    *HoldService
	train  model.Train
}

func newHoldFixture(t *testing.T, seatNumbers ...string) *holdFixture {
	t.Helper()
	if len(seatNumbers) == 0 {
		seatNumbers = []string{"S001", "S002", "S003", "S004", "S005", "S006"}
	}
	f := &holdFixture{
		seats:  inventory.NewMemory(),
		holds:  repository.NewMemoryHoldStore(),
		trains: repository.NewMemoryTrainStore(),
		clock:  clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
	}
	f.train = f.trains.Add(model.Train{
		Number:            "12951",
		Name:              "Rajdhani Express",
		Source:            "Mumbai Central",
		Destination:       "New Delhi",
		DepartsAt:         f.clock.Now().Add(24 * time.Hour),
		ArrivesAt:         f.clock.Now().Add(40 * time.Hour),
		PricePerSeatCents: 250000,
		SeatCount:         len(seatNumbers),
	})
	if err := f.seats.CreateSeats(context.Background(), f.train.ID, seatNumbers); err != nil {
		t.Fatalf("CreateSeats: %v", err)
	}
	f.svc = NewHoldService(f.seats, f.holds, f.trains, f.clock)
	return f
}

func (f *holdFixture) seatState(t *testing.T, number string) model.SeatStatus {
	t.Helper()
	seats, err := f.seats.SeatMap(context.Background(), f.train.ID)
	if err != nil {
		t.Fatalf("SeatMap: %v", err)
	}
	for _, s := range seats {
		if s.SeatNumber == number {
			return s.Status
		}
	}
	t.Fatalf("seat %s not found", number)
	return model.SeatStatus{}
}

func TestAcquireHold(t *testing.T) {
	f := newHoldFixture(t)
	ctx := context.Background()

	h, err := f.svc.AcquireHold(ctx, f.train.ID, []string{"S002", "S001"}, 42)
	if err != nil {
		t.Fatalf("AcquireHold: %v", err)
	}
	if h.State != model.HoldActive {
		t.Errorf("state = %s, want ACTIVE", h.State)
	}
	if want := f.clock.Now().Add(f.svc.TTL()); !h.ExpiresAt.Equal(want) {
		t.Errorf("expires = %v, want %v", h.ExpiresAt, want)
	}
	for _, n := range []string{"S001", "S002"} {
		st := f.seatState(t, n)
		if st.State() != model.SeatHeld || st.HoldID() != h.ID || st.HolderID() != 42 {
			t.Errorf("seat %s = %+v, want held by hold %s", n, st, h.ID)
		}
	}
	if st := f.seatState(t, "S003"); st.State() != model.SeatAvailable {
		t.Errorf("untouched seat S003 changed: %v", st.State())
	}
}

func TestAcquireHoldValidation(t *testing.T) {
	f := newHoldFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AcquireHold(ctx, f.train.ID, nil, 1); !errors.Is(err, model.ErrNoSeats) {
		t.Errorf("empty request = %v, want ErrNoSeats", err)
	}
	if _, err := f.svc.AcquireHold(ctx, f.train.ID, []string{"", ""}, 1); !errors.Is(err, model.ErrNoSeats) {
		t.Errorf("blank seats = %v, want ErrNoSeats", err)
	}
	if _, err := f.svc.AcquireHold(ctx, f.train.ID, []string{"S001", "S002", "S003", "S004", "S005"}, 1); !errors.Is(err, model.ErrMaxSeatsExceeded) {
		t.Errorf("five seats = %v, want ErrMaxSeatsExceeded", err)
	}
	// The over-cap request must not have touched any seat.
	seats, _ := f.seats.SeatMap(ctx, f.train.ID)
	if available, held, booked := inventory.Tally(seats); available != len(seats) || held != 0 || booked != 0 {
		t.Errorf("seat map after rejected requests = (%d,%d,%d)", available, held, booked)
	}
	if _, err := f.svc.AcquireHold(ctx, 999, []string{"S001"}, 1); !errors.Is(err, model.ErrTrainNotFound) {
		t.Errorf("unknown train = %v, want ErrTrainNotFound", err)
	}
	if _, err := f.svc.AcquireHold(ctx, f.train.ID, []string{"S099"}, 1); !errors.Is(err, model.ErrUnknownSeat) {
		t.Errorf("unknown seat = %v, want ErrUnknownSeat", err)
	}
}

func TestAcquireHoldDeduplicatesSeats(t *testing.T) {
	f := newHoldFixture(t)
	// Four entries naming two seats is a two-seat hold, not a cap
	// violation.
	h, err := f.svc.AcquireHold(context.Background(), f.train.ID, []string{"S001", "S001", "S002", "S002"}, 1)
	if err != nil {
		t.Fatalf("AcquireHold: %v", err)
	}
	if len(h.SeatNumbers) != 2 {
		t.Errorf("seat count = %d, want 2", len(h.SeatNumbers))
	}
}

func TestAcquireHoldConflict(t *testing.T) {
	f := newHoldFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AcquireHold(ctx, f.train.ID, []string{"S002"}, 1); err != nil {
		t.Fatalf("first hold: %v", err)
	}
	_, err := f.svc.AcquireHold(ctx, f.train.ID, []string{"S001", "S002"}, 2)
	if !errors.Is(err, model.ErrSeatUnavailable) {
		t.Fatalf("overlapping hold = %v, want ErrSeatUnavailable", err)
	}
	// The loser's request must leave its other seat untouched.
	if st := f.seatState(t, "S001"); st.State() != model.SeatAvailable {
		t.Errorf("S001 = %v after failed hold, want AVAILABLE", st.State())
	}
}

func TestConcurrentAcquireOneWinner(t *testing.T) {
	f := newHoldFixture(t)
	ctx := context.Background()

	const racers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins []model.Hold
	)
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(user uint64) {
			defer wg.Done()
			<-start
			h, err := f.svc.AcquireHold(ctx, f.train.ID, []string{"S003", "S004"}, user)
			switch {
			case err == nil:
				mu.Lock()
				wins = append(wins, h)
				mu.Unlock()
			case errors.Is(err, model.ErrSeatUnavailable):
			default:
				t.Errorf("user %d: unexpected error %v", user, err)
			}
		}(uint64(i + 1))
	}
	close(start)
	wg.Wait()

	if len(wins) != 1 {
		t.Fatalf("winners = %d, want exactly 1", len(wins))
	}
	if st := f.seatState(t, "S003"); st.HoldID() != wins[0].ID {
		t.Errorf("S003 held by %s, want winner %s", st.HoldID(), wins[0].ID)
	}
}

func TestReleaseHold(t *testing.T) {
	f := newHoldFixture(t)
	ctx := context.Background()

	h, err := f.svc.AcquireHold(ctx, f.train.ID, []string{"S001", "S002"}, 1)
	if err != nil {
		t.Fatalf("AcquireHold: %v", err)
	}
	if err := f.svc.ReleaseHold(ctx, h.ID, 1); err != nil {
		t.Fatalf("ReleaseHold: %v", err)
	}
	for _, n := range h.SeatNumbers {
		if st := f.seatState(t, n); st.State() != model.SeatAvailable {
			t.Errorf("seat %s = %v after release, want AVAILABLE", n, st.State())
		}
	}
	got, _ := f.holds.GetHold(ctx, h.ID)
	if got.State != model.HoldReleased {
		t.Errorf("hold state = %s, want RELEASED", got.State)
	}

	// Releasing again is a no-op, not an error.
	if err := f.svc.ReleaseHold(ctx, h.ID, 1); err != nil {
		t.Errorf("second release = %v, want nil", err)
	}
	if err := f.svc.ReleaseHold(ctx, "no-such-hold", 1); !errors.Is(err, model.ErrHoldNotFound) {
		t.Errorf("release unknown hold = %v, want ErrHoldNotFound", err)
	}
	if err := f.svc.ReleaseHold(ctx, h.ID, 2); !errors.Is(err, model.ErrNotOwner) {
		t.Errorf("release by stranger = %v, want ErrNotOwner", err)
	}
}

func TestExpiredSeatsAcquirableWithoutSweeper(t *testing.T) {
	// A lapsed hold's seats must be acquirable immediately even if the
	// background sweeper never ran.
	f := newHoldFixture(t)
	ctx := context.Background()

	first, err := f.svc.AcquireHold(ctx, f.train.ID, []string{"S001"}, 1)
	if err != nil {
		t.Fatalf("first hold: %v", err)
	}
	f.clock.Advance(f.svc.TTL() + time.Second)

	second, err := f.svc.AcquireHold(ctx, f.train.ID, []string{"S001"}, 2)
	if err != nil {
		t.Fatalf("acquire after TTL lapse = %v, want success", err)
	}
	if st := f.seatState(t, "S001"); st.HoldID() != second.ID {
		t.Errorf("S001 held by %s, want %s", st.HoldID(), second.ID)
	}
	got, _ := f.holds.GetHold(ctx, first.ID)
	if got.State != model.HoldExpired {
		t.Errorf("lapsed hold state = %s, want EXPIRED", got.State)
	}
}

func TestReapExpired(t *testing.T) {
	f := newHoldFixture(t)
	ctx := context.Background()

	h1, _ := f.svc.AcquireHold(ctx, f.train.ID, []string{"S001"}, 1)
	f.clock.Advance(5 * time.Minute)
	h2, _ := f.svc.AcquireHold(ctx, f.train.ID, []string{"S002"}, 2)

	// Only h1 has lapsed at +11 minutes.
	f.clock.Advance(6 * time.Minute)
	reclaimed, err := f.svc.ReapExpired(ctx)
	if err != nil {
		t.Fatalf("ReapExpired: %v", err)
	}
	if reclaimed != 1 {
		t.Fatalf("reclaimed = %d, want 1", reclaimed)
	}
	if st := f.seatState(t, "S001"); st.State() != model.SeatAvailable {
		t.Errorf("S001 = %v after sweep, want AVAILABLE", st.State())
	}
	if st := f.seatState(t, "S002"); st.State() != model.SeatHeld {
		t.Errorf("S002 = %v after sweep, want HELD", st.State())
	}
	g1, _ := f.holds.GetHold(ctx, h1.ID)
	g2, _ := f.holds.GetHold(ctx, h2.ID)
	if g1.State != model.HoldExpired || g2.State != model.HoldActive {
		t.Errorf("hold states = %s/%s, want EXPIRED/ACTIVE", g1.State, g2.State)
	}

	// Second sweep with nothing to do.
	if reclaimed, _ = f.svc.ReapExpired(ctx); reclaimed != 0 {
		t.Errorf("idle sweep reclaimed %d", reclaimed)
	}
}

func TestReapSkipsSeatsTakenByCommit(t *testing.T) {
	// When a commit flipped the seats to Booked before the sweeper got
	// to the lapsed hold, the sweep must leave the booking alone and
	// retire the hold record.
	f := newHoldFixture(t)
	ctx := context.Background()

	h, _ := f.svc.AcquireHold(ctx, f.train.ID, []string{"S001"}, 1)
	if err := f.seats.TryTransition(ctx, f.train.ID, h.SeatNumbers,
		model.HeldBy(h.HolderID, h.ID, h.ExpiresAt),
		model.BookedUnder("booking-1")); err != nil {
		t.Fatalf("simulate commit: %v", err)
	}

	f.clock.Advance(f.svc.TTL() + time.Second)
	reclaimed, err := f.svc.ReapExpired(ctx)
	if err != nil {
		t.Fatalf("ReapExpired: %v", err)
	}
	if reclaimed != 0 {
		t.Errorf("reclaimed = %d, want 0", reclaimed)
	}
	if st := f.seatState(t, "S001"); st.State() != model.SeatBooked {
		t.Errorf("S001 = %v, booking was undone by the sweeper", st.State())
	}
	got, _ := f.holds.GetHold(ctx, h.ID)
	if got.State != model.HoldExpired {
		t.Errorf("stale hold state = %s, want EXPIRED", got.State)
	}
}
