package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/train-seat-reservation/internal/model"
	"github.com/iliyamo/train-seat-reservation/internal/repository"
)

type fakeCharger struct {
	mu      sync.Mutex
	fail    error
	charges []uint32
}

func (f *fakeCharger) Charge(ctx context.Context, token string, amountCents uint32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return "", f.fail
	}
	f.charges = append(f.charges, amountCents)
	return "PAY-TEST", nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.Booking
}

func (n *recordingNotifier) BookingConfirmed(ctx context.Context, b model.Booking, t model.Train) {
	n.mu.Lock()
	n.events = append(n.events, b)
	n.mu.Unlock()
}

type bookingFixture struct {
	*holdFixture
	bookings *repository.MemoryBookingStore
	charger  *fakeCharger
	notifier *recordingNotifier
	svc      *BookingService
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	hf := newHoldFixture(t)
	f := &bookingFixture{
		holdFixture: hf,
		bookings:    repository.NewMemoryBookingStore(),
		charger:     &fakeCharger{},
		notifier:    &recordingNotifier{},
	}
	f.svc = NewBookingService(hf.seats, hf.holds, f.bookings, hf.trains, f.charger, f.notifier, hf.clock)
	return f
}

var testPassenger = model.Passenger{Name: "Asha Verma", Age: 34, Gender: model.GenderFemale}

func TestCommitBooking(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	h, err := f.holdFixture.svc.AcquireHold(ctx, f.train.ID, []string{"S001", "S002"}, 1)
	if err != nil {
		t.Fatalf("AcquireHold: %v", err)
	}

	b, err := f.svc.CommitBooking(ctx, h.ID, 1, testPassenger, "tok-ok")
	if err != nil {
		t.Fatalf("CommitBooking: %v", err)
	}
	if b.Status != model.BookingConfirmed {
		t.Errorf("status = %s, want CONFIRMED", b.Status)
	}
	if want := f.train.PricePerSeatCents * 2; b.TotalAmountCents != want {
		t.Errorf("total = %d, want %d", b.TotalAmountCents, want)
	}
	for _, n := range h.SeatNumbers {
		st := f.seatState(t, n)
		if st.State() != model.SeatBooked || st.BookingID() != b.ID {
			t.Errorf("seat %s = %+v, want booked under %s", n, st, b.ID)
		}
	}
	got, _ := f.holds.GetHold(ctx, h.ID)
	if got.State != model.HoldCommitted {
		t.Errorf("hold state = %s, want COMMITTED", got.State)
	}
	if len(f.charger.charges) != 1 {
		t.Errorf("charges = %d, want 1", len(f.charger.charges))
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0].ID != b.ID {
		t.Errorf("notifications = %+v, want one for %s", f.notifier.events, b.ID)
	}
}

func TestCommitBookingIdempotent(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	h, _ := f.holdFixture.svc.AcquireHold(ctx, f.train.ID, []string{"S001"}, 1)
	first, err := f.svc.CommitBooking(ctx, h.ID, 1, testPassenger, "tok-ok")
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	second, err := f.svc.CommitBooking(ctx, h.ID, 1, testPassenger, "tok-ok")
	if err != nil {
		t.Fatalf("duplicate commit: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("duplicate commit created booking %s, want %s", second.ID, first.ID)
	}
	if len(f.charger.charges) != 1 {
		t.Errorf("duplicate commit charged again: %d charges", len(f.charger.charges))
	}
	// The same hold never yields a second booking for someone else.
	if _, err := f.svc.CommitBooking(ctx, h.ID, 2, testPassenger, "tok-ok"); !errors.Is(err, model.ErrNotOwner) {
		t.Errorf("stranger replay = %v, want ErrNotOwner", err)
	}
}

func TestCommitBookingValidation(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	h, _ := f.holdFixture.svc.AcquireHold(ctx, f.train.ID, []string{"S001"}, 1)

	bad := testPassenger
	bad.Age = 0
	if _, err := f.svc.CommitBooking(ctx, h.ID, 1, bad, "tok-ok"); !errors.Is(err, model.ErrInvalidPassenger) {
		t.Errorf("bad passenger = %v, want ErrInvalidPassenger", err)
	}
	if _, err := f.svc.CommitBooking(ctx, "no-such-hold", 1, testPassenger, "tok-ok"); !errors.Is(err, model.ErrHoldNotFound) {
		t.Errorf("unknown hold = %v, want ErrHoldNotFound", err)
	}
	if _, err := f.svc.CommitBooking(ctx, h.ID, 2, testPassenger, "tok-ok"); !errors.Is(err, model.ErrNotOwner) {
		t.Errorf("stranger commit = %v, want ErrNotOwner", err)
	}
	// None of the rejected commits may have touched the seats, and a
	// corrected resubmission within the TTL succeeds.
	if st := f.seatState(t, "S001"); st.State() != model.SeatHeld {
		t.Errorf("S001 = %v after rejected commits, want HELD", st.State())
	}
	if len(f.charger.charges) != 0 {
		t.Errorf("rejected commits charged: %d", len(f.charger.charges))
	}
	if _, err := f.svc.CommitBooking(ctx, h.ID, 1, testPassenger, "tok-ok"); err != nil {
		t.Errorf("corrected resubmission = %v, want success", err)
	}
}

func TestCommitBookingAfterExpiry(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	h, _ := f.holdFixture.svc.AcquireHold(ctx, f.train.ID, []string{"S001", "S002", "S003", "S004"}, 1)
	f.clock.Advance(f.holdFixture.svc.TTL() + time.Second)
	if _, err := f.holdFixture.svc.ReapExpired(ctx); err != nil {
		t.Fatalf("ReapExpired: %v", err)
	}

	if _, err := f.svc.CommitBooking(ctx, h.ID, 1, testPassenger, "tok-ok"); !errors.Is(err, model.ErrHoldExpired) {
		t.Fatalf("commit after expiry = %v, want ErrHoldExpired", err)
	}
	// Every reclaimed seat ends Available, never Booked.
	for _, n := range h.SeatNumbers {
		if st := f.seatState(t, n); st.State() != model.SeatAvailable {
			t.Errorf("seat %s = %v after expired commit, want AVAILABLE", n, st.State())
		}
	}
	if len(f.charger.charges) != 0 {
		t.Errorf("expired commit charged: %d", len(f.charger.charges))
	}
}

func TestCommitBookingPaymentDeclined(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	h, _ := f.holdFixture.svc.AcquireHold(ctx, f.train.ID, []string{"S001", "S002"}, 1)
	f.charger.fail = errors.New("card declined")

	if _, err := f.svc.CommitBooking(ctx, h.ID, 1, testPassenger, "tok-bad"); !errors.Is(err, model.ErrPaymentFailed) {
		t.Fatalf("declined payment = %v, want ErrPaymentFailed", err)
	}
	// Seats stay held so the holder can retry within the TTL.
	for _, n := range h.SeatNumbers {
		st := f.seatState(t, n)
		if st.State() != model.SeatHeld || st.HoldID() != h.ID {
			t.Errorf("seat %s = %+v after decline, want still held", n, st)
		}
	}

	f.charger.fail = nil
	if _, err := f.svc.CommitBooking(ctx, h.ID, 1, testPassenger, "tok-ok"); err != nil {
		t.Fatalf("retry after decline: %v", err)
	}
}

func TestCommitRacesSweeperToLoss(t *testing.T) {
	// The sweeper reclaims the seats between the hold check and the
	// seat transition; the commit must observe a clean conflict and
	// fail, never un-book or double-claim.
	f := newBookingFixture(t)
	ctx := context.Background()

	h, _ := f.holdFixture.svc.AcquireHold(ctx, f.train.ID, []string{"S001"}, 1)
	// Reclaim the seats out from under the still-Active hold record.
	if err := f.seats.TryTransition(ctx, f.train.ID, h.SeatNumbers,
		model.HeldBy(h.HolderID, h.ID, h.ExpiresAt), model.Available()); err != nil {
		t.Fatalf("simulate sweep: %v", err)
	}

	if _, err := f.svc.CommitBooking(ctx, h.ID, 1, testPassenger, "tok-ok"); !errors.Is(err, model.ErrHoldExpired) {
		t.Fatalf("commit after sweep = %v, want ErrHoldExpired", err)
	}
	if st := f.seatState(t, "S001"); st.State() != model.SeatAvailable {
		t.Errorf("S001 = %v, want AVAILABLE", st.State())
	}
}

func TestMyBookings(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	h1, _ := f.holdFixture.svc.AcquireHold(ctx, f.train.ID, []string{"S001"}, 1)
	h2, _ := f.holdFixture.svc.AcquireHold(ctx, f.train.ID, []string{"S002"}, 2)
	b1, err := f.svc.CommitBooking(ctx, h1.ID, 1, testPassenger, "tok-ok")
	if err != nil {
		t.Fatalf("commit 1: %v", err)
	}
	if _, err := f.svc.CommitBooking(ctx, h2.ID, 2, testPassenger, "tok-ok"); err != nil {
		t.Fatalf("commit 2: %v", err)
	}

	mine, err := f.svc.MyBookings(ctx, 1)
	if err != nil {
		t.Fatalf("MyBookings: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != b1.ID {
		t.Errorf("MyBookings = %+v, want only %s", mine, b1.ID)
	}
}
