package repository

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// The memory stores mirror the MySQL repositories over plain maps.
// They back the service and transport tests, where the reservation
// core runs against the in-memory inventory engine with no database.

// MemoryTrainStore is an in-memory train catalog.
type MemoryTrainStore struct {
	mu     sync.RWMutex
	nextID uint64
	trains map[uint64]model.Train
}

// NewMemoryTrainStore returns an empty in-memory catalog.
func NewMemoryTrainStore() *MemoryTrainStore {
	return &MemoryTrainStore{trains: make(map[uint64]model.Train)}
}

// Add registers a train, assigning an ID when none is set, and
// returns the stored value.
func (s *MemoryTrainStore) Add(t model.Train) model.Train {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		s.nextID++
		t.ID = s.nextID
	}
	s.trains[t.ID] = t
	return t
}

func (s *MemoryTrainStore) GetTrain(ctx context.Context, trainID uint64) (model.Train, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trains[trainID]
	if !ok {
		return model.Train{}, model.ErrTrainNotFound
	}
	return t, nil
}

// MemoryHoldStore is an in-memory hold store with the same
// compare-and-set state semantics as the MySQL repository.
type MemoryHoldStore struct {
	mu    sync.Mutex
	holds map[string]model.Hold
}

// NewMemoryHoldStore returns an empty in-memory hold store.
func NewMemoryHoldStore() *MemoryHoldStore {
	return &MemoryHoldStore{holds: make(map[string]model.Hold)}
}

func (s *MemoryHoldStore) CreateHold(ctx context.Context, h model.Hold) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holds[h.ID] = h
	return nil
}

func (s *MemoryHoldStore) GetHold(ctx context.Context, holdID string) (model.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[holdID]
	if !ok {
		return model.Hold{}, model.ErrHoldNotFound
	}
	return h, nil
}

func (s *MemoryHoldStore) UpdateHoldState(ctx context.Context, holdID string, from, to model.HoldState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[holdID]
	if !ok {
		return false, model.ErrHoldNotFound
	}
	if h.State != from {
		return false, nil
	}
	h.State = to
	s.holds[holdID] = h
	return true, nil
}

func (s *MemoryHoldStore) ListExpired(ctx context.Context, now time.Time) ([]model.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Hold
	for _, h := range s.holds {
		if h.State == model.HoldActive && !h.ExpiresAt.After(now) {
			out = append(out, h)
		}
	}
	return out, nil
}

// MemoryBookingStore is an in-memory booking store.
type MemoryBookingStore struct {
	mu       sync.Mutex
	byID     map[string]model.Booking
	byHoldID map[string]string
}

// NewMemoryBookingStore returns an empty in-memory booking store.
func NewMemoryBookingStore() *MemoryBookingStore {
	return &MemoryBookingStore{
		byID:     make(map[string]model.Booking),
		byHoldID: make(map[string]string),
	}
}

func (s *MemoryBookingStore) CreateBooking(ctx context.Context, b model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[b.ID] = b
	s.byHoldID[b.HoldID] = b.ID
	return nil
}

func (s *MemoryBookingStore) GetBookingByHold(ctx context.Context, holdID string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byHoldID[holdID]
	if !ok {
		return nil, nil
	}
	b := s.byID[id]
	return &b, nil
}

func (s *MemoryBookingStore) ListBookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.byID {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}
