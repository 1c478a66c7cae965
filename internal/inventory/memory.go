package inventory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// memorySeat pairs a mutex serializing writers with an atomically
// swapped status pointer so readers never block on writers.
type memorySeat struct {
	mu     sync.Mutex
	status atomic.Pointer[model.SeatStatus]
}

type memoryTrain struct {
	order []string // ascending seat numbers; doubles as lock order
	seats map[string]*memorySeat
}

// Memory is the in-memory Store implementation.  Writers take the
// per-seat mutexes of the requested set in ascending seat-number
// order, re-validate each seat against the expectation while holding
// the locks, and only then publish the new statuses.  SeatMap reads
// the atomic pointers without taking any seat lock.
type Memory struct {
	mu     sync.RWMutex // guards the train map shape, not seat status
	trains map[uint64]*memoryTrain
}

// NewMemory returns an empty in-memory seat store.
func NewMemory() *Memory {
	return &Memory{trains: make(map[uint64]*memoryTrain)}
}

func (m *Memory) CreateSeats(ctx context.Context, trainID uint64, seatNumbers []string) error {
	if len(seatNumbers) == 0 {
		return fmt.Errorf("train %d: empty seat set", trainID)
	}
	order := uniqueSorted(seatNumbers)
	if len(order) != len(seatNumbers) {
		return fmt.Errorf("train %d: duplicate seat numbers", trainID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.trains[trainID]; exists {
		return fmt.Errorf("train %d: seats already provisioned", trainID)
	}
	t := &memoryTrain{order: order, seats: make(map[string]*memorySeat, len(order))}
	available := model.Available()
	for _, n := range order {
		s := &memorySeat{}
		s.status.Store(&available)
		t.seats[n] = s
	}
	m.trains[trainID] = t
	return nil
}

func (m *Memory) SeatMap(ctx context.Context, trainID uint64) ([]SeatView, error) {
	m.mu.RLock()
	t, ok := m.trains[trainID]
	m.mu.RUnlock()
	if !ok {
		return nil, model.ErrTrainNotFound
	}

	out := make([]SeatView, 0, len(t.order))
	for _, n := range t.order {
		out = append(out, SeatView{SeatNumber: n, Status: *t.seats[n].status.Load()})
	}
	return out, nil
}

func (m *Memory) TryTransition(ctx context.Context, trainID uint64, seatNumbers []string, from, to model.SeatStatus) error {
	if len(seatNumbers) == 0 {
		return fmt.Errorf("empty seat set")
	}

	m.mu.RLock()
	t, ok := m.trains[trainID]
	m.mu.RUnlock()
	if !ok {
		return model.ErrTrainNotFound
	}

	ordered := uniqueSorted(seatNumbers)
	seats := make([]*memorySeat, 0, len(ordered))
	for _, n := range ordered {
		s, ok := t.seats[n]
		if !ok {
			return fmt.Errorf("%w: seat %s on train %d", model.ErrUnknownSeat, n, trainID)
		}
		seats = append(seats, s)
	}

	// Fixed global lock order: ascending seat number across all callers.
	for _, s := range seats {
		s.mu.Lock()
	}
	defer func() {
		for i := len(seats) - 1; i >= 0; i-- {
			seats[i].mu.Unlock()
		}
	}()

	// Re-validate under the locks; all seats must match or none move.
	for i, s := range seats {
		if !s.status.Load().Matches(from) {
			return fmt.Errorf("%w: seat %s", ErrConflict, ordered[i])
		}
	}
	next := to
	for _, s := range seats {
		s.status.Store(&next)
	}
	return nil
}

func uniqueSorted(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	dedup := out[:0]
	for _, n := range out {
		if len(dedup) == 0 || n != dedup[len(dedup)-1] {
			dedup = append(dedup, n)
		}
	}
	return dedup
}
