package service

import (
	"context"
	"log"
	"time"
)

const defaultSweepInterval = 30 * time.Second

// Sweeper periodically reclaims seats from holds whose TTL has
// lapsed, independent of whether any client ever revisits them.  It
// reuses the same transition primitive as release and commit, so it
// can never race a commit into an inconsistent outcome: whichever
// side transitions the seats first wins and the other observes a
// clean conflict.
type Sweeper struct {
	holds    *HoldService
	interval time.Duration
}

// NewSweeper returns a sweeper driving the given hold service.  A
// non-positive interval falls back to the default.
func NewSweeper(holds *HoldService, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{holds: holds, interval: interval}
}

// Run loops until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("sweeper: running every %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("sweeper: stopped")
			return
		case <-ticker.C:
			reclaimed, err := s.holds.ReapExpired(ctx)
			if err != nil {
				log.Printf("sweeper: sweep failed: %v", err)
				continue
			}
			if reclaimed > 0 {
				log.Printf("sweeper: reclaimed %d expired hold(s)", reclaimed)
			}
		}
	}
}
