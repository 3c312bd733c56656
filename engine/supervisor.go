package engine

import (
	"sync"
	"time"
)

// DefaultGracePeriod is how long a seated player may stay disconnected
// before their seat is forfeited.
const DefaultGracePeriod = 5 * time.Second

type graceTimer struct {
	timer *time.Timer
	gen   uint64
}

// Supervisor tracks disconnect grace periods. Rapid disconnect/reconnect
// churn is absorbed by a per-player generation counter: only the timer that
// still matches the current generation may fire the expiry callback.
type Supervisor struct {
	mu       sync.Mutex
	pending  map[string]*graceTimer
	grace    time.Duration
	onExpiry func(playerID string)
}

func NewSupervisor(grace time.Duration, onExpiry func(playerID string)) *Supervisor {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &Supervisor{
		pending:  make(map[string]*graceTimer),
		grace:    grace,
		onExpiry: onExpiry,
	}
}

// SetGrace changes the grace period for timers armed from now on.
func (s *Supervisor) SetGrace(grace time.Duration) {
	if grace <= 0 {
		return
	}
	s.mu.Lock()
	s.grace = grace
	s.mu.Unlock()
}

// Disconnected arms the grace timer for a player. Calling it again while a
// timer is pending restarts the clock.
func (s *Supervisor) Disconnected(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var gen uint64
	if existing, ok := s.pending[playerID]; ok {
		existing.timer.Stop()
		gen = existing.gen + 1
	}
	entry := &graceTimer{gen: gen}
	entry.timer = time.AfterFunc(s.grace, func() {
		s.expire(playerID, gen)
	})
	s.pending[playerID] = entry
}

// Reconnected cancels a pending grace timer. A no-op for players with no
// timer running, so late or duplicate reconnect signals are harmless.
func (s *Supervisor) Reconnected(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.pending[playerID]; ok {
		entry.timer.Stop()
		delete(s.pending, playerID)
	}
}

// Pending reports whether a player currently has a grace timer running.
func (s *Supervisor) Pending(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[playerID]
	return ok
}

func (s *Supervisor) expire(playerID string, gen uint64) {
	s.mu.Lock()
	entry, ok := s.pending[playerID]
	if !ok || entry.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.pending, playerID)
	s.mu.Unlock()

	if s.onExpiry != nil {
		s.onExpiry(playerID)
	}
}
