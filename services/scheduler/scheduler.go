package scheduler

import (
	"log"
	"sync"
	"time"
)

// PhaseScheduler arms one pending phase-advance timer per room. Arming a
// new timer replaces whatever was pending, so a manual transition that
// schedules the next phase implicitly retires the old timer. The armed
// callback is still expected to re-validate the room phase under the room
// lock: cancellation here is best effort, the phase guard is the real
// correctness barrier.
type PhaseScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewPhaseScheduler() *PhaseScheduler {
	return &PhaseScheduler{
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms fn to run after delay for the given room, replacing any
// pending timer for that room.
func (s *PhaseScheduler) Schedule(roomID string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.timers[roomID]; ok {
		prev.Stop()
	}

	log.Printf("[SCHEDULER] Arming timer for room %s in %s", roomID, delay)
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		// A callback that fired just before being replaced must not
		// clear the replacement's entry.
		if s.timers[roomID] == t {
			delete(s.timers, roomID)
		}
		s.mu.Unlock()
		fn()
	})
	s.timers[roomID] = t
}

// Cancel stops the pending timer for a room, if any. Used when a room is
// deleted; a timer that already fired is absorbed by the phase guard.
func (s *PhaseScheduler) Cancel(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[roomID]; ok {
		t.Stop()
		delete(s.timers, roomID)
	}
}

// Pending reports whether a timer is currently armed for the room.
func (s *PhaseScheduler) Pending(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[roomID]
	return ok
}
