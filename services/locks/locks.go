package locks

import "sync"

// Registry hands out one mutex per room id. Every event handler and every
// timer callback serializes its read-modify-write of a room snapshot
// through that room's mutex; cross-room work stays independent.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		locks: make(map[string]*sync.Mutex),
	}
}

// Obtain returns the mutex for a room, creating it on first use.
func (r *Registry) Obtain(roomID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.locks[roomID]; ok {
		return l
	}
	l := &sync.Mutex{}
	r.locks[roomID] = l
	return l
}

// Forget drops a room's mutex after the room is deleted. Callers must not
// hold the mutex they are forgetting.
func (r *Registry) Forget(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locks, roomID)
}
