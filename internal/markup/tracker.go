package markup

import "sync"

// Tracker owns the per-room status cache. Entries are created on first use
// and never expire.
type Tracker struct {
	mu    sync.Mutex
	cache map[string]Status
}

func NewTracker() *Tracker {
	return &Tracker{cache: map[string]Status{}}
}

// Convert converts raw output for room against its cached status. The
// returned status is not remembered until it is passed to Commit.
func (t *Tracker) Convert(room, raw string) (*Document, Status) {
	t.mu.Lock()
	prev := t.cache[room]
	t.mu.Unlock()

	return Convert(raw, prev)
}

// Commit remembers status as the last one shown in room.
func (t *Tracker) Commit(room string, status Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cache[room] = status
}

// Status returns the cached status for room.
func (t *Tracker) Status(room string) (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.cache[room]
	return s, ok
}
