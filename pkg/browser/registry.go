package browser

import "sync"

// registry tracks live sessions so a shutdown path can force-release
// every browser the process owns.
type registry struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
}

var defaultRegistry = &registry{sessions: make(map[*Session]struct{})}

func (r *registry) add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s] = struct{}{}
}

func (r *registry) remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s)
}

func (r *registry) snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// ReleaseAll force-releases every live session. Called by the shutdown
// coordinator; safe to race with normal Release since Release is
// idempotent.
func ReleaseAll() {
	for _, s := range defaultRegistry.snapshot() {
		s.Release()
	}
}

// ActiveSessions reports the number of live sessions. Mostly useful in
// tests asserting cleanup.
func ActiveSessions() int {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	return len(defaultRegistry.sessions)
}
