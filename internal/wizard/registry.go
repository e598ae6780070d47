package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry holds the live sessions of the session API. Sessions idle for
// longer than the TTL are removed by Sweep.
type Registry struct {
	factory func() *Machine
	ttl     time.Duration

	mu       sync.Mutex
	sessions map[string]*session

	now func() time.Time
}

type session struct {
	machine  *Machine
	lastSeen time.Time
}

// NewRegistry creates an empty registry. factory builds the machine for
// each new session.
func NewRegistry(factory func() *Machine, ttl time.Duration) *Registry {
	return &Registry{
		factory:  factory,
		ttl:      ttl,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Create starts a new session and returns its id.
func (r *Registry) Create() (string, *Machine) {
	id := uuid.NewString()
	m := r.factory()

	r.mu.Lock()
	r.sessions[id] = &session{machine: m, lastSeen: r.now()}
	r.mu.Unlock()
	return id, m
}

// Get returns the session's machine and marks it as used.
func (r *Registry) Get(id string) (*Machine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	s.lastSeen = r.now()
	return s.machine, true
}

// Delete removes a session. It reports whether the session existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed. A non-positive TTL disables expiry.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				zap.L().Info("wizard: expired idle sessions", zap.Int("count", n), zap.Int("live", r.Len()))
			}
		}
	}
}
