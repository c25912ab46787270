package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DeafMist/federal-archive/backend/internal/auth"
	"github.com/DeafMist/federal-archive/backend/internal/logger"
)

type entry struct {
	ctl      *Controller
	lastSeen time.Time
}

// Registry keeps the live controllers by session id. Controllers idle for longer than
// the idle TTL with no open subscriptions are evicted by Sweep; a later request with a
// valid token resumes them from its claims.
type Registry struct {
	newProvider func() Provider
	idle        time.Duration
	log         *slog.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry creates a registry building one provider per session. idle <= 0 keeps
// sessions until they are removed.
func NewRegistry(newProvider func() Provider, idle time.Duration, log *slog.Logger) *Registry {
	if log == nil {
		log = logger.Discard()
	}
	return &Registry{
		newProvider: newProvider,
		idle:        idle,
		log:         log,
		now:         time.Now,
		sessions:    map[string]*entry{},
	}
}

// Create opens a new anonymous session.
func (r *Registry) Create(ctx context.Context) (*Controller, error) {
	c := NewController(uuid.NewString(), r.newProvider(), r.log)
	if err := c.Bootstrap(ctx); err != nil {
		c.Close()
		return nil, err
	}

	r.mu.Lock()
	r.sessions[c.ID()] = &entry{ctl: c, lastSeen: r.now()}
	r.mu.Unlock()

	r.log.Debug("session created", slog.String("session", c.ID()))
	return c, nil
}

// Resume returns the controller of id, rebuilding it from identity when this process
// has not seen the session (after a restart, an eviction, or on another instance).
func (r *Registry) Resume(id string, identity auth.Identity) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[id]; ok {
		e.lastSeen = r.now()
		return e.ctl
	}

	c := NewController(id, r.newProvider(), r.log)
	c.Resume(identity)
	r.sessions[id] = &entry{ctl: c, lastSeen: r.now()}
	r.log.Debug("session resumed", slog.String("session", id))
	return c
}

// Remove closes and forgets a session.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		e.ctl.Close()
	}
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes the sessions that have been idle past the TTL and returns how many it
// evicted. A session with an open subscription is never idle.
func (r *Registry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}

	cutoff := r.now().Add(-r.idle)
	r.mu.Lock()
	var expired []*Controller
	for id, e := range r.sessions {
		if e.lastSeen.After(cutoff) {
			continue
		}
		if e.ctl.Subscriptions() > 0 {
			e.lastSeen = r.now()
			continue
		}
		expired = append(expired, e.ctl)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	if len(expired) > 0 {
		r.log.Debug("idle sessions evicted", slog.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps every interval until ctx ends.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// CloseAll closes every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Controller, 0, len(r.sessions))
	for id, e := range r.sessions {
		all = append(all, e.ctl)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
}
