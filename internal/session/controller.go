package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/DeafMist/federal-archive/backend/internal/auth"
	"github.com/DeafMist/federal-archive/backend/internal/logger"
	"github.com/DeafMist/federal-archive/backend/internal/models"
)

// State is the authentication state of a session.
type State int

const (
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{StateUnknown, StateAnonymous, StateAuthenticated} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", text)
}

// AdminView is what the admin route shows.
type AdminView string

const (
	AdminLoading AdminView = "loading"
	AdminLogin   AdminView = "login"
	AdminPanel   AdminView = "panel"
)

// Provider is the authentication provider as seen by one session.
type Provider interface {
	OnStateChange(fn func(*auth.Identity)) func()
	SignInAnonymous(ctx context.Context) (auth.Identity, error)
	SignInWithPassword(ctx context.Context, email, password string) (auth.Identity, error)
	SignOut(ctx context.Context) error
	Restore(id auth.Identity)
}

// Controller owns one client session: its identity, the subscriptions opened on its
// behalf and the sequencing of its panel requests. The identity is written only by
// the provider's state callback.
type Controller struct {
	id       string
	provider Provider
	log      *slog.Logger
	seq      *Sequencer

	mu       sync.Mutex
	state    State
	identity *auth.Identity
	subs     map[int]func()
	nextSub  int
	closed   bool

	stopObserving func()
}

// NewController attaches a controller to provider. It stays Unknown until the
// provider's first callback.
func NewController(id string, provider Provider, log *slog.Logger) *Controller {
	if log == nil {
		log = logger.Discard()
	}
	c := &Controller{
		id:       id,
		provider: provider,
		log:      log.With(slog.String("session", id)),
		seq:      NewSequencer(),
		subs:     map[int]func(){},
	}
	c.stopObserving = provider.OnStateChange(c.observe)
	return c
}

// ID is the session id.
func (c *Controller) ID() string { return c.id }

// Sequencer returns the session's panel request sequencer.
func (c *Controller) Sequencer() *Sequencer { return c.seq }

func (c *Controller) observe(identity *auth.Identity) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	prev := c.identity
	c.identity = identity
	switch {
	case identity == nil:
		c.state = StateUnknown
	case identity.Anonymous:
		c.state = StateAnonymous
	default:
		c.state = StateAuthenticated
	}

	var teardown []func()
	if prev != nil && (identity == nil || identity.UID != prev.UID) {
		teardown = c.drainLocked()
	}
	state := c.state
	c.mu.Unlock()

	for _, stop := range teardown {
		stop()
	}
	c.log.Debug("identity changed", slog.String("state", state.String()), slog.Int("released", len(teardown)))
}

func (c *Controller) drainLocked() []func() {
	out := make([]func(), 0, len(c.subs))
	for id, stop := range c.subs {
		out = append(out, stop)
		delete(c.subs, id)
	}
	return out
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Identity returns the current identity, or nil while Unknown.
func (c *Controller) Identity() *auth.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return nil
	}
	id := *c.identity
	return &id
}

// Bootstrap signs the session in anonymously, the way a fresh visitor starts.
func (c *Controller) Bootstrap(ctx context.Context) error {
	if _, err := c.provider.SignInAnonymous(ctx); err != nil {
		return fmt.Errorf("anonymous sign-in: %w", err)
	}
	return nil
}

// Resume reinstates an identity recovered from a verified token.
func (c *Controller) Resume(id auth.Identity) {
	c.provider.Restore(id)
}

// Login signs in with the administrator's credentials. A provider error is returned
// unchanged and leaves the session as it was.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	_, err := c.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		c.log.Info("admin login rejected", slog.String("reason", err.Error()))
		return err
	}
	c.log.Info("admin logged in")
	return nil
}

// Logout signs out and falls back to a new anonymous identity.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.provider.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return c.Bootstrap(ctx)
}

// AdminView decides what the admin route shows in the current state.
func (c *Controller) AdminView() AdminView {
	switch c.State() {
	case StateAuthenticated:
		return AdminPanel
	case StateAnonymous:
		return AdminLogin
	}
	return AdminLoading
}

// RequireReady refuses work while the identity is still Unknown.
func (c *Controller) RequireReady() (auth.Identity, error) {
	id := c.Identity()
	if id == nil {
		return auth.Identity{}, models.ErrNotReady
	}
	return *id, nil
}

// RequireAdmin refuses work unless the administrator is signed in.
func (c *Controller) RequireAdmin() (auth.Identity, error) {
	id, err := c.RequireReady()
	if err != nil {
		return auth.Identity{}, err
	}
	if id.Anonymous {
		return auth.Identity{}, models.ErrUnauthenticated
	}
	return id, nil
}

// Track registers a subscription's unsubscribe function. It runs when the identity
// switches, the session closes, or the returned release function is called,
// whichever comes first. A closed session runs it immediately.
func (c *Controller) Track(unsubscribe func()) (release func()) {
	var once sync.Once
	stop := func() { once.Do(unsubscribe) }

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		stop()
		return func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = stop
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
		stop()
	}
}

// Subscriptions reports how many tracked subscriptions are open.
func (c *Controller) Subscriptions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Close tears down every subscription and detaches from the provider.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	teardown := c.drainLocked()
	c.mu.Unlock()

	c.stopObserving()
	c.seq.CancelAll()
	for _, stop := range teardown {
		stop()
	}
}
