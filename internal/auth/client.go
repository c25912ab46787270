package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Client is one session's handle on the provider. Identity changes are announced
// to OnStateChange listeners; nil means signed out.
type Client struct {
	auth *Authenticator

	mu        sync.Mutex
	listeners map[int]func(*Identity)
	next      int
}

// OnStateChange registers fn for identity changes and returns a function removing it.
func (c *Client) OnStateChange(fn func(*Identity)) func() {
	c.mu.Lock()
	id := c.next
	c.next++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// SignInAnonymous signs in as a fresh anonymous identity.
func (c *Client) SignInAnonymous(ctx context.Context) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	id := Identity{UID: uuid.NewString(), Anonymous: true}
	c.set(&id)
	return id, nil
}

// SignInWithPassword signs in as the administrator. On failure the identity is left
// unchanged and the error carries the provider code.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	id, err := c.auth.CheckPassword(email, password)
	if err != nil {
		return Identity{}, err
	}
	c.set(&id)
	return id, nil
}

// SignOut clears the identity.
func (c *Client) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.set(nil)
	return nil
}

// Restore reinstates an identity recovered from a verified session token.
func (c *Client) Restore(id Identity) {
	c.set(&id)
}

func (c *Client) set(id *Identity) {
	c.mu.Lock()
	listeners := make([]func(*Identity), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		var snapshot *Identity
		if id != nil {
			cp := *id
			snapshot = &cp
		}
		fn(snapshot)
	}
}
