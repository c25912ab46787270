package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/DeafMist/federal-archive/backend/internal/auth"
	"github.com/DeafMist/federal-archive/backend/internal/models"
)

func newAuthenticator(t *testing.T) *auth.Authenticator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return auth.NewAuthenticator(auth.Options{
		AdminEmail:        "admin@archive.gov",
		AdminPasswordHash: string(hash),
		SigningKey:        "k",
	})
}

// silentProvider never reports an identity, keeping a controller Unknown.
type silentProvider struct{}

func (silentProvider) OnStateChange(func(*auth.Identity)) func() { return func() {} }
func (silentProvider) SignInAnonymous(context.Context) (auth.Identity, error) {
	return auth.Identity{}, errors.New("offline")
}
func (silentProvider) SignInWithPassword(context.Context, string, string) (auth.Identity, error) {
	return auth.Identity{}, errors.New("offline")
}
func (silentProvider) SignOut(context.Context) error { return nil }
func (silentProvider) Restore(auth.Identity) {}

func TestUnknownSessionShowsLoadingAndRefusesQueries(t *testing.T) {
	c := NewController("s1", silentProvider{}, nil)
	require.Equal(t, StateUnknown, c.State())
	require.Equal(t, AdminLoading, c.AdminView())

	_, err := c.RequireReady()
	require.ErrorIs(t, err, models.ErrNotReady)
	_, err = c.RequireAdmin()
	require.ErrorIs(t, err, models.ErrNotReady)
}

func TestAnonymousOnAdminRouteGetsLogin(t *testing.T) {
	c := NewController("s1", newAuthenticator(t).NewClient(), nil)
	require.NoError(t, c.Bootstrap(context.Background()))

	require.Equal(t, StateAnonymous, c.State())
	require.Equal(t, AdminLogin, c.AdminView())
	_, err := c.RequireAdmin()
	require.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestWrongPasswordKeepsLoginAndReturnsProviderMessage(t *testing.T) {
	c := NewController("s1", newAuthenticator(t).NewClient(), nil)
	ctx := context.Background()
	require.NoError(t, c.Bootstrap(ctx))

	err := c.Login(ctx, "admin@archive.gov", "wrong")
	require.EqualError(t, err, auth.CodeInvalidCredential)
	require.Equal(t, AdminLogin, c.AdminView())
}

func TestLoginLogoutCycle(t *testing.T) {
	c := NewController("s1", newAuthenticator(t).NewClient(), nil)
	ctx := context.Background()
	require.NoError(t, c.Bootstrap(ctx))
	anon := c.Identity().UID

	require.NoError(t, c.Login(ctx, "admin@archive.gov", "s3cret"))
	require.Equal(t, StateAuthenticated, c.State())
	require.Equal(t, AdminPanel, c.AdminView())
	_, err := c.RequireAdmin()
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))
	require.Equal(t, StateAnonymous, c.State())
	require.NotEqual(t, anon, c.Identity().UID)
}

func TestSubscriptionsTornDownOnIdentitySwitch(t *testing.T) {
	c := NewController("s1", newAuthenticator(t).NewClient(), nil)
	ctx := context.Background()
	require.NoError(t, c.Bootstrap(ctx))
	require.NoError(t, c.Login(ctx, "admin@archive.gov", "s3cret"))

	var stopped atomic.Int32
	c.Track(func() { stopped.Add(1) })
	c.Track(func() { stopped.Add(1) })
	require.Equal(t, 2, c.Subscriptions())

	require.NoError(t, c.Logout(ctx))
	require.EqualValues(t, 2, stopped.Load())
	require.Zero(t, c.Subscriptions())
}

func TestReleaseAndCloseRunUnsubscribeOnce(t *testing.T) {
	c := NewController("s1", newAuthenticator(t).NewClient(), nil)
	require.NoError(t, c.Bootstrap(context.Background()))

	var stopped atomic.Int32
	release := c.Track(func() { stopped.Add(1) })
	release()
	release()
	require.EqualValues(t, 1, stopped.Load())

	c.Track(func() { stopped.Add(1) })
	c.Close()
	c.Close()
	require.EqualValues(t, 2, stopped.Load())

	c.Track(func() { stopped.Add(1) })
	require.EqualValues(t, 3, stopped.Load())
}

func TestSequencerSupersedes(t *testing.T) {
	s := NewSequencer()

	ctx1, first := s.Begin(context.Background(), "federal-laws")
	ctx2, second := s.Begin(context.Background(), "federal-laws")
	_, other := s.Begin(context.Background(), "home")

	require.Greater(t, second, first)
	require.ErrorIs(t, ctx1.Err(), context.Canceled)
	require.NoError(t, ctx2.Err())
	require.False(t, s.Current("federal-laws", first))
	require.True(t, s.Current("federal-laws", second))
	require.True(t, s.Current("home", other))

	s.End("federal-laws", second)
	require.ErrorIs(t, ctx2.Err(), context.Canceled)
	require.True(t, s.Current("federal-laws", second))
}

func TestRegistryCreateResumeRemove(t *testing.T) {
	a := newAuthenticator(t)
	r := NewRegistry(func() Provider { return a.NewClient() }, 0, nil)

	c, err := r.Create(context.Background())
	require.NoError(t, err)
	require.Same(t, c, r.Resume(c.ID(), auth.Identity{UID: "ignored", Anonymous: true}))

	resumed := r.Resume("from-token", auth.Identity{UID: auth.AdminUID("admin@archive.gov"), Email: "admin@archive.gov"})
	require.Equal(t, StateAuthenticated, resumed.State())
	require.Same(t, resumed, r.Resume("from-token", auth.Identity{UID: "ignored", Anonymous: true}))
	require.Equal(t, 2, r.Len())

	r.Remove(c.ID())
	require.Equal(t, 1, r.Len())
	require.Zero(t, r.Sweep())

	r.CloseAll()
	require.Zero(t, r.Len())
}

func TestRegistrySweepEvictsIdleSessions(t *testing.T) {
	a := newAuthenticator(t)
	r := NewRegistry(func() Provider { return a.NewClient() }, time.Minute, nil)
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	idle, err := r.Create(context.Background())
	require.NoError(t, err)
	busy, err := r.Create(context.Background())
	require.NoError(t, err)
	anon, err := busy.RequireReady()
	require.NoError(t, err)
	streaming, err := r.Create(context.Background())
	require.NoError(t, err)

	var released atomic.Int32
	streaming.Track(func() { released.Add(1) })

	clock = clock.Add(50 * time.Second)
	r.Resume(busy.ID(), auth.Identity{})
	require.Zero(t, r.Sweep())

	clock = clock.Add(30 * time.Second)
	require.Equal(t, 1, r.Sweep())
	require.Equal(t, 2, r.Len())
	var ranAtOnce atomic.Bool
	idle.Track(func() { ranAtOnce.Store(true) })
	require.True(t, ranAtOnce.Load())

	clock = clock.Add(2 * time.Minute)
	require.Equal(t, 1, r.Sweep())
	require.Equal(t, 1, r.Len())
	require.Zero(t, released.Load())

	fresh := r.Resume(busy.ID(), anon)
	require.NotSame(t, busy, fresh)
	require.Equal(t, StateAnonymous, fresh.State())
}

func TestRegistryRunStopsWithContext(t *testing.T) {
	a := newAuthenticator(t)
	r := NewRegistry(func() Provider { return a.NewClient() }, time.Nanosecond, nil)
	_, err := r.Create(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	<-done
}
