package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/renthub/renthub-go/internal/apierr"
	"github.com/renthub/renthub-go/internal/model"
)

var errNoRemote = errors.New("no authentication backend configured")

// AuthAPI is the remote authentication boundary.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (model.Session, error)
	Register(ctx context.Context, in model.RegisterInput) (model.Session, error)
	// Invalidate revokes the current token server-side. Best-effort from the
	// client's point of view.
	Invalidate(ctx context.Context) error
}

// storage is the slice of Store the Context depends on.
type storage interface {
	Save(sess model.Session) error
	Load() (model.Session, bool, error)
	Clear() error
}

// Context is the single in-process authority for "who is logged in". All
// reads and writes of the persisted session go through it; no other
// component touches the Store.
type Context struct {
	mu      sync.Mutex
	current *model.Session
	loadGen uint64
	store   storage
	remote  AuthAPI
	subs    []chan *model.Session
	log     *slog.Logger
	now     func() time.Time
}

// NewContext creates a Context over the given store. remote may be nil when
// no backend is reachable (then SignIn/SignUp/SignOut skip remote calls).
func NewContext(store *Store, remote AuthAPI) *Context {
	return newContext(store, remote)
}

func newContext(store storage, remote AuthAPI) *Context {
	return &Context{
		store:  store,
		remote: remote,
		log:    slog.Default(),
		now:    time.Now,
	}
}

// Current returns the in-memory session, or nil before any load or sign-in.
func (c *Context) Current() *model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Token implements api.TokenFunc. It returns "" when no session is held.
func (c *Context) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ""
	}
	return c.current.Token
}

// RequireToken fails with an authentication error when no session is held or
// the held token is already past its expiry. Repositories call this before
// issuing authenticated requests so an expired session redirects to sign-in
// instead of surfacing as not-found.
func (c *Context) RequireToken() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.Token == "" {
		return apierr.Authentication("not signed in")
	}
	if tokenExpired(c.current.Token, c.now()) {
		return apierr.Authentication("session expired, please sign in again")
	}
	return nil
}

// LoadFromStore reads the persisted session and publishes it as the current
// one. Safe to call concurrently and repeatedly (app start, explicit
// refresh): each call takes a generation number, and a resolution is
// discarded unless its generation is still the newest, so a slow stale read
// never overwrites a fresher result. Store failures resolve to "no session"
// and are not returned as sign-in denials.
func (c *Context) LoadFromStore(ctx context.Context) error {
	c.mu.Lock()
	c.loadGen++
	gen := c.loadGen
	c.mu.Unlock()

	type result struct {
		sess model.Session
		ok   bool
		err  error
	}
	done := make(chan result, 1)
	go func() {
		sess, ok, err := c.store.Load()
		done <- result{sess, ok, err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-done:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.loadGen {
		// A newer load or an explicit SetSession superseded this read.
		c.log.Debug("discarding stale session load", "generation", gen)
		return nil
	}
	if res.err != nil {
		c.log.Warn("session store unreadable, treating session as unknown", "error", res.err)
		c.publishLocked(nil)
		return res.err
	}
	if !res.ok {
		c.publishLocked(nil)
		return nil
	}
	sess := res.sess
	c.publishLocked(&sess)
	return nil
}

// SetSession is the authoritative local update after sign-in, sign-up, or
// sign-out. It supersedes any in-flight LoadFromStore.
func (c *Context) SetSession(sess *model.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadGen++
	c.publishLocked(sess)
}

// Subscribe returns a channel that receives every published session change.
// Slow subscribers drop intermediate updates rather than block publishers.
func (c *Context) Subscribe() <-chan *model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan *model.Session, 16)
	c.subs = append(c.subs, ch)
	return ch
}

func (c *Context) publishLocked(sess *model.Session) {
	c.current = sess
	for _, ch := range c.subs {
		select {
		case ch <- sess:
		default:
			c.log.Warn("dropping session update for slow subscriber")
		}
	}
}

// SignIn authenticates against the backend, persists the session, and
// publishes it. A persistence failure is logged but does not fail the
// sign-in: the in-memory session is still established and the user simply
// signs in again next launch.
func (c *Context) SignIn(ctx context.Context, email, password string) (model.Session, error) {
	if email == "" || password == "" {
		return model.Session{}, apierr.Validation("email and password are required")
	}
	if c.remote == nil {
		return model.Session{}, apierr.Network(errNoRemote)
	}
	sess, err := c.remote.Login(ctx, email, password)
	if err != nil {
		return model.Session{}, err
	}
	c.establish(sess)
	return sess, nil
}

// SignUp registers a new account and establishes its session, same contract
// as SignIn.
func (c *Context) SignUp(ctx context.Context, in model.RegisterInput) (model.Session, error) {
	if in.Email == "" || in.Password == "" {
		return model.Session{}, apierr.Validation("email and password are required")
	}
	if !in.Role.Valid() {
		return model.Session{}, apierr.Validation("userType must be landlord or tenant")
	}
	if c.remote == nil {
		return model.Session{}, apierr.Network(errNoRemote)
	}
	sess, err := c.remote.Register(ctx, in)
	if err != nil {
		return model.Session{}, err
	}
	c.establish(sess)
	return sess, nil
}

func (c *Context) establish(sess model.Session) {
	if err := c.store.Save(sess); err != nil {
		c.log.Warn("failed to persist session, identity will not survive restart", "error", err)
	}
	c.SetSession(&sess)
}

// SignOut invalidates the session remotely, clears the store, and drops the
// in-memory session, in that order. Remote failure is the one place errors
// are deliberately swallowed: local logout must always succeed, the user is
// never left stuck signed in by a network failure.
func (c *Context) SignOut(ctx context.Context) error {
	if c.remote != nil {
		if err := c.remote.Invalidate(ctx); err != nil {
			c.log.Warn("remote sign-out failed, clearing local session anyway", "error", err)
		}
	}
	err := c.store.Clear()
	if err != nil {
		c.log.Warn("failed to clear session store", "error", err)
	}
	c.SetSession(nil)
	return err
}
