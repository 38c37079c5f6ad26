// Package router selects which top-level navigation graph is active for the
// current session.
package router

import (
	"context"
	"log/slog"
	"sync"

	"github.com/renthub/renthub-go/internal/model"
)

// State is the active navigation graph.
type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateLandlord
	StateTenant
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateLandlord:
		return "landlord"
	case StateTenant:
		return "tenant"
	default:
		return "unknown"
	}
}

// SessionSource is the slice of session.Context the router needs.
type SessionSource interface {
	LoadFromStore(ctx context.Context) error
	Current() *model.Session
}

// Root is the top-level routing state machine. It starts in Loading, leaves
// Loading exactly once when Resolve completes (a failed load resolves to
// Unauthenticated), and afterwards moves between the three terminal states
// only through Apply, driven by explicit session changes. There is no
// transition back into Loading.
type Root struct {
	mu       sync.Mutex
	state    State
	resolved bool
	sessions SessionSource
	log      *slog.Logger
}

func New(sessions SessionSource) *Root {
	return &Root{state: StateLoading, sessions: sessions, log: slog.Default()}
}

func (r *Root) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Resolve performs the one-time transition out of Loading by reading the
// persisted session. Idempotent: later calls return the current state
// without reloading.
func (r *Root) Resolve(ctx context.Context) State {
	r.mu.Lock()
	if r.resolved {
		defer r.mu.Unlock()
		return r.state
	}
	r.mu.Unlock()

	if err := r.sessions.LoadFromStore(ctx); err != nil {
		r.log.Warn("session load failed, routing to sign-in", "error", err)
	}
	sess := r.sessions.Current()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.resolved {
		r.resolved = true
		r.state = stateFor(sess)
	}
	return r.state
}

// Apply moves between terminal states on an explicit session change
// (sign-in, sign-up, sign-out). Ignored while still Loading; Resolve owns
// that transition.
func (r *Root) Apply(sess *model.Session) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.resolved {
		return r.state
	}
	r.state = stateFor(sess)
	return r.state
}

// Watch drives Apply from a session.Context subscription until ctx is done.
func (r *Root) Watch(ctx context.Context, updates <-chan *model.Session) {
	for {
		select {
		case <-ctx.Done():
			return
		case sess, ok := <-updates:
			if !ok {
				return
			}
			r.Apply(sess)
		}
	}
}

// stateFor is the single decision point mapping a session to a graph. The
// role switch is exhaustive: anything but the two known roles routes to
// sign-in rather than guessing.
func stateFor(sess *model.Session) State {
	if sess == nil {
		return StateUnauthenticated
	}
	switch sess.User.Role {
	case model.RoleLandlord:
		return StateLandlord
	case model.RoleTenant:
		return StateTenant
	default:
		return StateUnauthenticated
	}
}
