// Package shortlist keeps a tenant's saved-property set in sync with the
// backend. Membership changes are idempotent, and local state is updated in
// two phases: a speculative change applied immediately, then confirmed or
// rolled back when the server answers. Nothing is silently left speculative.
package shortlist

import (
	"context"
	"log/slog"
	"sync"

	"github.com/renthub/renthub-go/internal/api"
	"github.com/renthub/renthub-go/internal/apierr"
	"github.com/renthub/renthub-go/internal/model"
	"github.com/renthub/renthub-go/internal/session"
)

// Sync manages shortlist membership for the current tenant session.
type Sync struct {
	client   *api.Client
	sessions *session.Context

	mu    sync.Mutex
	owner string          // user ID the local state belongs to
	known map[string]bool // reconciled membership; absent key means unknown
}

func New(client *api.Client, sessions *session.Context) *Sync {
	return &Sync{
		client:   client,
		sessions: sessions,
		known:    make(map[string]bool),
	}
}

// Add shortlists a property. Adding an already-shortlisted property is a
// success: the server's conflict answer is folded into the idempotent
// contract, so two rapid taps arriving in either order both succeed.
func (s *Sync) Add(ctx context.Context, propertyID string) error {
	if err := s.sessions.RequireToken(); err != nil {
		return err
	}
	s.ensureOwner()
	if propertyID == "" {
		return apierr.Validation("property id is required")
	}

	restore := s.speculate(propertyID, true)

	err := s.client.Post(ctx, "/properties/"+propertyID+"/shortlist", nil, nil)
	if err != nil && !apierr.IsConflict(err) {
		restore()
		return err
	}
	return nil
}

// Remove deletes a property from the shortlist. Removing an absent entry is
// a success; the server's not-found answer is folded the same way.
func (s *Sync) Remove(ctx context.Context, propertyID string) error {
	if err := s.sessions.RequireToken(); err != nil {
		return err
	}
	s.ensureOwner()
	if propertyID == "" {
		return apierr.Validation("property id is required")
	}

	restore := s.speculate(propertyID, false)

	err := s.client.Delete(ctx, "/properties/"+propertyID+"/shortlist")
	if err != nil && !apierr.IsNotFound(err) {
		restore()
		return err
	}
	return nil
}

// IsShortlisted reports membership, consulting reconciled local state first
// and asking the server only when the answer is unknown.
func (s *Sync) IsShortlisted(ctx context.Context, propertyID string) (bool, error) {
	if err := s.sessions.RequireToken(); err != nil {
		return false, err
	}
	s.ensureOwner()
	if propertyID == "" {
		return false, apierr.Validation("property id is required")
	}

	s.mu.Lock()
	if present, ok := s.known[propertyID]; ok {
		s.mu.Unlock()
		return present, nil
	}
	s.mu.Unlock()

	err := s.client.Get(ctx, "/properties/"+propertyID+"/shortlist", nil)
	switch {
	case err == nil:
		s.record(propertyID, true)
		return true, nil
	case apierr.IsNotFound(err):
		s.record(propertyID, false)
		return false, nil
	default:
		return false, err
	}
}

// List fetches the full shortlist and resets local membership to match the
// server's answer.
func (s *Sync) List(ctx context.Context) ([]model.Property, error) {
	if err := s.sessions.RequireToken(); err != nil {
		return nil, err
	}
	s.ensureOwner()
	var props []model.Property
	if err := s.client.Get(ctx, "/properties/shortlisted", &props); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.known = make(map[string]bool, len(props))
	for _, p := range props {
		s.known[p.ID] = true
	}
	s.mu.Unlock()

	return props, nil
}

// Reset drops all local membership state, e.g. on sign-out.
func (s *Sync) Reset() {
	s.mu.Lock()
	s.owner = ""
	s.known = make(map[string]bool)
	s.mu.Unlock()
}

// ensureOwner drops local membership when the session identity has changed
// since the last call, so one account never answers from another account's
// state. Called after RequireToken, so a current session exists.
func (s *Sync) ensureOwner() {
	id := ""
	if sess := s.sessions.Current(); sess != nil {
		id = sess.User.ID
	}

	s.mu.Lock()
	if s.owner != id {
		s.owner = id
		s.known = make(map[string]bool)
	}
	s.mu.Unlock()
}

// speculate applies a local membership change and returns a rollback that
// restores the previous state (including "unknown").
func (s *Sync) speculate(propertyID string, present bool) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.known[propertyID]
	s.known[propertyID] = present
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if had {
			s.known[propertyID] = prev
		} else {
			delete(s.known, propertyID)
		}
		slog.Debug("rolled back speculative shortlist change", "property_id", propertyID)
	}
}

func (s *Sync) record(propertyID string, present bool) {
	s.mu.Lock()
	s.known[propertyID] = present
	s.mu.Unlock()
}
