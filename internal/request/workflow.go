// Package request manages the lifecycle of rental requests: tenant
// submission under the one-active-request rule, role-scoped listings, and
// the landlord-side status transition.
package request

import (
	"context"
	"log/slog"
	"sort"

	"github.com/renthub/renthub-go/internal/api"
	"github.com/renthub/renthub-go/internal/apierr"
	"github.com/renthub/renthub-go/internal/model"
	"github.com/renthub/renthub-go/internal/session"
)

// Workflow drives rental requests over the REST boundary.
type Workflow struct {
	client   *api.Client
	sessions *session.Context
	log      *slog.Logger
}

func New(client *api.Client, sessions *session.Context) *Workflow {
	return &Workflow{client: client, sessions: sessions, log: slog.Default()}
}

// Submit creates a rental request for a property. The duplicate check here
// is advisory: it catches the common case cheaply, but the server is the
// authority, and its 409 surfaces as the same conflict error when two
// submissions race.
func (w *Workflow) Submit(ctx context.Context, propertyID, message string) (model.RentalRequest, error) {
	if err := w.sessions.RequireToken(); err != nil {
		return model.RentalRequest{}, err
	}
	if propertyID == "" {
		return model.RentalRequest{}, apierr.Validation("property id is required")
	}
	if message == "" {
		return model.RentalRequest{}, apierr.Validation("message is required")
	}

	existing, err := w.ListForTenant(ctx)
	if err != nil {
		// The advisory check is best-effort; the server still enforces the
		// invariant on the create below.
		w.log.Debug("skipping local duplicate check", "error", err)
	}
	for _, req := range existing {
		if req.PropertyID == propertyID && req.Active() {
			return model.RentalRequest{}, apierr.Conflict("you already have an active request for this property")
		}
	}

	in := struct {
		PropertyID string `json:"propertyId"`
		Message    string `json:"message"`
	}{PropertyID: propertyID, Message: message}

	var created model.RentalRequest
	if err := w.client.Post(ctx, "/requests", in, &created); err != nil {
		return model.RentalRequest{}, err
	}
	return created, nil
}

// ListForTenant returns the caller's own requests, newest first.
func (w *Workflow) ListForTenant(ctx context.Context) ([]model.RentalRequest, error) {
	return w.list(ctx, "/requests/tenant")
}

// ListForLandlord returns requests against the caller's properties, newest
// first.
func (w *Workflow) ListForLandlord(ctx context.Context) ([]model.RentalRequest, error) {
	return w.list(ctx, "/requests/landlord")
}

func (w *Workflow) list(ctx context.Context, path string) ([]model.RentalRequest, error) {
	if err := w.sessions.RequireToken(); err != nil {
		return nil, err
	}
	var reqs []model.RentalRequest
	if err := w.client.Get(ctx, path, &reqs); err != nil {
		return nil, err
	}
	// Display ordering only, not a correctness invariant.
	sort.Slice(reqs, func(i, j int) bool {
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
	return reqs, nil
}

func (w *Workflow) GetByID(ctx context.Context, requestID string) (model.RentalRequest, error) {
	if err := w.sessions.RequireToken(); err != nil {
		return model.RentalRequest{}, err
	}
	if requestID == "" {
		return model.RentalRequest{}, apierr.Validation("request id is required")
	}
	var req model.RentalRequest
	if err := w.client.Get(ctx, "/requests/"+requestID, &req); err != nil {
		return model.RentalRequest{}, err
	}
	return req, nil
}

// UpdateStatus approves or rejects a pending request. Landlord-only; the
// backend enforces ownership.
func (w *Workflow) UpdateStatus(ctx context.Context, requestID string, status model.RequestStatus) (model.RentalRequest, error) {
	if err := w.sessions.RequireToken(); err != nil {
		return model.RentalRequest{}, err
	}
	if requestID == "" {
		return model.RentalRequest{}, apierr.Validation("request id is required")
	}
	if status != model.StatusApproved && status != model.StatusRejected {
		return model.RentalRequest{}, apierr.Validation("status must be approved or rejected")
	}

	in := struct {
		Status model.RequestStatus `json:"status"`
	}{Status: status}

	var updated model.RentalRequest
	if err := w.client.Put(ctx, "/requests/"+requestID+"/status", in, &updated); err != nil {
		return model.RentalRequest{}, err
	}
	return updated, nil
}
