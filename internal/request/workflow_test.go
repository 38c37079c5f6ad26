package request

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/renthub/renthub-go/internal/api"
	"github.com/renthub/renthub-go/internal/api/apitest"
	"github.com/renthub/renthub-go/internal/apierr"
	"github.com/renthub/renthub-go/internal/model"
	"github.com/renthub/renthub-go/internal/session"
)

type fixture struct {
	backend  *apitest.Server
	tenant   *Workflow
	landlord *Workflow
	property model.Property
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := apitest.NewServer()
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)

	landlordSess := backend.Register(model.RegisterInput{
		Email: "owner@example.com", Password: "pw", Role: model.RoleLandlord,
	})
	tenantSess := backend.Register(model.RegisterInput{
		Email: "renter@example.com", Password: "pw", Role: model.RoleTenant,
	})

	prop := backend.AddProperty(landlordSess.User.ID, model.PropertyInput{
		Title: "Sunny flat", Price: 1200, Address: "12 Park Lane",
	})

	newWorkflow := func(sess model.Session) *Workflow {
		sessions := session.NewContext(session.NewStore(t.TempDir()), nil)
		sessions.SetSession(&sess)
		return New(api.New(ts.URL, sessions.Token), sessions)
	}

	return &fixture{
		backend:  backend,
		tenant:   newWorkflow(tenantSess),
		landlord: newWorkflow(landlordSess),
		property: prop,
	}
}

func TestSubmit_CreatesPendingRequest(t *testing.T) {
	f := newFixture(t)

	req, err := f.tenant.Submit(context.Background(), f.property.ID, "interested")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if req.Status != model.StatusPending {
		t.Errorf("expected pending, got %v", req.Status)
	}
	if req.PropertyID != f.property.ID {
		t.Errorf("request bound to wrong property: %+v", req)
	}
}

// A second submission while the first is pending must fail with a conflict,
// and the first request must be untouched.
func TestSubmit_DuplicateRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.tenant.Submit(ctx, f.property.ID, "interested")
	if err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	_, err = f.tenant.Submit(ctx, f.property.ID, "still interested")
	if !apierr.IsConflict(err) {
		t.Fatalf("expected conflict on duplicate submit, got %v", err)
	}

	reqs, err := f.tenant.ListForTenant(ctx)
	if err != nil {
		t.Fatalf("ListForTenant failed: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(reqs))
	}
	if reqs[0].ID != first.ID || reqs[0].Status != model.StatusPending {
		t.Errorf("first request disturbed: %+v", reqs[0])
	}
}

// Approved requests are still active and keep blocking resubmission;
// rejected ones do not.
func TestSubmit_ActiveStatusBlocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.tenant.Submit(ctx, f.property.ID, "interested")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	f.backend.SetRequestStatus(first.ID, model.StatusApproved)
	if _, err := f.tenant.Submit(ctx, f.property.ID, "again"); !apierr.IsConflict(err) {
		t.Errorf("expected conflict while approved, got %v", err)
	}

	f.backend.SetRequestStatus(first.ID, model.StatusRejected)
	if _, err := f.tenant.Submit(ctx, f.property.ID, "again"); err != nil {
		t.Errorf("expected resubmission after rejection to succeed, got %v", err)
	}
}

func TestSubmit_Validation(t *testing.T) {
	f := newFixture(t)

	if _, err := f.tenant.Submit(context.Background(), "", "hi"); !apierr.IsValidation(err) {
		t.Errorf("expected validation error for empty property id, got %v", err)
	}
	if _, err := f.tenant.Submit(context.Background(), f.property.ID, ""); !apierr.IsValidation(err) {
		t.Errorf("expected validation error for empty message, got %v", err)
	}
}

func TestSubmit_UnknownPropertyNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.tenant.Submit(context.Background(), "missing-id", "hi")
	if !apierr.IsNotFound(err) {
		t.Errorf("expected not-found for unknown property, got %v", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	second := f.backend.AddProperty(f.property.OwnerID, model.PropertyInput{
		Title: "Second flat", Price: 900,
	})

	base := time.Now()
	f.backend.SetNow(func() time.Time { return base })
	if _, err := f.tenant.Submit(ctx, f.property.ID, "first"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	f.backend.SetNow(func() time.Time { return base.Add(time.Minute) })
	if _, err := f.tenant.Submit(ctx, second.ID, "second"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	reqs, err := f.tenant.ListForTenant(ctx)
	if err != nil {
		t.Fatalf("ListForTenant failed: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected two requests, got %d", len(reqs))
	}
	if reqs[0].Message != "second" || reqs[1].Message != "first" {
		t.Errorf("expected newest first, got [%q, %q]", reqs[0].Message, reqs[1].Message)
	}
}

func TestListForLandlord_SeesIncomingRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submitted, err := f.tenant.Submit(ctx, f.property.ID, "interested")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	reqs, err := f.landlord.ListForLandlord(ctx)
	if err != nil {
		t.Fatalf("ListForLandlord failed: %v", err)
	}
	if len(reqs) != 1 || reqs[0].ID != submitted.ID {
		t.Errorf("expected the incoming request, got %+v", reqs)
	}
}

func TestUpdateStatus_LandlordApproves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submitted, err := f.tenant.Submit(ctx, f.property.ID, "interested")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	updated, err := f.landlord.UpdateStatus(ctx, submitted.ID, model.StatusApproved)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != model.StatusApproved {
		t.Errorf("expected approved, got %v", updated.Status)
	}

	got, err := f.tenant.GetByID(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != model.StatusApproved {
		t.Errorf("tenant view not updated: %v", got.Status)
	}
}

func TestUpdateStatus_RejectsInvalidTarget(t *testing.T) {
	f := newFixture(t)

	_, err := f.landlord.UpdateStatus(context.Background(), "r1", model.StatusPending)
	if !apierr.IsValidation(err) {
		t.Errorf("expected validation error for status pending, got %v", err)
	}
}

func TestUpdateStatus_TenantForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submitted, err := f.tenant.Submit(ctx, f.property.ID, "interested")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	_, err = f.tenant.UpdateStatus(ctx, submitted.ID, model.StatusApproved)
	if !apierr.IsAuthentication(err) {
		t.Errorf("expected the server's role rejection to surface as an auth error, got %v", err)
	}
}

func TestWorkflow_RequiresSession(t *testing.T) {
	backend := apitest.NewServer()
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)

	sessions := session.NewContext(session.NewStore(t.TempDir()), nil)
	w := New(api.New(ts.URL, sessions.Token), sessions)

	if _, err := w.Submit(context.Background(), "p1", "hi"); !apierr.IsAuthentication(err) {
		t.Errorf("expected authentication error without a session, got %v", err)
	}
	if _, err := w.ListForTenant(context.Background()); !apierr.IsAuthentication(err) {
		t.Errorf("expected authentication error without a session, got %v", err)
	}
}
