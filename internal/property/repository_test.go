package property

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/renthub/renthub-go/internal/api"
	"github.com/renthub/renthub-go/internal/api/apitest"
	"github.com/renthub/renthub-go/internal/apierr"
	"github.com/renthub/renthub-go/internal/model"
	"github.com/renthub/renthub-go/internal/session"
)

type fixture struct {
	repo     *Repository
	sessions *session.Context
	backend  *apitest.Server
}

func newFixture(t *testing.T, role model.Role) *fixture {
	t.Helper()

	backend := apitest.NewServer()
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)

	sessions := session.NewContext(session.NewStore(t.TempDir()), nil)
	client := api.New(ts.URL, sessions.Token)

	if role != "" {
		sess := backend.Register(model.RegisterInput{
			Email:    string(role) + "@example.com",
			Password: "pw",
			Role:     role,
		})
		sessions.SetSession(&sess)
	}

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("opening cache failed: %v", err)
	}

	return &fixture{
		repo:     New(client, sessions, cache),
		sessions: sessions,
		backend:  backend,
	}
}

func listingInput() model.PropertyInput {
	return model.PropertyInput{
		Title:       "Sunny flat",
		Description: "Two rooms near the park",
		Price:       1200,
		Address:     "12 Park Lane",
		Bedrooms:    2,
		Bathrooms:   1,
	}
}

func TestRepository_RequiresSession(t *testing.T) {
	f := newFixture(t, "")

	_, err := f.repo.Search(context.Background(), Filters{})
	if !apierr.IsAuthentication(err) {
		t.Errorf("expected authentication error without a session, got %v", err)
	}

	_, err = f.repo.GetByID(context.Background(), "p1")
	if !apierr.IsAuthentication(err) {
		t.Errorf("expected authentication error without a session, got %v", err)
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	f := newFixture(t, model.RoleLandlord)
	ctx := context.Background()

	created, err := f.repo.Create(ctx, listingInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" || !created.Available {
		t.Fatalf("unexpected created property: %+v", created)
	}

	got, err := f.repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Sunny flat" || got.Price != 1200 {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestRepository_CreateValidation(t *testing.T) {
	f := newFixture(t, model.RoleLandlord)

	_, err := f.repo.Create(context.Background(), model.PropertyInput{Price: 900})
	if !apierr.IsValidation(err) {
		t.Errorf("expected validation error without a title, got %v", err)
	}

	_, err = f.repo.Create(context.Background(), model.PropertyInput{Title: "x"})
	if !apierr.IsValidation(err) {
		t.Errorf("expected validation error without a price, got %v", err)
	}
}

func TestRepository_TenantCannotCreate(t *testing.T) {
	f := newFixture(t, model.RoleTenant)

	_, err := f.repo.Create(context.Background(), listingInput())
	if !apierr.IsAuthentication(err) {
		t.Errorf("expected the server's role rejection to surface as an auth error, got %v", err)
	}
}

func TestRepository_PartialUpdate(t *testing.T) {
	f := newFixture(t, model.RoleLandlord)
	ctx := context.Background()

	created, err := f.repo.Create(ctx, listingInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newPrice := 1350.0
	updated, err := f.repo.Update(ctx, created.ID, model.PropertyUpdate{Price: &newPrice})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Price != 1350 {
		t.Errorf("expected updated price 1350, got %v", updated.Price)
	}
	if updated.Title != created.Title {
		t.Errorf("untouched field changed: %q -> %q", created.Title, updated.Title)
	}
}

func TestRepository_DeleteEvicts(t *testing.T) {
	f := newFixture(t, model.RoleLandlord)
	ctx := context.Background()

	created, err := f.repo.Create(ctx, listingInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := f.repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = f.repo.GetByID(ctx, created.ID)
	if !apierr.IsNotFound(err) {
		t.Errorf("expected not-found after delete, got %v", err)
	}

	_, ok, err := f.repo.CachedByID(created.ID)
	if err != nil {
		t.Fatalf("CachedByID failed: %v", err)
	}
	if ok {
		t.Error("expected the deleted property to be evicted from the cache")
	}
}

func TestRepository_SearchFilters(t *testing.T) {
	f := newFixture(t, model.RoleLandlord)
	ctx := context.Background()

	cheap := listingInput()
	cheap.Title = "Cheap studio"
	cheap.Price = 700
	cheap.Bedrooms = 1
	if _, err := f.repo.Create(ctx, cheap); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := f.repo.Create(ctx, listingInput()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	results, err := f.repo.Search(ctx, Filters{MinPrice: 1000})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Sunny flat" {
		t.Errorf("expected only the expensive listing, got %+v", results)
	}

	// Identical filters re-issued yield the same result set.
	again, err := f.repo.Search(ctx, Filters{MinPrice: 1000})
	if err != nil {
		t.Fatalf("second Search failed: %v", err)
	}
	if len(again) != len(results) || again[0].ID != results[0].ID {
		t.Errorf("search is not stably re-issuable: %+v vs %+v", results, again)
	}
}

func TestRepository_GetForOwner(t *testing.T) {
	f := newFixture(t, model.RoleLandlord)
	ctx := context.Background()

	other := f.backend.Register(model.RegisterInput{
		Email:    "other@example.com",
		Password: "pw",
		Role:     model.RoleLandlord,
	})
	f.backend.AddProperty(other.User.ID, listingInput())

	created, err := f.repo.Create(ctx, listingInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	mine, err := f.repo.GetForOwner(ctx)
	if err != nil {
		t.Fatalf("GetForOwner failed: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != created.ID {
		t.Errorf("expected exactly my one listing, got %+v", mine)
	}
}

func TestRepository_CachePopulatedOnFetch(t *testing.T) {
	f := newFixture(t, model.RoleLandlord)
	ctx := context.Background()

	created, err := f.repo.Create(ctx, listingInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	cached, ok, err := f.repo.CachedByID(created.ID)
	if err != nil {
		t.Fatalf("CachedByID failed: %v", err)
	}
	if !ok {
		t.Fatal("expected the created property in the cache")
	}
	if cached.Title != created.Title || cached.Price != created.Price {
		t.Errorf("cache copy mismatch: %+v", cached)
	}
}

func TestFilters_Encode(t *testing.T) {
	f := Filters{MinPrice: 500, MaxPrice: 1500, Bedrooms: 2}
	got := f.Encode()
	want := "bedrooms=2&maxPrice=1500&minPrice=500"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if (Filters{}).Encode() != "" {
		t.Error("empty filters must encode to an empty query")
	}
}
