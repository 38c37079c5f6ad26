// Package property is the client-side access layer for property records:
// CRUD and search against the backend, plus a local read-through cache.
package property

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/renthub/renthub-go/internal/api"
	"github.com/renthub/renthub-go/internal/apierr"
	"github.com/renthub/renthub-go/internal/model"
	"github.com/renthub/renthub-go/internal/session"
)

// Filters is the search query surface. Zero values mean "no constraint",
// matching how the backend treats absent parameters. A search is stateless
// and re-issuable: the same filters yield the same results absent
// server-side changes.
type Filters struct {
	MinPrice  float64
	MaxPrice  float64
	Bedrooms  int
	Bathrooms int
	Lat       float64
	Lng       float64
	Radius    float64
}

// Encode renders the filters as the backend's flat query string.
func (f Filters) Encode() string {
	params := url.Values{}
	if f.MinPrice > 0 {
		params.Set("minPrice", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		params.Set("maxPrice", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.Bedrooms > 0 {
		params.Set("bedrooms", strconv.Itoa(f.Bedrooms))
	}
	if f.Bathrooms > 0 {
		params.Set("bathrooms", strconv.Itoa(f.Bathrooms))
	}
	if f.Lat != 0 || f.Lng != 0 {
		params.Set("lat", strconv.FormatFloat(f.Lat, 'f', -1, 64))
		params.Set("lng", strconv.FormatFloat(f.Lng, 'f', -1, 64))
		if f.Radius > 0 {
			params.Set("radius", strconv.FormatFloat(f.Radius, 'f', -1, 64))
		}
	}
	return params.Encode()
}

// Repository fetches, creates, and updates property records. Every operation
// requires a live session; an absent or expired token fails with an
// authentication error before any network round-trip so the UI redirects to
// sign-in rather than showing "not found".
type Repository struct {
	client   *api.Client
	sessions *session.Context
	cache    *Cache
	log      *slog.Logger
}

// New creates a Repository. cache may be nil to disable local caching.
func New(client *api.Client, sessions *session.Context, cache *Cache) *Repository {
	return &Repository{client: client, sessions: sessions, cache: cache, log: slog.Default()}
}

func (r *Repository) Create(ctx context.Context, in model.PropertyInput) (model.Property, error) {
	if err := r.sessions.RequireToken(); err != nil {
		return model.Property{}, err
	}
	if in.Title == "" {
		return model.Property{}, apierr.Validation("title is required")
	}
	if in.Price <= 0 {
		return model.Property{}, apierr.Validation("price must be positive")
	}

	var p model.Property
	if err := r.client.Post(ctx, "/properties", in, &p); err != nil {
		return model.Property{}, err
	}
	r.cachePut(p)
	return p, nil
}

func (r *Repository) Update(ctx context.Context, id string, upd model.PropertyUpdate) (model.Property, error) {
	if err := r.sessions.RequireToken(); err != nil {
		return model.Property{}, err
	}
	if id == "" {
		return model.Property{}, apierr.Validation("property id is required")
	}

	var p model.Property
	if err := r.client.Put(ctx, "/properties/"+id, upd, &p); err != nil {
		return model.Property{}, err
	}
	r.cachePut(p)
	return p, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.sessions.RequireToken(); err != nil {
		return err
	}
	if id == "" {
		return apierr.Validation("property id is required")
	}
	if err := r.client.Delete(ctx, "/properties/"+id); err != nil {
		return err
	}
	if r.cache != nil {
		if err := r.cache.Delete(id); err != nil {
			r.log.Warn("failed to evict deleted property from cache", "property_id", id, "error", err)
		}
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (model.Property, error) {
	if err := r.sessions.RequireToken(); err != nil {
		return model.Property{}, err
	}
	if id == "" {
		return model.Property{}, apierr.Validation("property id is required")
	}

	var p model.Property
	if err := r.client.Get(ctx, "/properties/"+id, &p); err != nil {
		return model.Property{}, err
	}
	r.cachePut(p)
	return p, nil
}

// GetForOwner lists the caller's own properties (landlord home screen).
func (r *Repository) GetForOwner(ctx context.Context) ([]model.Property, error) {
	if err := r.sessions.RequireToken(); err != nil {
		return nil, err
	}
	var props []model.Property
	if err := r.client.Get(ctx, "/properties/landlord", &props); err != nil {
		return nil, err
	}
	r.cachePutAll(props)
	return props, nil
}

func (r *Repository) Search(ctx context.Context, f Filters) ([]model.Property, error) {
	if err := r.sessions.RequireToken(); err != nil {
		return nil, err
	}
	path := "/properties"
	if q := f.Encode(); q != "" {
		path += "?" + q
	}
	var props []model.Property
	if err := r.client.Get(ctx, path, &props); err != nil {
		return nil, err
	}
	r.cachePutAll(props)
	return props, nil
}

// CachedByID returns the last-known local copy without touching the network.
func (r *Repository) CachedByID(id string) (model.Property, bool, error) {
	if r.cache == nil {
		return model.Property{}, false, nil
	}
	return r.cache.Get(id)
}

func (r *Repository) cachePut(p model.Property) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Put(p); err != nil {
		r.log.Warn("failed to cache property", "property_id", p.ID, "error", err)
	}
}

func (r *Repository) cachePutAll(props []model.Property) {
	if r.cache == nil {
		return
	}
	if err := r.cache.PutAll(props); err != nil {
		r.log.Warn("failed to cache properties", "count", len(props), "error", err)
	}
}
