package model

import "time"

// Property is a rental listing. The backend owns it; the client holds
// read-through cached copies with no local mutation authority.
type Property struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Address     string    `json:"address"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	Images      []string  `json:"images"`
	OwnerID     string    `json:"ownerId"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PropertyInput is the payload for creating a listing.
type PropertyInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Address     string   `json:"address"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Images      []string `json:"images,omitempty"`
}

// PropertyUpdate carries a partial update; nil fields are left unchanged by
// the backend.
type PropertyUpdate struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Bedrooms    *int     `json:"bedrooms,omitempty"`
	Bathrooms   *int     `json:"bathrooms,omitempty"`
	Images      []string `json:"images,omitempty"`
	Available   *bool    `json:"available,omitempty"`
}
