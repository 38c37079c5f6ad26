// Package apitest provides an in-memory stand-in for the RentHub backend.
// It implements the full REST contract over chi so package tests can exercise
// the client stack against real HTTP, including the server-side invariants
// the client must not assume it can enforce alone: at most one active rental
// request per (tenant, property) pair, and unique shortlist entries.
package apitest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/renthub/renthub-go/internal/model"
)

type account struct {
	user     model.User
	password string
}

// Server holds the in-memory state behind the stub routes. Safe for
// concurrent use.
type Server struct {
	mu         sync.Mutex
	router     chi.Router
	accounts   map[string]*account          // email -> account
	tokens     map[string]string            // token -> email
	properties map[string]model.Property    // property id -> property
	requests   map[string]model.RentalRequest
	shortlists map[string]map[string]bool // user id -> property id set
	now        func() time.Time
}

func NewServer() *Server {
	s := &Server{
		accounts:   make(map[string]*account),
		tokens:     make(map[string]string),
		properties: make(map[string]model.Property),
		requests:   make(map[string]model.RentalRequest),
		shortlists: make(map[string]map[string]bool),
		now:        time.Now,
	}

	r := chi.NewRouter()
	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)

	r.Route("/properties", func(r chi.Router) {
		r.Get("/", s.handleSearch)
		r.Post("/", s.handleCreateProperty)
		r.Get("/landlord", s.handleOwnerProperties)
		r.Get("/shortlisted", s.handleShortlisted)
		r.Route("/{propertyID}", func(r chi.Router) {
			r.Get("/", s.handleGetProperty)
			r.Put("/", s.handleUpdateProperty)
			r.Delete("/", s.handleDeleteProperty)
			r.Post("/shortlist", s.handleShortlistAdd)
			r.Delete("/shortlist", s.handleShortlistRemove)
			r.Get("/shortlist", s.handleShortlistCheck)
		})
	})

	r.Route("/requests", func(r chi.Router) {
		r.Post("/", s.handleCreateRequest)
		r.Get("/tenant", s.handleTenantRequests)
		r.Get("/landlord", s.handleLandlordRequests)
		r.Get("/{requestID}", s.handleGetRequest)
		r.Put("/{requestID}/status", s.handleRequestStatus)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Register creates an account directly and returns its session, bypassing
// HTTP. Test setup helper.
func (s *Server) Register(in model.RegisterInput) model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register(in)
}

// SetNow overrides the clock used for created-at timestamps, so tests can
// assert display ordering.
func (s *Server) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// AddProperty inserts a listing directly, bypassing HTTP. Test setup helper.
func (s *Server) AddProperty(ownerID string, in model.PropertyInput) model.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Property{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Address:     in.Address,
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		Images:      in.Images,
		OwnerID:     ownerID,
		Available:   true,
		CreatedAt:   s.now(),
	}
	s.properties[p.ID] = p
	return p
}

// SetRequestStatus flips a request's status directly. Test setup helper for
// landlord-side transitions.
func (s *Server) SetRequestStatus(requestID string, status model.RequestStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req := s.requests[requestID]
	req.Status = status
	s.requests[requestID] = req
}

func (s *Server) register(in model.RegisterInput) model.Session {
	user := model.User{
		ID:          uuid.NewString(),
		Email:       in.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		PhoneNumber: in.PhoneNumber,
		Role:        in.Role,
	}
	s.accounts[in.Email] = &account{user: user, password: in.Password}
	token := "tok-" + uuid.NewString()
	s.tokens[token] = in.Email
	return model.Session{Token: token, User: user}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in model.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Email == "" || in.Password == "" {
		fail(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if !in.Role.Valid() {
		fail(w, http.StatusBadRequest, "userType must be landlord or tenant")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[in.Email]; exists {
		fail(w, http.StatusConflict, "email already registered")
		return
	}
	writeJSON(w, http.StatusCreated, s.register(in))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in model.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[in.Email]
	if !ok || acct.password != in.Password {
		fail(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	token := "tok-" + uuid.NewString()
	s.tokens[token] = in.Email
	writeJSON(w, http.StatusOK, model.Session{Token: token, User: acct.user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := bearer(r); ok {
		delete(s.tokens, token)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.caller(r)
	if !ok {
		fail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	if user.Role != model.RoleLandlord {
		fail(w, http.StatusForbidden, "only landlords can list properties")
		return
	}

	var in model.PropertyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Title == "" || in.Price <= 0 {
		fail(w, http.StatusBadRequest, "title and a positive price are required")
		return
	}

	p := model.Property{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Address:     in.Address,
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		Images:      in.Images,
		OwnerID:     user.ID,
		Available:   true,
		CreatedAt:   s.now(),
	}
	s.properties[p.ID] = p
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.caller(r)
	if !ok {
		fail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	p, ok := s.properties[chi.URLParam(r, "propertyID")]
	if !ok {
		fail(w, http.StatusNotFound, "property not found")
		return
	}
	if p.OwnerID != user.ID {
		fail(w, http.StatusForbidden, "not your property")
		return
	}

	var in model.PropertyUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Address != nil {
		p.Address = *in.Address
	}
	if in.Bedrooms != nil {
		p.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = *in.Bathrooms
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
	s.properties[p.ID] = p
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.caller(r)
	if !ok {
		fail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	p, ok := s.properties[chi.URLParam(r, "propertyID")]
	if !ok {
		fail(w, http.StatusNotFound, "property not found")
		return
	}
	if p.OwnerID != user.ID {
		fail(w, http.StatusForbidden, "not your property")
		return
	}
	delete(s.properties, p.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.caller(r); !ok {
		fail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	p, ok := s.properties[chi.URLParam(r, "propertyID")]
	if !ok {
		fail(w, http.StatusNotFound, "property not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleOwnerProperties(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.caller(r)
	if !ok {
		fail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	out := []model.Property{}
	for _, p := range s.properties {
		if p.OwnerID == user.ID {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.caller(r); !ok {
		fail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}

	q := r.URL.Query()
	minPrice := queryFloat(q.Get("minPrice"))
	maxPrice := queryFloat(q.Get("maxPrice"))
	bedrooms := queryInt(q.Get("bedrooms"))
	bathrooms := queryInt(q.Get("bathrooms"))

	out := []model.Property{}
	for _, p := range s.properties {
		if !p.Available {
			continue
		}
		if minPrice > 0 && p.Price < minPrice {
			continue
		}
		if maxPrice > 0 && p.Price > maxPrice {
			continue
		}
		if bedrooms > 0 && p.Bedrooms != bedrooms {
			continue
		}
		if bathrooms > 0 && p.Bathrooms != bathrooms {
			continue
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.caller(r)
	if !ok {
		fail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	if user.Role != model.RoleTenant {
		fail(w, http.StatusForbidden, "only tenants can request properties")
		return
	}

	var in struct {
		PropertyID string `json:"propertyId"`
		Message    string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, ok := s.properties[in.PropertyID]; !ok {
		fail(w, http.StatusNotFound, "property not found")
		return
	}
	for _, req := range s.requests {
		if req.TenantID == user.ID && req.PropertyID == in.PropertyID && req.Active() {
			fail(w, http.StatusConflict, "an active request already exists for this property")
			return
		}
	}

	req := model.RentalRequest{
		ID:         uuid.NewString(),
		PropertyID: in.PropertyID,
		TenantID:   user.ID,
		Message:    in.Message,
		Status:     model.StatusPending,
		CreatedAt:  s.now(),
	}
	s.requests[req.ID] = req
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleTenantRequests(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.caller(r)
	if !ok {
		fail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	out := []model.RentalRequest{}
	for _, req := range s.requests {
		if req.TenantID == user.ID {
			out = append(out, req)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLandlordRequests(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.caller(r)
	if !ok {
		fail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	out := []model.RentalRequest{}
	for _, req := range s.requests {
		if p, ok := s.properties[req.PropertyID]; ok && p.OwnerID == user.ID {
			out = append(out, req)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.caller(r)
	if !ok {
		fail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	req, ok := s.requests[chi.URLParam(r, "requestID")]
	if !ok {
		fail(w, http.StatusNotFound, "request not found")
		return
	}
	p := s.properties[req.PropertyID]
	if req.TenantID != user.ID && p.OwnerID != user.ID {
		fail(w, http.StatusForbidden, "not your request")
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleRequestStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.caller(r)
	if !ok {
		fail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	req, ok := s.requests[chi.URLParam(r, "requestID")]
	if !ok {
		fail(w, http.StatusNotFound, "request not found")
		return
	}
	p, ok := s.properties[req.PropertyID]
	if !ok || p.OwnerID != user.ID {
		fail(w, http.StatusForbidden, "only the property's landlord can update request status")
		return
	}

	var in struct {
		Status model.RequestStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Status != model.StatusApproved && in.Status != model.StatusRejected {
		fail(w, http.StatusBadRequest, "status must be approved or rejected")
		return
	}
	req.Status = in.Status
	s.requests[req.ID] = req
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleShortlistAdd(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.caller(r)
	if !ok {
		fail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	id := chi.URLParam(r, "propertyID")
	if _, ok := s.properties[id]; !ok {
		fail(w, http.StatusNotFound, "property not found")
		return
	}
	set := s.shortlists[user.ID]
	if set == nil {
		set = make(map[string]bool)
		s.shortlists[user.ID] = set
	}
	if set[id] {
		fail(w, http.StatusConflict, "property already shortlisted")
		return
	}
	set[id] = true
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleShortlistRemove(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.caller(r)
	if !ok {
		fail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	id := chi.URLParam(r, "propertyID")
	if !s.shortlists[user.ID][id] {
		fail(w, http.StatusNotFound, "property not shortlisted")
		return
	}
	delete(s.shortlists[user.ID], id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleShortlistCheck(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.caller(r)
	if !ok {
		fail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	if !s.shortlists[user.ID][chi.URLParam(r, "propertyID")] {
		fail(w, http.StatusNotFound, "property not shortlisted")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"shortlisted": true})
}

func (s *Server) handleShortlisted(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.caller(r)
	if !ok {
		fail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	out := []model.Property{}
	for id := range s.shortlists[user.ID] {
		if p, ok := s.properties[id]; ok {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// caller resolves the bearer token to its user. Must be called with s.mu
// held.
func (s *Server) caller(r *http.Request) (model.User, bool) {
	token, ok := bearer(r)
	if !ok {
		return model.User{}, false
	}
	email, ok := s.tokens[token]
	if !ok {
		return model.User{}, false
	}
	acct, ok := s.accounts[email]
	if !ok {
		return model.User{}, false
	}
	return acct.user, true
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(h, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func queryFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func queryInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
