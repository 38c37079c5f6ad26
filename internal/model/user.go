package model

// Role is a user's fixed category, assigned at registration. It determines
// which workflows and which navigation graph apply; a role change requires a
// fresh account.
type Role string

const (
	RoleLandlord Role = "landlord"
	RoleTenant   Role = "tenant"
)

// Valid reports whether the role is one of the two known variants.
func (r Role) Valid() bool {
	return r == RoleLandlord || r == RoleTenant
}

// User represents the authenticated identity as the backend serializes it.
// The backend uses Mongo-style "_id" and calls the role "userType".
type User struct {
	ID          string `json:"_id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        Role   `json:"userType"`
}

// Session pairs an access token with the identity it authorizes. Owned by
// session.Context; the persisted copy in session.Store is a mirror, not a
// second authority.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterInput is the payload for POST /auth/register.
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        Role   `json:"userType"`
}

// LoginInput is the payload for POST /auth/login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
