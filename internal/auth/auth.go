// Package auth wraps the backend's authentication endpoints. It holds no
// state of its own; session.Context owns the resulting identity.
package auth

import (
	"context"

	"github.com/renthub/renthub-go/internal/api"
	"github.com/renthub/renthub-go/internal/model"
)

// API implements session.AuthAPI over the REST boundary.
type API struct {
	client *api.Client
}

func New(client *api.Client) *API {
	return &API{client: client}
}

func (a *API) Login(ctx context.Context, email, password string) (model.Session, error) {
	var sess model.Session
	in := model.LoginInput{Email: email, Password: password}
	if err := a.client.Post(ctx, "/auth/login", in, &sess); err != nil {
		return model.Session{}, err
	}
	return sess, nil
}

func (a *API) Register(ctx context.Context, in model.RegisterInput) (model.Session, error) {
	var sess model.Session
	if err := a.client.Post(ctx, "/auth/register", in, &sess); err != nil {
		return model.Session{}, err
	}
	return sess, nil
}

func (a *API) Invalidate(ctx context.Context) error {
	return a.client.Post(ctx, "/auth/logout", nil, nil)
}
