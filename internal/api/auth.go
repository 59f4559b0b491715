package api

import (
	"context"
	"net/http"

	"github.com/and161185/newsdesk/internal/model"
	"github.com/and161185/newsdesk/internal/pipeline"
)

// Auth covers /auth/*.
type Auth struct{ s pipeline.Sender }

func (a *Auth) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	return pipeline.Call[model.LoginResponse](ctx, a.s, pipeline.Envelope{Method: http.MethodPost, Path: "/auth/login", Body: req})
}

func (a *Auth) Register(ctx context.Context, req model.RegisterRequest) (model.LoginResponse, error) {
	return pipeline.Call[model.LoginResponse](ctx, a.s, pipeline.Envelope{Method: http.MethodPost, Path: "/auth/register", Body: req})
}

func (a *Auth) Logout(ctx context.Context) error {
	_, err := a.s.Send(ctx, pipeline.Envelope{Method: http.MethodPost, Path: "/auth/logout"})
	return err
}

// Me resolves the identity behind the current credential.
func (a *Auth) Me(ctx context.Context) (model.Identity, error) {
	return pipeline.Call[model.Identity](ctx, a.s, pipeline.Envelope{Path: "/auth/me"})
}

// Refresh exchanges a refresh token for a new access token.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (model.TokenRefreshResponse, error) {
	return pipeline.Call[model.TokenRefreshResponse](ctx, a.s, pipeline.Envelope{
		Method: http.MethodPost,
		Path:   "/auth/refresh",
		Body:   model.TokenRefreshRequest{RefreshToken: refreshToken},
	})
}
