// Package account composes the session store and the auth calls into the
// client-side login flows.
package account

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/and161185/newsdesk/internal/errs"
	"github.com/and161185/newsdesk/internal/model"
	"github.com/and161185/newsdesk/internal/session"
)

// AuthAPI is the subset of backend auth calls the flows need.
type AuthAPI interface {
	Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.LoginResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (model.Identity, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenRefreshResponse, error)
}

// Flows runs login, registration, restore, refresh and logout against one store.
type Flows struct {
	auth  AuthAPI
	store *session.Store
	log   *zap.Logger

	mu      sync.Mutex
	refresh string // kept in memory only
}

// New constructs Flows.
func New(auth AuthAPI, store *session.Store, log *zap.Logger) *Flows {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flows{auth: auth, store: store, log: log}
}

// Login authenticates and populates both credential and identity.
func (f *Flows) Login(ctx context.Context, username, password string) (model.Identity, error) {
	if username == "" || password == "" {
		return model.Identity{}, errors.New("empty username/password")
	}
	resp, err := f.auth.Login(ctx, model.LoginRequest{Username: username, Password: password})
	if err != nil {
		return model.Identity{}, err
	}
	return f.adopt(ctx, resp)
}

// Register creates an account; the backend logs the new user in directly.
func (f *Flows) Register(ctx context.Context, username, password, email string) (model.Identity, error) {
	if username == "" || password == "" {
		return model.Identity{}, errors.New("empty username/password")
	}
	resp, err := f.auth.Register(ctx, model.RegisterRequest{Username: username, Password: password, Email: email})
	if err != nil {
		return model.Identity{}, err
	}
	return f.adopt(ctx, resp)
}

func (f *Flows) adopt(ctx context.Context, resp model.LoginResponse) (model.Identity, error) {
	if resp.Token == "" {
		return model.Identity{}, errors.New("login response carries no token")
	}
	// The in-memory session is usable even when persisting it failed.
	if err := f.store.SetCredential(ctx, resp.Token); err != nil {
		f.log.Warn("credential not persisted", zap.Error(err))
	}
	id := resp.Identity()
	f.store.SetIdentity(id)

	f.mu.Lock()
	f.refresh = resp.RefreshToken
	f.mu.Unlock()
	return id, nil
}

// Restore reloads a persisted credential and resolves its identity. It returns
// nil without error when nothing was stored.
func (f *Flows) Restore(ctx context.Context) (*model.Identity, error) {
	if err := f.store.LoadCredential(ctx); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	if !f.store.IsAuthenticated() {
		return nil, nil
	}
	id, err := f.auth.Me(ctx)
	if err != nil {
		return nil, err
	}
	f.store.SetIdentity(id)
	return &id, nil
}

// Refresh trades the in-memory refresh token for a new credential.
func (f *Flows) Refresh(ctx context.Context) error {
	f.mu.Lock()
	rt := f.refresh
	f.mu.Unlock()
	if rt == "" {
		return errs.ErrNoCredential
	}

	resp, err := f.auth.Refresh(ctx, rt)
	if err != nil {
		return err
	}
	if resp.Token == "" {
		return errors.New("refresh response carries no token")
	}
	return f.store.SetCredential(ctx, resp.Token)
}

// Logout notifies the backend (best effort) and clears the session regardless.
func (f *Flows) Logout(ctx context.Context) error {
	if f.store.IsAuthenticated() {
		if err := f.auth.Logout(ctx); err != nil {
			f.log.Debug("logout call failed", zap.Error(err))
		}
	}
	f.mu.Lock()
	f.refresh = ""
	f.mu.Unlock()
	return f.store.Clear(ctx)
}

// HasRefreshToken reports whether Refresh can be attempted.
func (f *Flows) HasRefreshToken() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh != ""
}
