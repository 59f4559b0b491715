package devserver

import (
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/and161185/newsdesk/internal/errs"
	"github.com/and161185/newsdesk/internal/model"
)

func loginResponse(tok model.Tokens, u model.User) model.LoginResponse {
	return model.LoginResponse{
		Token:        tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Username:     u.Username,
		Role:         u.Role,
		UserID:       u.ID,
	}
}

func remoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}
	tok, u, err := s.auth.LoginWithIP(r.Context(), req.Username, req.Password, remoteIP(r))
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			writeError(w, r, http.StatusUnauthorized, "invalid username or password")
			return
		}
		s.fail(w, r, err)
		return
	}
	s.log.Info("login", zap.String("user", u.Username))
	writeJSON(w, http.StatusOK, loginResponse(tok, u))
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	tok, u, err := s.auth.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			writeError(w, r, http.StatusConflict, "username is already taken")
			return
		}
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse(tok, u))
}

// logout is stateless: tokens simply expire.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := IdentityFromCtx(r.Context()); ok {
		s.log.Info("logout", zap.String("user", id.Username))
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromCtx(r.Context())
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req model.TokenRefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	tok, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			writeError(w, r, http.StatusUnauthorized, "refresh token is invalid or expired")
			return
		}
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.TokenRefreshResponse{Token: tok.AccessToken})
}
