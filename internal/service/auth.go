// Package service contains the dev server's account service.
package service

import (
	"context"
	"errors"
	"net/mail"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/and161185/newsdesk/internal/crypto"
	"github.com/and161185/newsdesk/internal/errs"
	"github.com/and161185/newsdesk/internal/limiter"
	"github.com/and161185/newsdesk/internal/model"
	"github.com/and161185/newsdesk/internal/repository"
)

// Token kinds carried in the "typ" claim.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims are the JWT claims issued by the dev server.
type Claims struct {
	Role model.Role `json:"role"`
	Typ  string     `json:"typ"`
	jwt.RegisteredClaims
}

// AuthService defines account and token operations.
type AuthService interface {
	// Register creates a user and logs it in.
	Register(ctx context.Context, username, password, email string) (model.Tokens, model.User, error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, username, password, ip string) (model.Tokens, model.User, error)
	// Refresh issues a new access token for a valid refresh token.
	Refresh(ctx context.Context, refreshToken string) (model.Tokens, error)
	// Authenticate resolves an access token to its user.
	Authenticate(ctx context.Context, accessToken string) (model.User, error)
	// EnsureUser creates the user with the given role unless the name is taken.
	EnsureUser(ctx context.Context, username, password string, role model.Role) (model.User, error)
}

// TTLs bounds issued tokens.
type TTLs struct {
	Access  time.Duration
	Refresh time.Duration
}

type AuthServiceImpl struct {
	users   repository.UserRepository
	signKey []byte
	ttl     TTLs
	lim     limiter.Limiter
	now     func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, ttl TTLs, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, ttl: ttl, lim: lim, now: time.Now}
}

func validateAccount(username, password, email string) error {
	if n := utf8.RuneCountInString(username); n < 3 || n > 50 {
		return errs.Invalid("username must be between 3 and 50 characters")
	}
	if utf8.RuneCountInString(password) < 6 {
		return errs.Invalid("password must be at least 6 characters")
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return errs.Invalid("email is not valid")
		}
	}
	return nil
}

// Register creates a new reader account with a per-user salt.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password, email string) (model.Tokens, model.User, error) {
	if err := validateAccount(username, password, email); err != nil {
		return model.Tokens{}, model.User{}, err
	}
	u, err := s.create(ctx, username, password, email, model.RoleUser)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	tok, err := s.issue(u)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return tok, *u, nil
}

func (s *AuthServiceImpl) create(ctx context.Context, username, password, email string, role model.Role) (*model.User, error) {
	saltAuth, err := pkgcrypto.NewSalt()
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username: username,
		Email:    email,
		Role:     role,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), saltAuth),
		SaltAuth: saltAuth,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureUser creates a seed account; an existing user is returned as is.
func (s *AuthServiceImpl) EnsureUser(ctx context.Context, username, password string, role model.Role) (model.User, error) {
	if u, err := s.users.GetByUsername(ctx, username); err == nil {
		return *u, nil
	} else if !errors.Is(err, errs.ErrNotFound) {
		return model.User{}, err
	}
	u, err := s.create(ctx, username, password, "", role)
	if err != nil {
		return model.User{}, err
	}
	return *u, nil
}

// LoginWithIP authenticates with rate limiting by (username, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, username, password, ip string) (model.Tokens, model.User, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// Unknown user and wrong password look the same.
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	_ = s.lim.Success(ctx, username, ipHash)

	tok, err := s.issue(u)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return tok, *u, nil
}

// Refresh verifies a refresh token and issues a new access token.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (model.Tokens, error) {
	claims, err := s.parse(refreshToken, TokenRefresh)
	if err != nil {
		return model.Tokens{}, err
	}
	u, err := s.userFromSubject(ctx, claims.Subject)
	if err != nil {
		return model.Tokens{}, err
	}
	access, exp, err := s.sign(u, TokenAccess, s.ttl.Access)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, nil
}

// Authenticate verifies an access token and loads its user.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, accessToken string) (model.User, error) {
	claims, err := s.parse(accessToken, TokenAccess)
	if err != nil {
		return model.User{}, err
	}
	u, err := s.userFromSubject(ctx, claims.Subject)
	if err != nil {
		return model.User{}, err
	}
	return *u, nil
}

func (s *AuthServiceImpl) userFromSubject(ctx context.Context, sub string) (*model.User, error) {
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, errs.ErrUnauthorized
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrUnauthorized
	}
	return u, err
}

func (s *AuthServiceImpl) issue(u *model.User) (model.Tokens, error) {
	access, exp, err := s.sign(u, TokenAccess, s.ttl.Access)
	if err != nil {
		return model.Tokens{}, err
	}
	refresh, _, err := s.sign(u, TokenRefresh, s.ttl.Refresh)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

// sign creates a signed HS256 JWT for the given user.
func (s *AuthServiceImpl) sign(u *model.User, typ string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(ttl)
	claims := Claims{
		Role: u.Role,
		Typ:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	return signed, exp, err
}

// parse verifies signature, expiry and token kind.
func (s *AuthServiceImpl) parse(token, typ string) (*Claims, error) {
	if token == "" {
		return nil, errs.ErrUnauthorized
	}
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	},
		jwt.WithLeeway(30*time.Second),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Typ != typ {
		return nil, errs.ErrUnauthorized
	}
	return &claims, nil
}
