package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/and161185/newsdesk/internal/crypto"
	"github.com/and161185/newsdesk/internal/errs"
	"github.com/and161185/newsdesk/internal/limiter"
	"github.com/and161185/newsdesk/internal/model"
	"github.com/and161185/newsdesk/internal/repository"
)

type fakeUsers struct {
	byName map[string]*model.User
	nextID int64

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byName == nil {
		f.byName = map[string]*model.User{}
	}
	if _, exists := f.byName[u.Username]; exists {
		return errs.ErrAlreadyExists
	}
	f.nextID++
	u.ID = f.nextID
	cpy := *u
	f.byName[u.Username] = &cpy
	return nil
}
func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}
func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

var ttls = TTLs{Access: time.Minute, Refresh: time.Hour}

func TestAuth_Register_Basics(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{byName: map[string]*model.User{}}
	s := NewAuthService(users, []byte("k"), ttls, &fakeLimiter{})
	ctx := context.Background()

	for _, bad := range [][3]string{
		{"", "secret1", ""},
		{"al", "secret1", ""},
		{"alice", "short", ""},
		{"alice", "secret1", "not-an-email"},
	} {
		if _, _, err := s.Register(ctx, bad[0], bad[1], bad[2]); !errors.Is(err, errs.ErrInvalidInput) {
			t.Fatalf("Register(%q,%q,%q): want validation error, got %v", bad[0], bad[1], bad[2], err)
		}
	}

	tok, u, err := s.Register(ctx, "alice", "secret1", "alice@example.com")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID == 0 || u.Role != model.RoleUser || tok.AccessToken == "" || tok.RefreshToken == "" {
		t.Fatalf("bad registration: %+v %+v", u, tok)
	}

	if _, _, err := s.Register(ctx, "alice", "secret2", ""); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists on duplicate username, got %v", err)
	}

	users.createErr = errors.New("boom")
	if _, _, err := s.Register(ctx, "bobby", "secret1", ""); err == nil {
		t.Fatalf("want propagated repo error")
	}
}

func TestAuth_LoginWithIP_RateLimiterAndCreds(t *testing.T) {
	t.Parallel()

	saltAuth, _ := pkgcrypto.NewSalt()
	pw := []byte("correct")
	u := &model.User{
		ID:       1,
		Username: "alice",
		Role:     model.RoleAdmin,
		SaltAuth: saltAuth,
		PwdHash:  pkgcrypto.HashPassword(pw, saltAuth),
	}

	users := &fakeUsers{byName: map[string]*model.User{"alice": u}}
	lim := &fakeLimiter{allowOK: true}
	s := NewAuthService(users, []byte("secret"), TTLs{Access: 2 * time.Minute, Refresh: time.Hour}, lim)
	ctx := context.Background()

	lim.allowErr = errors.New("lim-err")
	if _, _, err := s.LoginWithIP(ctx, "alice", "correct", "1.2.3.4"); err == nil {
		t.Fatalf("want limiter error propagate")
	}
	lim.allowErr = nil

	lim.allowOK = false
	if _, _, err := s.LoginWithIP(ctx, "alice", "correct", "1.2.3.4"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
	lim.allowOK = true

	users.getErr = errs.ErrNotFound
	if _, _, err := s.LoginWithIP(ctx, "nope", "x", ""); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized on missing user, got %v", err)
	}
	users.getErr = nil

	lim.failBlocked = true
	if _, _, err := s.LoginWithIP(ctx, "alice", "wrong", ""); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited on blocked after failure, got %v", err)
	}

	lim.failBlocked = false
	if _, _, err := s.LoginWithIP(ctx, "alice", "wrong", ""); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized on wrong password, got %v", err)
	}

	tok, gotUser, err := s.LoginWithIP(ctx, "alice", "correct", "127.0.0.1")
	if err != nil {
		t.Fatalf("LoginWithIP success: %v", err)
	}
	if tok.AccessToken == "" || tok.ExpiresAt.Before(time.Now()) {
		t.Fatalf("bad token: %+v", tok)
	}
	if gotUser.ID != u.ID || gotUser.Role != model.RoleAdmin {
		t.Fatalf("bad user returned: %+v", gotUser)
	}
	if lim.successCalls == 0 {
		t.Fatalf("expected Success() to be called")
	}
}

func TestAuth_AuthenticateAndRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	users := &fakeUsers{}
	s := NewAuthService(users, []byte("k"), ttls, &fakeLimiter{allowOK: true})
	tok, u, err := s.Register(ctx, "carol", "secret1", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := s.Authenticate(ctx, tok.AccessToken)
	if err != nil || got.ID != u.ID {
		t.Fatalf("Authenticate: %+v %v", got, err)
	}

	// A refresh token is not an access token and vice versa.
	if _, err := s.Authenticate(ctx, tok.RefreshToken); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("refresh token accepted as access: %v", err)
	}
	if _, err := s.Refresh(ctx, tok.AccessToken); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("access token accepted as refresh: %v", err)
	}

	nt, err := s.Refresh(ctx, tok.RefreshToken)
	if err != nil || nt.AccessToken == "" || nt.RefreshToken != "" {
		t.Fatalf("Refresh: %+v %v", nt, err)
	}

	other := NewAuthService(users, []byte("other-key"), ttls, &fakeLimiter{})
	if _, err := other.Authenticate(ctx, tok.AccessToken); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("foreign signature accepted: %v", err)
	}
	if _, err := s.Authenticate(ctx, ""); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("empty token accepted")
	}
}

func TestAuth_ExpiredAndForeignMethod(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	users := &fakeUsers{}
	s := NewAuthService(users, []byte("k"), ttls, &fakeLimiter{})
	tok, _, err := s.Register(ctx, "dave1", "secret1", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := s.Authenticate(ctx, tok.AccessToken); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expired token accepted: %v", err)
	}

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Typ:              TokenAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := s.Authenticate(ctx, none); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("alg=none accepted: %v", err)
	}
}

func TestAuth_EnsureUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	users := &fakeUsers{}
	s := NewAuthService(users, []byte("k"), ttls, &fakeLimiter{allowOK: true})

	admin, err := s.EnsureUser(ctx, "admin", "admin123", model.RoleAdmin)
	if err != nil || admin.Role != model.RoleAdmin {
		t.Fatalf("EnsureUser: %+v %v", admin, err)
	}
	again, err := s.EnsureUser(ctx, "admin", "other", model.RoleUser)
	if err != nil || again.ID != admin.ID || again.Role != model.RoleAdmin {
		t.Fatalf("EnsureUser must keep the existing account: %+v %v", again, err)
	}

	if _, _, err := s.LoginWithIP(ctx, "admin", "admin123", "ip"); err != nil {
		t.Fatalf("seeded admin cannot log in: %v", err)
	}

	users.getErr = errors.New("db down")
	if _, err := s.EnsureUser(ctx, "x", "y", model.RoleUser); err == nil {
		t.Fatalf("want propagated lookup error")
	}
}
