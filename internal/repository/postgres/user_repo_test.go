package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/newsdesk/internal/errs"
	"github.com/and161185/newsdesk/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

var userCols = []string{"id", "username", "email", "role", "pwd_hash", "salt_auth", "created_at"}

func TestUserRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	now := time.Now()
	u := &model.User{
		Username: "u",
		Email:    "u@example.com",
		Role:     model.RoleUser,
		PwdHash:  []byte("h"),
		SaltAuth: []byte("s"),
	}

	mock.ExpectQuery(`INSERT INTO users \(username, email, role, pwd_hash, salt_auth\) VALUES \(\$1, \$2, \$3, \$4, \$5\) RETURNING id, created_at`).
		WithArgs(u.Username, u.Email, "USER", u.PwdHash, u.SaltAuth).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))
	require.NoError(t, r.Create(ctx, u))
	require.Equal(t, int64(7), u.ID)
	require.Equal(t, now, u.CreatedAt)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(u.Username, u.Email, "USER", u.PwdHash, u.SaltAuth).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.Create(ctx, u), errs.ErrAlreadyExists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT id, username, email, role, pwd_hash, salt_auth, created_at FROM users WHERE id=\$1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(int64(1), "admin", "", "ADMIN", []byte("h"), []byte("s"), time.Now()))
	u, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, model.RoleAdmin, u.Role)

	mock.ExpectQuery(`SELECT .* FROM users WHERE id=\$1`).
		WithArgs(int64(1)).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, 1)
	require.ErrorIs(t, err, errs.ErrNotFound)

	boom := errors.New("conn reset")
	mock.ExpectQuery(`SELECT .* FROM users WHERE id=\$1`).
		WithArgs(int64(1)).
		WillReturnError(boom)
	_, err = r.GetByID(ctx, 1)
	require.ErrorIs(t, err, boom)
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	name := "u2"

	mock.ExpectQuery(`SELECT id, username, email, role, pwd_hash, salt_auth, created_at FROM users WHERE username=\$1`).
		WithArgs(name).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(int64(2), name, "u2@example.com", "USER", []byte("h"), []byte("s"), time.Now()))
	u, err := r.GetByUsername(ctx, name)
	require.NoError(t, err)
	require.Equal(t, name, u.Username)
	require.Equal(t, "u2@example.com", u.Email)

	mock.ExpectQuery(`SELECT .* FROM users WHERE username=\$1`).
		WithArgs(name).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByUsername(ctx, name)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
