// Package memory contains in-process implementations of repository
// interfaces, used when the dev server runs without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/and161185/newsdesk/internal/errs"
	"github.com/and161185/newsdesk/internal/model"
)

// UserRepo keeps users in a map. Safe for concurrent use.
type UserRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*model.User
	byName map[string]int64
}

// NewUserRepo returns an empty repository.
func NewUserRepo() *UserRepo {
	return &UserRepo{byID: map[int64]*model.User{}, byName: map[string]int64{}}
}

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[u.Username]; taken {
		return errs.ErrAlreadyExists
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	cpy := *u
	r.byID[u.ID] = &cpy
	r.byName[u.Username] = u.ID
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cpy := *u
	return &cpy, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	id, ok := r.byName[username]
	r.mu.RUnlock()
	if !ok {
		return nil, errs.ErrNotFound
	}
	return r.GetByID(ctx, id)
}
