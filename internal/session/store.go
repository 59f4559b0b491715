// Package session holds the authoritative client-side session: the bearer
// credential (durably persisted) and the resolved identity (memory only).
//
// A Store is created empty, seeded from durable storage with LoadCredential,
// and mutated only through its methods. The credential and identity are set by
// independent calls, so a Store may hold a credential with a nil identity
// (after a restart, or while login is in progress); every reader tolerates it.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/and161185/newsdesk/internal/model"
)

// Persister stores the credential outside the process.
// Load returns ("", nil) when nothing is stored.
type Persister interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, credential string) error
	Remove(ctx context.Context) error
}

// Snapshot is a consistent copy of the session at one instant.
type Snapshot struct {
	Credential string
	Identity   *model.Identity
}

// IsAuthenticated reports whether a credential is present.
func (s Snapshot) IsAuthenticated() bool { return s.Credential != "" }

// IsAdmin reports whether the identity is resolved and carries the admin role.
func (s Snapshot) IsAdmin() bool { return s.Identity.IsAdmin() }

// Store is the single owner of session state.
type Store struct {
	mu         sync.RWMutex
	credential string
	identity   *model.Identity

	persist Persister
	log     *zap.Logger
}

// NewStore constructs an empty store backed by p.
func NewStore(p Persister, log *zap.Logger) *Store {
	if p == nil {
		p = NewMemoryPersister()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{persist: p, log: log}
}

// SetCredential stores token in memory and durable storage, overwriting any
// prior value. The token is not validated. Memory is updated even when
// persisting fails; the persistence error is returned.
func (s *Store) SetCredential(ctx context.Context, token string) error {
	s.mu.Lock()
	s.credential = token
	s.mu.Unlock()

	if err := s.persist.Save(ctx, token); err != nil {
		s.log.Warn("persist credential", zap.Error(err))
		return fmt.Errorf("session: save credential: %w", err)
	}
	return nil
}

// SetIdentity stores the identity in memory only.
func (s *Store) SetIdentity(id model.Identity) {
	s.mu.Lock()
	s.identity = &id
	s.mu.Unlock()
}

// LoadCredential reads durable storage into memory if something is stored.
// It never touches the identity. Calling it again is harmless.
func (s *Store) LoadCredential(ctx context.Context) error {
	tok, err := s.persist.Load(ctx)
	if err != nil {
		return fmt.Errorf("session: load credential: %w", err)
	}
	if tok == "" {
		return nil
	}
	s.mu.Lock()
	s.credential = tok
	s.mu.Unlock()
	return nil
}

// Clear removes the credential from memory and durable storage and drops the
// identity. Idempotent.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.credential = ""
	s.identity = nil
	s.mu.Unlock()

	if err := s.persist.Remove(ctx); err != nil {
		s.log.Warn("remove persisted credential", zap.Error(err))
		return fmt.Errorf("session: remove credential: %w", err)
	}
	return nil
}

// Credential returns the current credential ("" when absent).
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// Identity returns a copy of the resolved identity, or nil.
func (s *Store) Identity() *model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	cp := *s.identity
	return &cp
}

// Snapshot returns credential and identity read under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Credential: s.credential}
	if s.identity != nil {
		cp := *s.identity
		snap.Identity = &cp
	}
	return snap
}

// IsAuthenticated reports whether a credential is present.
func (s *Store) IsAuthenticated() bool { return s.Snapshot().IsAuthenticated() }

// IsAdmin reports whether an identity is present and has the admin role.
func (s *Store) IsAdmin() bool { return s.Snapshot().IsAdmin() }
