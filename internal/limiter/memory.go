package limiter

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pruneAbove is the entry count that triggers eviction of idle keys.
const pruneAbove = 4096

type attempts struct {
	fails        *rate.Limiter
	blockedUntil time.Time
	lastSeen     time.Time
}

// Memory is an in-process limiter. Failures drain a token bucket of maxFails
// tokens that refills over window; an empty bucket blocks the key for blockFor.
type Memory struct {
	mu       sync.Mutex
	keys     map[string]*attempts
	refill   rate.Limit
	maxFails int
	blockFor time.Duration
	idleTTL  time.Duration
	now      func() time.Time
}

// NewMemory constructs an in-process limiter.
func NewMemory(window time.Duration, maxFails int, blockFor time.Duration) *Memory {
	if maxFails < 1 {
		maxFails = 1
	}
	return &Memory{
		keys:     map[string]*attempts{},
		refill:   rate.Limit(float64(maxFails) / window.Seconds()),
		maxFails: maxFails,
		blockFor: blockFor,
		idleTTL:  window + blockFor,
		now:      time.Now,
	}
}

func key(username string, ipHash []byte) string {
	return username + "|" + hex.EncodeToString(ipHash)
}

// Allow reports whether login is currently allowed and a retry-after duration.
func (m *Memory) Allow(_ context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.keys[key(username, ipHash)]
	if !ok {
		return true, 0, nil
	}
	now := m.now()
	if a.blockedUntil.After(now) {
		return false, a.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success resets counters for (username, ip).
func (m *Memory) Success(_ context.Context, username string, ipHash []byte) error {
	m.mu.Lock()
	delete(m.keys, key(username, ipHash))
	m.mu.Unlock()
	return nil
}

// Failure records a failed attempt; may set a block until a future time.
func (m *Memory) Failure(_ context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if len(m.keys) > pruneAbove {
		m.prune(now)
	}

	k := key(username, ipHash)
	a, ok := m.keys[k]
	if !ok {
		a = &attempts{fails: rate.NewLimiter(m.refill, m.maxFails)}
		m.keys[k] = a
	}
	a.lastSeen = now

	a.fails.AllowN(now, 1)
	if a.fails.TokensAt(now) < 1 {
		a.blockedUntil = now.Add(m.blockFor)
		// Fresh bucket once the block expires.
		a.fails = rate.NewLimiter(m.refill, m.maxFails)
		return true, m.blockFor, nil
	}
	return false, 0, nil
}

func (m *Memory) prune(now time.Time) {
	for k, a := range m.keys {
		if now.Sub(a.lastSeen) > m.idleTTL && !a.blockedUntil.After(now) {
			delete(m.keys, k)
		}
	}
}

var _ Limiter = (*Memory)(nil)
