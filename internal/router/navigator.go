package router

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// maxRedirects bounds guard-driven redirect chains.
const maxRedirects = 5

// ErrRedirectLoop is returned when guard redirects do not settle.
var ErrRedirectLoop = errors.New("router: too many redirects")

// Navigator holds the current location and commits navigations through the
// guard. It also serves as the pipeline's forced-login target.
type Navigator struct {
	table *Table
	guard *Guard
	log   *zap.Logger

	mu      sync.Mutex
	current Route
	history []string
	forced  int
}

// NewNavigator starts at "/" without running the guard.
func NewNavigator(table *Table, guard *Guard, log *zap.Logger) *Navigator {
	if log == nil {
		log = zap.NewNop()
	}
	n := &Navigator{table: table, guard: guard, log: log}
	if r, err := table.Resolve("/"); err == nil {
		n.current = r
	}
	return n
}

// Navigate requests a change to location. Guard redirects are followed; the
// returned outcome is the guard's decision on the original request and the
// returned route is what got committed.
func (n *Navigator) Navigate(ctx context.Context, location string) (Route, Outcome, error) {
	to, err := n.table.Resolve(location)
	if err != nil {
		return Route{}, Outcome{}, err
	}
	first := n.guard.Evaluate(to)

	out := first
	for hops := 0; !out.Allowed(); hops++ {
		if hops >= maxRedirects {
			return Route{}, first, ErrRedirectLoop
		}
		if err := ctx.Err(); err != nil {
			return Route{}, first, err
		}
		n.log.Debug("navigation redirected",
			zap.String("from", to.FullPath),
			zap.Stringer("decision", out.Decision),
		)
		if to, err = n.table.Resolve(out.Location()); err != nil {
			return Route{}, first, err
		}
		out = n.guard.Evaluate(to)
	}

	n.commit(to)
	return to, first, nil
}

// ForceLogin performs a full redirect to the login entry point, bypassing
// the guard. Repeating it is harmless.
func (n *Navigator) ForceLogin(context.Context) {
	r, err := n.table.Resolve(LoginPath)
	if err != nil {
		n.log.Error("login route missing", zap.Error(err))
		return
	}
	n.mu.Lock()
	n.forced++
	n.mu.Unlock()
	n.commit(r)
}

func (n *Navigator) commit(r Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current.FullPath != "" {
		n.history = append(n.history, n.current.FullPath)
	}
	n.current = r
}

// Current returns the committed route.
func (n *Navigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// History lists previously committed locations, oldest first.
func (n *Navigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}

// ForcedLogins counts ForceLogin calls.
func (n *Navigator) ForcedLogins() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.forced
}
