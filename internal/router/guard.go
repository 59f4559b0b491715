package router

import (
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/and161185/newsdesk/internal/session"
)

// AdminGate selects how admin-only routes are gated.
type AdminGate string

const (
	// GateLegacy lets any authenticated user through; the role is not checked.
	GateLegacy AdminGate = "legacy"
	// GateEnforce requires the identity to carry the admin role.
	GateEnforce AdminGate = "enforce"
)

// DefaultSiteName is appended to every page title.
const DefaultSiteName = "News Management System"

// Decision is the kind of a guard outcome.
type Decision int

const (
	Proceed Decision = iota
	// ProceedAdminUnchecked lets an admin-only route through without a role
	// check (GateLegacy).
	ProceedAdminUnchecked
	RedirectToLogin
	RedirectToForbidden
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "Proceed"
	case ProceedAdminUnchecked:
		return "ProceedAdminUnchecked"
	case RedirectToLogin:
		return "RedirectToLogin"
	case RedirectToForbidden:
		return "RedirectToForbidden"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Outcome is the result of one guard evaluation.
type Outcome struct {
	Decision   Decision
	ReturnPath string // set for RedirectToLogin
}

// Allowed reports whether the navigation may be committed.
func (o Outcome) Allowed() bool {
	return o.Decision == Proceed || o.Decision == ProceedAdminUnchecked
}

// Location is where a denied navigation goes instead ("" when allowed).
func (o Outcome) Location() string {
	switch o.Decision {
	case RedirectToLogin:
		return LoginPath + "?" + url.Values{"redirect": {o.ReturnPath}}.Encode()
	case RedirectToForbidden:
		return ForbiddenPath
	default:
		return ""
	}
}

// SnapshotSource is read by the guard. *session.Store implements it.
type SnapshotSource interface {
	Snapshot() session.Snapshot
}

// TitleSetter receives the page title.
type TitleSetter interface {
	SetTitle(title string)
}

// TitleFunc adapts a function to TitleSetter.
type TitleFunc func(title string)

func (f TitleFunc) SetTitle(title string) { f(title) }

// Guard decides every navigation from resident session state only; it never
// blocks on the network.
type Guard struct {
	sessions SnapshotSource
	gate     AdminGate
	titles   TitleSetter
	site     string
	log      *zap.Logger
}

// GuardOption customizes a Guard.
type GuardOption func(*Guard)

// WithAdminGate sets the admin gate policy. Unknown values fall back to GateLegacy.
func WithAdminGate(g AdminGate) GuardOption {
	return func(gd *Guard) {
		if g == GateEnforce {
			gd.gate = GateEnforce
		}
	}
}

// WithTitleSetter routes page titles to ts.
func WithTitleSetter(ts TitleSetter) GuardOption {
	return func(gd *Guard) { gd.titles = ts }
}

// WithSiteName overrides DefaultSiteName.
func WithSiteName(name string) GuardOption {
	return func(gd *Guard) {
		if name != "" {
			gd.site = name
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) GuardOption {
	return func(gd *Guard) {
		if log != nil {
			gd.log = log
		}
	}
}

// NewGuard builds a guard over sessions.
func NewGuard(sessions SnapshotSource, opts ...GuardOption) *Guard {
	g := &Guard{
		sessions: sessions,
		gate:     GateLegacy,
		titles:   TitleFunc(func(string) {}),
		site:     DefaultSiteName,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Gate reports the active admin gate policy.
func (g *Guard) Gate() AdminGate { return g.gate }

// Evaluate runs the transition function for a navigation to `to`. First
// match wins:
//
//  1. set the title (when the route has one)
//  2. no auth required: Proceed
//  3. no credential: RedirectToLogin with the requested full path
//  4. admin required: ProceedAdminUnchecked (legacy) or a role check (enforce)
//  5. Proceed
func (g *Guard) Evaluate(to Route) Outcome {
	if to.Meta.Title != "" {
		g.titles.SetTitle(to.Meta.Title + " - " + g.site)
	}

	if !to.Meta.RequiresAuth {
		return Outcome{Decision: Proceed}
	}

	snap := g.sessions.Snapshot()
	if !snap.IsAuthenticated() {
		return Outcome{Decision: RedirectToLogin, ReturnPath: to.FullPath}
	}

	if to.Meta.RequiresAdmin {
		if g.gate != GateEnforce {
			// Known gap: any credential passes. The backend still authorizes.
			g.log.Debug("admin route not role-checked", zap.String("path", to.FullPath))
			return Outcome{Decision: ProceedAdminUnchecked}
		}
		// An identity that has not been resolved yet counts as non-admin.
		if !snap.IsAdmin() {
			return Outcome{Decision: RedirectToForbidden}
		}
	}
	return Outcome{Decision: Proceed}
}
