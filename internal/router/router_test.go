package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/newsdesk/internal/model"
	"github.com/and161185/newsdesk/internal/session"
)

type fixedSnapshot session.Snapshot

func (f fixedSnapshot) Snapshot() session.Snapshot { return session.Snapshot(f) }

var (
	anonymous = fixedSnapshot{}
	userSnap  = fixedSnapshot{Credential: "T", Identity: &model.Identity{ID: 2, Username: "bob", Role: model.RoleUser}}
	adminSnap = fixedSnapshot{Credential: "T", Identity: &model.Identity{ID: 1, Username: "admin", Role: model.RoleAdmin}}
	pending   = fixedSnapshot{Credential: "T"} // identity not fetched yet
)

func TestTable_Resolve(t *testing.T) {
	t.Parallel()
	tbl := MustDefault()

	cases := []struct {
		loc, name, pattern string
		params             map[string]string
	}{
		{"/", "Home", "/", nil},
		{"/login", "Login", "/login", nil},
		{"/news/42", "NewsDetail", "/news/{id}", map[string]string{"id": "42"}},
		{"/category/3?page=2", "CategoryNews", "/category/{id}", map[string]string{"id": "3"}},
		{"/admin", "Dashboard", "/admin", nil},
		{"/admin/", "Dashboard", "/admin", nil},
		{"/admin/news/edit/9", "NewsEdit", "/admin/news/edit/{id}", map[string]string{"id": "9"}},
		{"/admin/audit-log", "AuditLog", "/admin/audit-log", nil},
		{"/nope/deeper", NameNotFound, "/*", nil},
		{"user/center", "UserCenter", "/user/center", nil},
	}
	for _, tc := range cases {
		r, err := tbl.Resolve(tc.loc)
		require.NoError(t, err, tc.loc)
		require.Equal(t, tc.name, r.Name, tc.loc)
		require.Equal(t, tc.pattern, r.Pattern, tc.loc)
		require.Equal(t, tc.params, r.Params, tc.loc)
	}

	r, err := tbl.Resolve("/category/3?page=2")
	require.NoError(t, err)
	require.Equal(t, "/category/3?page=2", r.FullPath)
	require.Equal(t, "3", r.Param("id"))

	_, err = tbl.Resolve("/%zz")
	require.Error(t, err)
}

func TestTable_AdminChildrenInherit(t *testing.T) {
	t.Parallel()

	var children int
	for _, d := range MustDefault().Descriptors() {
		if d.Pattern == "/admin" || len(d.Pattern) > len("/admin/") && d.Pattern[:7] == "/admin/" {
			children++
			require.True(t, d.Meta.RequiresAuth, d.Pattern)
			require.True(t, d.Meta.RequiresAdmin, d.Pattern)
			require.NotEmpty(t, d.Meta.Title, d.Pattern)
		}
	}
	require.Equal(t, 8, children)
}

func TestTable_Invalid(t *testing.T) {
	t.Parallel()

	_, err := NewTable([]Descriptor{{Name: "a", Pattern: "/x"}, {Name: "b", Pattern: "/x"}})
	require.Error(t, err)

	_, err = NewTable([]Descriptor{{Name: "bad", Pattern: "no-slash"}})
	require.Error(t, err)
}

func TestGuard_Scenarios(t *testing.T) {
	t.Parallel()
	tbl := MustDefault()
	resolve := func(loc string) Route {
		r, err := tbl.Resolve(loc)
		require.NoError(t, err)
		return r
	}

	// Public route, empty session.
	out := NewGuard(anonymous).Evaluate(resolve("/"))
	require.Equal(t, Proceed, out.Decision)

	// Protected route, empty session.
	out = NewGuard(anonymous).Evaluate(resolve("/user/center"))
	require.Equal(t, RedirectToLogin, out.Decision)
	require.Equal(t, "/user/center", out.ReturnPath)
	require.Equal(t, "/login?redirect=%2Fuser%2Fcenter", out.Location())

	// Protected route, credential present.
	out = NewGuard(userSnap).Evaluate(resolve("/user/center"))
	require.Equal(t, Proceed, out.Decision)

	// Admin route, non-admin credential: legacy lets it through unchecked.
	out = NewGuard(userSnap).Evaluate(resolve("/admin/news"))
	require.Equal(t, ProceedAdminUnchecked, out.Decision)
	require.True(t, out.Allowed())

	// Enforced gate denies the same navigation.
	out = NewGuard(userSnap, WithAdminGate(GateEnforce)).Evaluate(resolve("/admin/news"))
	require.Equal(t, RedirectToForbidden, out.Decision)
	require.False(t, out.Allowed())
	require.Equal(t, "/403", out.Location())

	out = NewGuard(adminSnap, WithAdminGate(GateEnforce)).Evaluate(resolve("/admin"))
	require.Equal(t, Proceed, out.Decision)

	// Identity not resolved yet: tolerated, treated as non-admin.
	out = NewGuard(pending, WithAdminGate(GateEnforce)).Evaluate(resolve("/admin"))
	require.Equal(t, RedirectToForbidden, out.Decision)
	out = NewGuard(pending).Evaluate(resolve("/admin"))
	require.Equal(t, ProceedAdminUnchecked, out.Decision)

	// Admin route, no credential: login comes first in both modes.
	out = NewGuard(anonymous, WithAdminGate(GateEnforce)).Evaluate(resolve("/admin/rules?x=1"))
	require.Equal(t, RedirectToLogin, out.Decision)
	require.Equal(t, "/admin/rules?x=1", out.ReturnPath)
}

func TestGuard_Title(t *testing.T) {
	t.Parallel()
	tbl := MustDefault()

	var titles []string
	g := NewGuard(anonymous, WithTitleSetter(TitleFunc(func(s string) { titles = append(titles, s) })))

	r, _ := tbl.Resolve("/user/center")
	g.Evaluate(r)
	require.Equal(t, []string{"User Center - News Management System"}, titles)

	untitled, err := NewTable([]Descriptor{{Name: "bare", Pattern: "/bare"}})
	require.NoError(t, err)
	r, _ = untitled.Resolve("/bare")
	g.Evaluate(r)
	require.Len(t, titles, 1, "routes without a title leave it unchanged")

	g2 := NewGuard(anonymous, WithSiteName("Desk"), WithTitleSetter(TitleFunc(func(s string) { titles = append(titles, s) })))
	r, _ = tbl.Resolve("/")
	g2.Evaluate(r)
	require.Equal(t, "Home - Desk", titles[1])
}

func TestGuard_UnknownGateIsLegacy(t *testing.T) {
	t.Parallel()
	require.Equal(t, GateLegacy, NewGuard(anonymous, WithAdminGate("strict")).Gate())
}

func TestNavigator_FollowsRedirects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := session.NewStore(nil, zaptest.NewLogger(t))
	tbl := MustDefault()
	nav := NewNavigator(tbl, NewGuard(store, WithAdminGate(GateEnforce)), zaptest.NewLogger(t))
	require.Equal(t, "Home", nav.Current().Name)

	got, first, err := nav.Navigate(ctx, "/user/center")
	require.NoError(t, err)
	require.Equal(t, RedirectToLogin, first.Decision)
	require.Equal(t, NameLogin, got.Name)
	require.Equal(t, "/login?redirect=%2Fuser%2Fcenter", got.FullPath)

	require.NoError(t, store.SetCredential(ctx, "T"))
	store.SetIdentity(model.Identity{ID: 2, Username: "bob", Role: model.RoleUser})

	got, first, err = nav.Navigate(ctx, "/admin/crawler")
	require.NoError(t, err)
	require.Equal(t, RedirectToForbidden, first.Decision)
	require.Equal(t, NameForbidden, got.Name)

	got, _, err = nav.Navigate(ctx, "/news/5")
	require.NoError(t, err)
	require.Equal(t, "5", got.Param("id"))
	require.Equal(t, []string{"/", "/login?redirect=%2Fuser%2Fcenter", "/403"}, nav.History())
}

func TestNavigator_ForceLogin(t *testing.T) {
	t.Parallel()

	nav := NewNavigator(MustDefault(), NewGuard(anonymous), nil)
	_, _, err := nav.Navigate(context.Background(), "/news/1")
	require.NoError(t, err)

	nav.ForceLogin(context.Background())
	nav.ForceLogin(context.Background())

	require.Equal(t, NameLogin, nav.Current().Name)
	require.Equal(t, "/login", nav.Current().FullPath)
	require.Equal(t, 2, nav.ForcedLogins())
}

func TestNavigator_RedirectLoop(t *testing.T) {
	t.Parallel()

	// A login page that itself requires auth never settles.
	tbl, err := NewTable([]Descriptor{
		{Name: NameLogin, Pattern: LoginPath, Meta: Meta{RequiresAuth: true}},
		{Name: "x", Pattern: "/x", Meta: Meta{RequiresAuth: true}},
	})
	require.NoError(t, err)

	nav := NewNavigator(tbl, NewGuard(anonymous), nil)
	_, _, err = nav.Navigate(context.Background(), "/x")
	require.ErrorIs(t, err, ErrRedirectLoop)
}
