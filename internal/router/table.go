// Package router holds the client route table and the navigation guard that
// runs before every route change.
package router

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Meta is the metadata bag of a route.
type Meta struct {
	Title         string
	RequiresAuth  bool
	RequiresAdmin bool
}

// Descriptor is one entry of the route table. Children are mounted under
// Pattern and inherit RequiresAuth and RequiresAdmin from it.
type Descriptor struct {
	Name     string
	Pattern  string
	Meta     Meta
	Children []Descriptor
}

// Route is a descriptor resolved against a concrete location.
type Route struct {
	Name     string
	Pattern  string
	Meta     Meta
	Path     string // path part of the location
	FullPath string // path plus query, as requested
	Params   map[string]string
}

// Param returns a path parameter such as "id".
func (r Route) Param(key string) string { return r.Params[key] }

// Route names used by the guard and the navigator.
const (
	NameLogin     = "Login"
	NameForbidden = "Forbidden"
	NameNotFound  = "NotFound"
)

// Locations the guard redirects to.
const (
	LoginPath     = "/login"
	ForbiddenPath = "/403"
)

// DefaultRoutes returns the application's route table.
func DefaultRoutes() []Descriptor {
	return []Descriptor{
		{Name: "Home", Pattern: "/", Meta: Meta{Title: "Home"}},
		{Name: NameLogin, Pattern: LoginPath, Meta: Meta{Title: "Login"}},
		{Name: "Register", Pattern: "/register", Meta: Meta{Title: "Register"}},
		{Name: "NewsDetail", Pattern: "/news/{id}", Meta: Meta{Title: "News Detail"}},
		{Name: "UserCenter", Pattern: "/user/center", Meta: Meta{Title: "User Center", RequiresAuth: true}},
		{Name: "CategoryNews", Pattern: "/category/{id}", Meta: Meta{Title: "Category News"}},
		{
			Pattern: "/admin",
			Meta:    Meta{RequiresAuth: true, RequiresAdmin: true},
			Children: []Descriptor{
				{Name: "Dashboard", Pattern: "", Meta: Meta{Title: "Admin Dashboard"}},
				{Name: "NewsManagement", Pattern: "news", Meta: Meta{Title: "News Management"}},
				{Name: "NewsCreate", Pattern: "news/create", Meta: Meta{Title: "Create News"}},
				{Name: "NewsEdit", Pattern: "news/edit/{id}", Meta: Meta{Title: "Edit News"}},
				{Name: "CategoryManage", Pattern: "categories", Meta: Meta{Title: "Category Management"}},
				{Name: "CrawlerManage", Pattern: "crawler", Meta: Meta{Title: "Crawler Management"}},
				{Name: "ClassificationRules", Pattern: "rules", Meta: Meta{Title: "Classification Rules"}},
				{Name: "AuditLog", Pattern: "audit-log", Meta: Meta{Title: "Audit Log"}},
			},
		},
		{Name: NameForbidden, Pattern: ForbiddenPath, Meta: Meta{Title: "Access Denied"}},
		{Name: NameNotFound, Pattern: "/*", Meta: Meta{Title: "Page Not Found"}},
	}
}

// Table resolves locations to routes. It is read-only after construction.
type Table struct {
	mux    *chi.Mux
	routes map[string]Descriptor // by chi pattern
	order  []string
}

// NewTable flattens descriptors and registers them for matching.
func NewTable(descs []Descriptor) (*Table, error) {
	t := &Table{mux: chi.NewRouter(), routes: map[string]Descriptor{}}
	nop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	for _, d := range flatten(descs) {
		if _, dup := t.routes[d.Pattern]; dup {
			return nil, fmt.Errorf("router: duplicate pattern %q", d.Pattern)
		}
		if err := register(t.mux, d.Pattern, nop); err != nil {
			return nil, err
		}
		t.routes[d.Pattern] = d
		t.order = append(t.order, d.Pattern)
	}
	return t, nil
}

// MustDefault is NewTable(DefaultRoutes()) for a table known to be valid.
func MustDefault() *Table {
	t, err := NewTable(DefaultRoutes())
	if err != nil {
		panic(err)
	}
	return t
}

func register(mux *chi.Mux, pattern string, h http.Handler) (err error) {
	// chi panics on malformed patterns.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("router: bad pattern %q: %v", pattern, r)
		}
	}()
	mux.Method(http.MethodGet, pattern, h)
	return nil
}

func flatten(descs []Descriptor) []Descriptor {
	var out []Descriptor
	for _, d := range descs {
		if len(d.Children) == 0 {
			out = append(out, Descriptor{Name: d.Name, Pattern: d.Pattern, Meta: d.Meta})
			continue
		}
		for _, c := range d.Children {
			child := Descriptor{
				Name:    c.Name,
				Pattern: joinPattern(d.Pattern, c.Pattern),
				Meta: Meta{
					Title:         c.Meta.Title,
					RequiresAuth:  d.Meta.RequiresAuth || c.Meta.RequiresAuth,
					RequiresAdmin: d.Meta.RequiresAdmin || c.Meta.RequiresAdmin,
				},
				Children: c.Children,
			}
			if child.Meta.Title == "" {
				child.Meta.Title = d.Meta.Title
			}
			out = append(out, flatten([]Descriptor{child})...)
		}
	}
	return out
}

func joinPattern(parent, child string) string {
	if child == "" {
		return parent
	}
	return strings.TrimRight(parent, "/") + "/" + strings.TrimLeft(child, "/")
}

// Resolve matches a location such as "/news/7?tab=comments".
func (t *Table) Resolve(location string) (Route, error) {
	u, err := url.Parse(location)
	if err != nil {
		return Route{}, fmt.Errorf("router: bad location %q: %w", location, err)
	}
	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}

	rctx := chi.NewRouteContext()
	pattern := t.mux.Find(rctx, http.MethodGet, p)
	d, ok := t.routes[pattern]
	if !ok {
		return Route{}, fmt.Errorf("router: no route for %q", p)
	}

	full := p
	if u.RawQuery != "" {
		full += "?" + u.RawQuery
	}
	r := Route{Name: d.Name, Pattern: d.Pattern, Meta: d.Meta, Path: p, FullPath: full}
	for i, k := range rctx.URLParams.Keys {
		if k == "*" {
			continue
		}
		if r.Params == nil {
			r.Params = map[string]string{}
		}
		r.Params[k] = rctx.URLParams.Values[i]
	}
	return r, nil
}

// Descriptors lists the flattened table in registration order.
func (t *Table) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(t.order))
	for _, p := range t.order {
		out = append(out, t.routes[p])
	}
	return out
}
