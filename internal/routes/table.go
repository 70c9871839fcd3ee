package routes

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/language"

	"github.com/nerrad567/devicedash/internal/i18n"
)

// Default route paths and names.
const (
	LayoutPath = "/"

	PathDashboard = "/dashboard"
	PathDevices   = "/devices"
	PathMQTT      = "/mqtt"

	NameDashboard = "Dashboard"
	NameDevices   = "DeviceManagement"
	NameMQTT      = "MqttControl"
)

// titleSeparator joins the site prefix and the page title.
const titleSeparator = " - "

// Route maps a path to a page.
type Route struct {
	Path string
	Name string

	// TitleKey is the catalog key of the page title. Empty means the page
	// has no title of its own.
	TitleKey string
}

// Config describes a route table.
type Config struct {
	// Layout is the path of the shell every route renders inside.
	Layout string

	// Redirect is where the layout path and unknown paths lead.
	Redirect string

	// TitlePrefix overrides the catalog site title when non-empty.
	TitlePrefix string

	Routes []Route
}

// Match is the outcome of resolving a path.
type Match struct {
	Route Route

	// Redirected is true when the requested path had no route of its own.
	Redirected bool
}

// NavItem is one entry of the layout's navigation menu.
type NavItem struct {
	Path   string
	Name   string
	Title  string
	Active bool
}

// Table is an immutable, ordered route table.
type Table struct {
	layout      string
	redirect    Route
	titlePrefix string
	routes      []Route
	byPath      map[string]Route
}

// DefaultConfig returns the dashboard's route table with the given title
// prefix override (empty uses the catalog).
func DefaultConfig(titlePrefix string) Config {
	return Config{
		Layout:      LayoutPath,
		Redirect:    PathDevices,
		TitlePrefix: titlePrefix,
		Routes: []Route{
			{Path: PathDashboard, Name: NameDashboard, TitleKey: i18n.KeyRouteDash},
			{Path: PathDevices, Name: NameDevices, TitleKey: i18n.KeyRouteDevices},
			{Path: PathMQTT, Name: NameMQTT, TitleKey: i18n.KeyRouteMQTT},
		},
	}
}

// New builds a table from cfg.
//
// Returns:
//   - *Table: The route table
//   - error: ErrDuplicatePath, ErrInvalidPath, or ErrUnknownRedirect
func New(cfg Config) (*Table, error) {
	layout := Clean(cfg.Layout)

	t := &Table{
		layout:      layout,
		titlePrefix: cfg.TitlePrefix,
		routes:      make([]Route, 0, len(cfg.Routes)),
		byPath:      make(map[string]Route, len(cfg.Routes)),
	}

	for _, r := range cfg.Routes {
		r.Path = Clean(r.Path)
		if r.Path == layout || !underLayout(layout, r.Path) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPath, r.Path)
		}
		if _, dup := t.byPath[r.Path]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, r.Path)
		}
		t.byPath[r.Path] = r
		t.routes = append(t.routes, r)
	}

	redirect, ok := t.byPath[Clean(cfg.Redirect)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRedirect, cfg.Redirect)
	}
	t.redirect = redirect

	return t, nil
}

// Clean normalizes a request path: leading slash, no trailing slash, no
// dot segments.
func Clean(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func underLayout(layout, p string) bool {
	if layout == "/" {
		return true
	}
	return strings.HasPrefix(p, layout+"/")
}

// Routes returns the routes in definition order.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Layout returns the layout path.
func (t *Table) Layout() string {
	return t.layout
}

// RedirectTarget returns the route the layout and unknown paths lead to.
func (t *Table) RedirectTarget() Route {
	return t.redirect
}

// Lookup returns the route defined for p, without redirecting.
func (t *Table) Lookup(p string) (Route, bool) {
	r, ok := t.byPath[Clean(p)]
	return r, ok
}

// Resolve returns the route for p. The layout path and every path without
// a route resolve to the redirect target with Redirected set.
func (t *Table) Resolve(p string) Match {
	if r, ok := t.byPath[Clean(p)]; ok {
		return Match{Route: r}
	}
	return Match{Route: t.redirect, Redirected: true}
}

// Prefix returns the site title for tag.
func (t *Table) Prefix(tag language.Tag) string {
	if t.titlePrefix != "" {
		return t.titlePrefix
	}
	return i18n.T(tag, i18n.KeySiteTitle)
}

// RouteTitle returns the route's own localized title, or "" if it has none.
func (t *Table) RouteTitle(tag language.Tag, r Route) string {
	if r.TitleKey == "" {
		return ""
	}
	return i18n.T(tag, r.TitleKey)
}

// Title returns the document title shown while r is displayed:
// "prefix - title", or the prefix alone when r has no title.
func (t *Table) Title(tag language.Tag, r Route) string {
	title := t.RouteTitle(tag, r)
	if title == "" {
		return t.Prefix(tag)
	}
	return t.Prefix(tag) + titleSeparator + title
}

// Nav returns the navigation menu with current marked active.
func (t *Table) Nav(tag language.Tag, current Route) []NavItem {
	items := make([]NavItem, 0, len(t.routes))
	for _, r := range t.routes {
		items = append(items, NavItem{
			Path:   r.Path,
			Name:   r.Name,
			Title:  t.RouteTitle(tag, r),
			Active: r.Path == current.Path,
		})
	}
	return items
}
