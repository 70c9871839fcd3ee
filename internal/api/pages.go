package api

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/nerrad567/devicedash/internal/i18n"
	"github.com/nerrad567/devicedash/internal/notify"
	"github.com/nerrad567/devicedash/internal/routes"
)

//go:embed web
var webFS embed.FS

const (
	templateDir    = "web/templates"
	layoutTemplate = "layout.html"
)

// pageFiles maps each route path to the template rendered inside the layout.
var pageFiles = map[string]string{
	routes.PathDashboard: "dashboard.html",
	routes.PathDevices:   "devices.html",
	routes.PathMQTT:      "mqtt.html",
}

// templateFuncs are available to every page.
var templateFuncs = template.FuncMap{
	"t": func(tag language.Tag, key string, args ...any) string {
		return i18n.T(tag, key, args...)
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04:05")
	},
	"online": isOnline,
}

// layoutData is what layout.html renders; Page holds the page's own data.
type layoutData struct {
	Lang      language.Tag
	LangCode  string
	Languages []languageOption
	Title     string
	SiteTitle string
	Route     routes.Route
	Nav       []routes.NavItem
	Toasts    []toastView
	WSPath    string
	Page      any
}

type languageOption struct {
	Code   string
	Label  string
	Active bool
}

// toastView is an active notification with its remaining display time.
type toastView struct {
	ID          string
	Kind        notify.Kind
	Message     string
	RemainingMS int64
}

// newPageResolver registers a lazy template loader for every route. A
// route without a template file is a construction error.
func newPageResolver(table *routes.Table) (*routes.Resolver[*template.Template], error) {
	res := routes.NewResolver[*template.Template]()
	for _, route := range table.Routes() {
		file, ok := pageFiles[route.Path]
		if !ok {
			return nil, fmt.Errorf("%w: %s", routes.ErrNoPage, route.Path)
		}
		if err := res.Register(route.Path, pageLoader(file)); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// pageLoader parses the layout together with one page template.
func pageLoader(file string) routes.Loader[*template.Template] {
	return func(context.Context) (*template.Template, error) {
		tmpl, err := template.New(layoutTemplate).Funcs(templateFuncs).ParseFS(webFS,
			templateDir+"/"+layoutTemplate,
			templateDir+"/"+file,
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}
		return tmpl, nil
	}
}

// renderPage runs the before-navigation step (document title) and renders
// the route's page inside the layout.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, path string, page any) {
	ctx := r.Context()
	tag := s.languageFrom(ctx)

	route, ok := s.table.Lookup(path)
	if !ok {
		s.handleRedirect(w, r)
		return
	}

	tmpl, err := s.pages.Resolve(ctx, route.Path)
	if err != nil {
		s.logger.Error("failed to load page", "path", route.Path, "error", err)
		writeInternalError(w, "failed to load page")
		return
	}

	data := layoutData{
		Lang:      tag,
		LangCode:  tag.String(),
		Languages: languageOptions(tag),
		Title:     s.table.Title(tag, route),
		SiteTitle: s.table.Prefix(tag),
		Route:     route,
		Nav:       s.table.Nav(tag, route),
		Toasts:    toastViews(s.notifier.Active(), time.Now()),
		WSPath:    s.wsPath(),
		Page:      page,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		s.logger.Error("failed to render page", "path", route.Path, "error", err)
		writeInternalError(w, "failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	buf.WriteTo(w)
}

func languageOptions(current language.Tag) []languageOption {
	supported := i18n.Supported()
	opts := make([]languageOption, 0, len(supported))
	for _, tag := range supported {
		opts = append(opts, languageOption{
			Code:   tag.String(),
			Label:  display(tag),
			Active: tag == current,
		})
	}
	return opts
}

func display(tag language.Tag) string {
	switch tag {
	case i18n.Chinese:
		return "中文"
	case i18n.English:
		return "English"
	default:
		return tag.String()
	}
}

func toastViews(active []notify.Notification, now time.Time) []toastView {
	views := make([]toastView, 0, len(active))
	for _, n := range active {
		remaining := n.ExpiresAt().Sub(now)
		if remaining <= 0 {
			continue
		}
		views = append(views, toastView{
			ID:          n.ID,
			Kind:        n.Kind,
			Message:     n.Message,
			RemainingMS: remaining.Milliseconds(),
		})
	}
	return views
}

// isOnline reports whether a backend or MQTT status string means online.
func isOnline(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "online", "on", "active", "connected":
		return true
	default:
		return false
	}
}

// redirectBack answers a form post with 303 See Other to path.
func redirectBack(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}
