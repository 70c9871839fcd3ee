package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/devicedash/internal/routes"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.languageMiddleware)

	// Stylesheet and browser script, embedded via go:embed
	r.Handle("/static/*", http.StripPrefix("/static", staticHandler()))

	r.Get(s.wsPath(), s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeNotFound(w, "no such endpoint")
		})

		r.Get("/health", s.handleHealth)
		r.Get("/messages", s.handleListMessages)
		r.Get("/statuses", s.handleListStatuses)
		r.Get("/audit", s.handleListAuditLogs)
		r.Get("/metrics", s.handleMetrics)

		r.Get("/notifications", s.handleListNotifications)
		r.Delete("/notifications/{id}", s.handleDismissNotification)
	})

	// Pages, one per route table entry
	r.Get(s.table.Layout(), s.handleRedirect)
	for _, route := range s.table.Routes() {
		r.Get(route.Path, s.pageHandler(route.Path))
	}

	// Form actions; each redirects back to its page
	r.Post("/devices", s.handleRegisterDevice)
	r.Post("/devices/{id}", s.handleUpdateDevice)
	r.Post("/devices/{id}/delete", s.handleDeleteDevice)
	r.Post("/devices/{id}/command", s.handleSendCommand)
	r.Post("/mqtt/publish", s.handlePublishMessage)

	r.NotFound(s.handleRedirect)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	return r
}

// pageHandler dispatches a route table path to its page handler.
func (s *Server) pageHandler(path string) http.HandlerFunc {
	switch path {
	case routes.PathDashboard:
		return s.handleDashboard
	case routes.PathDevices:
		return s.handleDevicesPage
	case routes.PathMQTT:
		return s.handleMQTTPage
	default:
		return s.handleRedirect
	}
}

// handleRedirect sends the layout path and every unknown path to the
// route table's redirect target.
func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	match := s.table.Resolve(r.URL.Path)
	http.Redirect(w, r, match.Route.Path, http.StatusFound)
}

// handleMethodNotAllowed redirects page navigations (GET/HEAD) like unknown
// paths and answers anything else with a JSON 405.
func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		s.handleRedirect(w, r)
		return
	}
	writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
}

func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return defaultWSPath
	}
	return s.wsCfg.Path
}
