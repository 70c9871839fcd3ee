package api

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/devicedash/internal/feed"
	"github.com/nerrad567/devicedash/internal/infrastructure/mqtt"
	"github.com/nerrad567/devicedash/internal/notify"
)

const (
	// healthCheckTimeout bounds each component check.
	healthCheckTimeout = 2 * time.Second

	defaultMessageLimit = 50
	maxMessageLimit     = 200
)

// handleHealth reports the server and every configured component.
// Any failing component turns the status to "degraded" with a 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.health))
	for name := range s.health {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	components := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := s.health[name].HealthCheck(ctx)
		cancel()
		if err != nil {
			status = "degraded"
			components[name] = err.Error()
			continue
		}
		components[name] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":     status,
		"version":    s.version,
		"backend":    s.gateway.BaseURL(),
		"components": components,
		"ws_clients": s.hub.ClientCount(),
	})
}

// handleListMessages returns stored MQTT messages, newest first.
//
// Query parameters:
//   - limit: maximum messages (default 50, max 200)
//   - topic: MQTT topic filter, wildcards allowed (e.g. device/report/#)
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit := defaultMessageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(n, maxMessageLimit)
	}

	filter := r.URL.Query().Get("topic")
	if filter != "" {
		if err := mqtt.ValidateTopic(filter, true); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
	}

	msgs := []feed.Message{}
	if s.feed != nil {
		recent, err := s.feed.Recent(r.Context(), limit)
		if err != nil {
			s.logger.Error("failed to list messages", "error", err)
			writeInternalError(w, "failed to list messages")
			return
		}
		msgs = recent
	}

	if filter != "" {
		matched := msgs[:0]
		for _, m := range msgs {
			if mqtt.MatchTopic(filter, m.Topic) {
				matched = append(matched, m)
			}
		}
		msgs = matched
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs, "count": len(msgs)})
}

// handleListStatuses returns the last status each device announced over MQTT.
func (s *Server) handleListStatuses(w http.ResponseWriter, _ *http.Request) {
	statuses := []feed.DeviceStatus{}
	if s.feed != nil {
		statuses = s.feed.Statuses()
	}
	writeJSON(w, http.StatusOK, map[string]any{"statuses": statuses, "count": len(statuses)})
}

// handleListNotifications returns the toasts still on display.
func (s *Server) handleListNotifications(w http.ResponseWriter, _ *http.Request) {
	active := s.notifier.Active()
	out := make([]map[string]any, 0, len(active))
	for _, n := range active {
		out = append(out, notify.Payload(n))
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": out, "count": len(out)})
}

// handleDismissNotification removes a toast before it expires.
func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	if !s.notifier.Dismiss(chi.URLParam(r, "id")) {
		writeNotFound(w, "notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
