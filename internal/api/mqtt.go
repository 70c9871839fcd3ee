package api

import (
	"net/http"
	"strings"

	"github.com/nerrad567/devicedash/internal/audit"
	"github.com/nerrad567/devicedash/internal/feed"
	"github.com/nerrad567/devicedash/internal/infrastructure/mqtt"
	"github.com/nerrad567/devicedash/internal/routes"
)

// mqttPageLimit is how many stored messages the MQTT page starts with.
const mqttPageLimit = 50

// Form field names of the publish form.
const (
	fieldTopic   = "topic"
	fieldMessage = "message"
)

type mqttPage struct {
	// Live is true when the dashboard itself listens to the broker.
	Live bool

	Messages     []feed.Message
	DefaultTopic string
}

// handleMQTTPage renders the publish form and the recent message log. New
// messages arrive over the WebSocket channel feed.ChannelMessage.
func (s *Server) handleMQTTPage(w http.ResponseWriter, r *http.Request) {
	page := &mqttPage{
		Live:         s.feed != nil,
		DefaultTopic: mqtt.TestTopic,
	}

	if s.feed != nil {
		msgs, err := s.feed.Recent(r.Context(), mqttPageLimit)
		if err != nil {
			s.logger.Warn("failed to list recent messages", "error", err)
		}
		page.Messages = msgs
	}

	s.renderPage(w, r, routes.PathMQTT, page)
}

// handlePublishMessage asks the backend to publish the form's message.
func (s *Server) handlePublishMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	topic := strings.TrimSpace(r.PostFormValue(fieldTopic))
	message := r.PostFormValue(fieldMessage)
	if err := mqtt.ValidateTopic(topic, false); err != nil {
		s.notifyInvalid(ctx, err)
		redirectBack(w, r, routes.PathMQTT)
		return
	}

	_, err := s.gateway.PublishMQTTMessage(ctx, topic, message)
	s.record(ctx, audit.ActionPublish, audit.EntityTopic, topic, err, map[string]any{
		fieldMessage: message,
	})
	if err == nil {
		s.notifyDone(ctx)
	}

	redirectBack(w, r, routes.PathMQTT)
}
