package api

import (
	"context"
	"errors"

	"github.com/nerrad567/devicedash/internal/audit"
	"github.com/nerrad567/devicedash/internal/gateway"
	"github.com/nerrad567/devicedash/internal/i18n"
	"github.com/nerrad567/devicedash/internal/notify"
)

// record writes an audit entry for a gateway call. callErr decides the
// outcome; a *gateway.RequestError contributes its status and message.
func (s *Server) record(ctx context.Context, action, entityType, entityID string, callErr error, details map[string]any) {
	if s.audit == nil {
		return
	}
	if details == nil {
		details = make(map[string]any)
	}

	entry := &audit.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Outcome:    audit.OutcomeOK,
		Details:    details,
	}

	if callErr != nil {
		entry.Outcome = audit.OutcomeFailed
		var reqErr *gateway.RequestError
		if errors.As(callErr, &reqErr) {
			if reqErr.HasResponse() {
				details["status"] = reqErr.StatusCode
			}
			details["error"] = reqErr.Message
		} else {
			details["error"] = callErr.Error()
		}
	}

	// The request may already be cancelled; the record must still be written.
	if err := s.audit.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("failed to write audit entry", "action", action, "entity_id", entityID, "error", err)
	}
}

// notifyDone shows the success toast after a write action.
func (s *Server) notifyDone(ctx context.Context) {
	s.notifier.Notify(ctx, notify.Notification{
		Kind:    notify.KindSuccess,
		Message: i18n.T(s.languageFrom(ctx), i18n.KeyActionDone),
	})
}

// notifyInvalid shows a warning toast for a form rejected before any
// backend call was made.
func (s *Server) notifyInvalid(ctx context.Context, err error) {
	s.notifier.Notify(ctx, notify.Notification{
		Kind:    notify.KindWarning,
		Message: i18n.T(s.languageFrom(ctx), i18n.KeyFormInvalid, err.Error()),
	})
}
