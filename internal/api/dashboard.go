package api

import (
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/devicedash/internal/audit"
	"github.com/nerrad567/devicedash/internal/feed"
	"github.com/nerrad567/devicedash/internal/gateway"
	"github.com/nerrad567/devicedash/internal/routes"
)

// dashboardRecentLimit is how many messages and audit entries the dashboard lists.
const dashboardRecentLimit = 10

type dashboardPage struct {
	Devices       []gateway.Device
	DevicesFailed bool
	Online        int
	Offline       int

	Statuses []feed.DeviceStatus
	Messages []feed.Message
	Audit    []audit.Entry
}

// handleDashboard renders device counts, live statuses, recent messages,
// and recent operations. The three reads run concurrently; a failed read
// leaves its section empty without affecting the others.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := &dashboardPage{}

	// No errgroup.WithContext: one failed read must not cancel the others.
	var g errgroup.Group

	g.Go(func() error {
		resp, err := s.gateway.ListDevices(ctx)
		if err != nil {
			page.DevicesFailed = true
			return err
		}
		devices, err := gateway.DecodeDevices(resp)
		if err != nil {
			page.DevicesFailed = true
			return fmt.Errorf("decoding devices: %w", err)
		}
		page.Devices = devices
		for _, d := range devices {
			if isOnline(d.Status) {
				page.Online++
			} else {
				page.Offline++
			}
		}
		return nil
	})

	g.Go(func() error {
		if s.feed == nil {
			return nil
		}
		msgs, err := s.feed.Recent(ctx, dashboardRecentLimit)
		if err != nil {
			return fmt.Errorf("listing recent messages: %w", err)
		}
		page.Messages = msgs
		return nil
	})

	g.Go(func() error {
		if s.audit == nil {
			return nil
		}
		result, err := s.audit.List(ctx, audit.Filter{Limit: dashboardRecentLimit})
		if err != nil {
			return fmt.Errorf("listing audit entries: %w", err)
		}
		page.Audit = result.Entries
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("dashboard partially loaded", "error", err)
	}

	if s.feed != nil {
		page.Statuses = s.feed.Statuses()
	}

	s.renderPage(w, r, routes.PathDashboard, page)
}
