// Package api implements the devicedash web server.
//
// This package provides:
//   - Server-rendered pages for every route table entry, inside one layout
//   - Form actions that forward device and MQTT operations to the backend
//     gateway, record an audit entry, and redirect back (303)
//   - WebSocket hub pushing toasts ("notification") and live MQTT messages
//     ("mqtt.message") to browsers
//   - JSON endpoints for health, recent messages, device statuses, and toasts
//   - Middleware stack (request ID, logging, recovery, CORS, body limit, language)
//
// # Navigation
//
// The layout path and every unknown path redirect (302) to the route table's
// redirect target, /devices. Page templates are parsed on first visit through
// a routes.Resolver and cached afterwards.
//
// # Failures
//
// Backend failures have already been logged and shown as a toast by the
// gateway client when a handler sees them. Handlers render the page without
// the missing data, or redirect back after a form post; they never retry.
// Active toasts are rendered into the next page load so a toast raised during
// a form post survives the redirect.
//
// # Graceful Degradation
//
// The server operates without MQTT or an audit repository: the MQTT page
// then shows no live messages and write actions are not recorded.
package api
