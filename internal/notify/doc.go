// Package notify delivers transient toast notifications to the browser.
//
// A Notification exists only while it is displayed. Center keeps the
// unexpired ones in memory so a page rendered after a redirect can still
// show them, and pushes each new one to connected browsers through a
// Publisher (the WebSocket hub). Nothing is persisted.
//
// Components that surface failures take a Notifier, so tests can swap in a
// Recorder or Noop.
package notify
