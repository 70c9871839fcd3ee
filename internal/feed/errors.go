package feed

import "errors"

var (
	// ErrNoTopics is returned by Start when there is nothing to subscribe to.
	ErrNoTopics = errors.New("feed: no topics configured")

	// ErrNoStatus is returned when a status payload lacks a "status" string.
	ErrNoStatus = errors.New("feed: status message has no status field")
)
