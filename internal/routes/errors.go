package routes

import "errors"

var (
	// ErrDuplicatePath is returned when two routes share a path.
	ErrDuplicatePath = errors.New("routes: duplicate route path")

	// ErrInvalidPath is returned for route paths outside the layout.
	ErrInvalidPath = errors.New("routes: path must live under the layout path")

	// ErrUnknownRedirect is returned when the redirect target has no route.
	ErrUnknownRedirect = errors.New("routes: redirect target is not a route")

	// ErrNoPage is returned by Resolver.Resolve for paths without a loader.
	ErrNoPage = errors.New("routes: no page registered for path")
)
