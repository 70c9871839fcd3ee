package routes

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Loader produces a page the first time its route is visited.
type Loader[T any] func(ctx context.Context) (T, error)

type pageEntry[T any] struct {
	once   sync.Once
	loader Loader[T]
	page   T
	err    error
	done   atomic.Bool
}

// Resolver loads pages on demand. Each loader runs at most once; its page,
// or its error, is cached for every later call. Safe for concurrent use.
type Resolver[T any] struct {
	mu      sync.RWMutex
	entries map[string]*pageEntry[T]
}

// NewResolver creates an empty resolver.
func NewResolver[T any]() *Resolver[T] {
	return &Resolver[T]{entries: make(map[string]*pageEntry[T])}
}

// Register sets the loader for a route path.
func (r *Resolver[T]) Register(path string, loader Loader[T]) error {
	path = Clean(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.entries[path]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, path)
	}
	r.entries[path] = &pageEntry[T]{loader: loader}
	return nil
}

// Resolve returns the page for path, running its loader on first use.
// Concurrent first calls share one loader run.
func (r *Resolver[T]) Resolve(ctx context.Context, path string) (T, error) {
	r.mu.RLock()
	e, ok := r.entries[Clean(path)]
	r.mu.RUnlock()

	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNoPage, path)
	}

	e.once.Do(func() {
		e.page, e.err = e.loader(ctx)
		e.done.Store(true)
	})
	return e.page, e.err
}

// Loaded reports whether the page for path has been loaded (successfully or not).
func (r *Resolver[T]) Loaded(path string) bool {
	r.mu.RLock()
	e, ok := r.entries[Clean(path)]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	return e.done.Load()
}
