// Package commands maps explorer command ids to handlers.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/brianly1003/fuzzy-explorer/internal/domain"
	"github.com/brianly1003/fuzzy-explorer/internal/sync"
)

// HandlerFunc runs one command. params may be empty. A nil result with a
// nil error is a successful command with nothing to report.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

// MiddlewareFunc wraps a HandlerFunc.
type MiddlewareFunc func(id string, next HandlerFunc) HandlerFunc

// Registry holds the registered commands.
type Registry struct {
	mu         sync.RWMutex
	handlers   map[string]HandlerFunc
	summaries  map[string]string
	middleware []MiddlewareFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers:  make(map[string]HandlerFunc),
		summaries: make(map[string]string),
	}
}

// Register registers a handler for id, replacing any existing one.
func (r *Registry) Register(id, summary string, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[id] = handler
	r.summaries[id] = summary
}

// Use adds middleware. Middleware is applied in the order it is added.
func (r *Registry) Use(mw MiddlewareFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw)
}

// Get returns the handler for id with middleware applied, or nil.
func (r *Registry) Get(id string) HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[id]
	if !ok {
		return nil
	}
	// Last added = innermost.
	for i := len(r.middleware) - 1; i >= 0; i-- {
		handler = r.middleware[i](id, handler)
	}
	return handler
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[id]
	return ok
}

// Summary returns the one-line description registered with id.
func (r *Registry) Summary(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.summaries[id]
}

// IDs returns the registered command ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dispatch runs the command id.
func (r *Registry) Dispatch(ctx context.Context, id string, params json.RawMessage) (interface{}, error) {
	handler := r.Get(id)
	if handler == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCommand, id)
	}
	return handler(ctx, params)
}
