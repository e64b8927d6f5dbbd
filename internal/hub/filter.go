package hub

import (
	"github.com/brianly1003/fuzzy-explorer/internal/domain/events"
	"github.com/brianly1003/fuzzy-explorer/internal/domain/ports"
	"github.com/brianly1003/fuzzy-explorer/internal/sync"
)

// FilteredSubscriber forwards only the event types it was asked for.
// With no types selected every event is forwarded. Heartbeats always pass.
type FilteredSubscriber struct {
	inner ports.Subscriber

	mu    sync.RWMutex
	types map[events.EventType]bool
}

// NewFilteredSubscriber wraps inner, forwarding the given event types.
func NewFilteredSubscriber(inner ports.Subscriber, types ...events.EventType) *FilteredSubscriber {
	f := &FilteredSubscriber{
		inner: inner,
		types: make(map[events.EventType]bool),
	}
	for _, t := range types {
		f.types[t] = true
	}
	return f
}

// ID returns the wrapped subscriber's ID.
func (f *FilteredSubscriber) ID() string {
	return f.inner.ID()
}

// Send forwards the event if it passes the filter.
func (f *FilteredSubscriber) Send(event events.Event) error {
	if !f.shouldForward(event) {
		return nil
	}
	return f.inner.Send(event)
}

// Close closes the wrapped subscriber.
func (f *FilteredSubscriber) Close() error {
	return f.inner.Close()
}

// Done returns the wrapped subscriber's done channel.
func (f *FilteredSubscriber) Done() <-chan struct{} {
	return f.inner.Done()
}

// Select replaces the forwarded event types. An empty call forwards all.
func (f *FilteredSubscriber) Select(types ...events.EventType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types = make(map[events.EventType]bool, len(types))
	for _, t := range types {
		f.types[t] = true
	}
}

// IsFiltering reports whether a type filter is active.
func (f *FilteredSubscriber) IsFiltering() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.types) > 0
}

func (f *FilteredSubscriber) shouldForward(event events.Event) bool {
	if event.Type() == events.EventTypeHeartbeat {
		return true
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.types) == 0 || f.types[event.Type()]
}

var _ ports.Subscriber = (*FilteredSubscriber)(nil)
