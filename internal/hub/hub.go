// Package hub fans index events out to presentation subscribers.
package hub

import (
	"sync/atomic"

	"github.com/brianly1003/fuzzy-explorer/internal/domain/events"
	"github.com/brianly1003/fuzzy-explorer/internal/domain/ports"
	"github.com/brianly1003/fuzzy-explorer/internal/sync"
	"github.com/rs/zerolog/log"
)

// DefaultBufferSize is the number of events queued before Publish drops.
const DefaultBufferSize = 256

// Hub is the event dispatcher. Publish never blocks the caller: events are
// queued and delivered to every subscriber from a single goroutine, so each
// subscriber sees events in publish order.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]ports.Subscriber
	running     bool

	broadcast chan events.Event
	done      chan struct{}
	stopped   chan struct{}

	dropped atomic.Int64
}

// New creates a hub with the default buffer size.
func New() *Hub {
	return NewWithBuffer(DefaultBufferSize)
}

// NewWithBuffer creates a hub that queues up to size events.
func NewWithBuffer(size int) *Hub {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Hub{
		subscribers: make(map[string]ports.Subscriber),
		broadcast:   make(chan events.Event, size),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
}

// Start begins delivering events.
func (h *Hub) Start() error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return nil
	}
	h.running = true
	h.mu.Unlock()

	log.Debug().Msg("event hub started")

	go h.run()
	return nil
}

// Stop delivers nothing further and closes every subscriber.
func (h *Hub) Stop() error {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return nil
	}
	h.running = false
	h.mu.Unlock()

	close(h.done)
	<-h.stopped

	h.mu.Lock()
	for _, sub := range h.subscribers {
		_ = sub.Close()
	}
	h.subscribers = make(map[string]ports.Subscriber)
	h.mu.Unlock()

	log.Debug().Int64("dropped", h.dropped.Load()).Msg("event hub stopped")
	return nil
}

func (h *Hub) run() {
	defer close(h.stopped)
	for {
		select {
		case <-h.done:
			return
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) deliver(event events.Event) {
	h.mu.RLock()
	var failed []string
	for id, sub := range h.subscribers {
		if err := sub.Send(event); err != nil {
			log.Warn().
				Str("subscriber_id", id).
				Str("event_type", string(event.Type())).
				Err(err).
				Msg("failed to send event to subscriber")
			failed = append(failed, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range failed {
		h.Unsubscribe(id)
	}
}

// Publish queues an event for all subscribers. When the queue is full the
// event is dropped and counted.
func (h *Hub) Publish(event events.Event) {
	select {
	case h.broadcast <- event:
		log.Trace().
			Str("event_type", string(event.Type())).
			Msg("event published")
	default:
		h.dropped.Add(1)
		log.Warn().
			Str("event_type", string(event.Type())).
			Msg("event dropped: broadcast channel full")
	}
}

// Subscribe adds a subscriber. A subscriber with the same ID is replaced.
func (h *Hub) Subscribe(sub ports.Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.subscribers[sub.ID()]; ok && old != sub {
		_ = old.Close()
	}
	h.subscribers[sub.ID()] = sub
	log.Debug().Str("subscriber_id", sub.ID()).Msg("subscriber registered")
}

// Unsubscribe removes and closes a subscriber.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	delete(h.subscribers, id)
	h.mu.Unlock()

	if ok {
		_ = sub.Close()
		log.Debug().Str("subscriber_id", id).Msg("subscriber unregistered")
	}
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// IsRunning returns true if the hub is running.
func (h *Hub) IsRunning() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

// Dropped returns how many events were dropped on a full queue.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

var _ ports.EventHub = (*Hub)(nil)
