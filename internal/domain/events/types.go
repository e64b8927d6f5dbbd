// Package events defines all event types used in fuzzy-explorer.
package events

import (
	"encoding/json"
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// Index lifecycle events
	EventTypeIndexBuildStarted   EventType = "index_build_started"
	EventTypeIndexBuildCompleted EventType = "index_build_completed"
	EventTypeIndexBuildFailed    EventType = "index_build_failed"
	EventTypeIndexUpdated        EventType = "index_updated"

	// Cache file events
	EventTypeCacheChanged EventType = "cache_changed"
	EventTypeCacheDeleted EventType = "cache_deleted"

	// User-facing notifications produced by actions
	EventTypeNotification EventType = "notification"

	// Replies to commands sent over the event stream
	EventTypeCommandResult EventType = "command_result"

	// Connection events
	EventTypeHeartbeat EventType = "heartbeat"
)

// Event is the base interface for all events.
type Event interface {
	// Type returns the event type.
	Type() EventType

	// Timestamp returns when the event occurred.
	Timestamp() time.Time

	// ToJSON serializes the event to JSON.
	ToJSON() ([]byte, error)
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	EventType EventType   `json:"event"`
	EventTime time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
	RequestID string      `json:"request_id,omitempty"`
}

// Type returns the event type.
func (e *BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e *BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// ToJSON serializes the event to JSON.
func (e *BaseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// NewEvent creates a new base event with the given type and payload.
func NewEvent(eventType EventType, payload interface{}) *BaseEvent {
	return &BaseEvent{
		EventType: eventType,
		EventTime: time.Now().UTC(),
		Payload:   payload,
	}
}

// NewEventWithRequestID creates a new event with a request ID for correlation.
func NewEventWithRequestID(eventType EventType, payload interface{}, requestID string) *BaseEvent {
	return &BaseEvent{
		EventType: eventType,
		EventTime: time.Now().UTC(),
		Payload:   payload,
		RequestID: requestID,
	}
}

// HeartbeatPayload is the payload for heartbeat events.
type HeartbeatPayload struct {
	Sequence      int64 `json:"sequence"`
	Building      bool  `json:"building"`
	Items         int   `json:"items"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// NewHeartbeatEvent creates a new heartbeat event.
func NewHeartbeatEvent(seq int64, building bool, items int, uptimeSeconds int64) *BaseEvent {
	return NewEvent(EventTypeHeartbeat, HeartbeatPayload{
		Sequence:      seq,
		Building:      building,
		Items:         items,
		UptimeSeconds: uptimeSeconds,
	})
}
