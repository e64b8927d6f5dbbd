package websocket

import (
	"github.com/brianly1003/fuzzy-explorer/internal/domain"
	"github.com/brianly1003/fuzzy-explorer/internal/domain/events"
)

// ClientSubscriber adapts a Client to the event hub.
type ClientSubscriber struct {
	client *Client
}

// NewClientSubscriber creates a subscriber from a WebSocket client.
func NewClientSubscriber(client *Client) *ClientSubscriber {
	return &ClientSubscriber{client: client}
}

// ID returns the client id.
func (s *ClientSubscriber) ID() string {
	return s.client.ID()
}

// Send serializes the event and queues it. A slow client drops the event
// but stays subscribed.
func (s *ClientSubscriber) Send(event events.Event) error {
	if s.client.IsClosed() {
		return domain.ErrSubscriberClosed
	}
	data, err := event.ToJSON()
	if err != nil {
		return err
	}
	s.client.Send(data)
	return nil
}

// Close closes the client.
func (s *ClientSubscriber) Close() error {
	s.client.Close()
	return nil
}

// Done is closed when the client closes.
func (s *ClientSubscriber) Done() <-chan struct{} {
	return s.client.done
}
